package utils

const (
	// CategoryIdKey is the key for category ID used in routing parameters.
	CategoryIdKey = "categoryId"

	// TaskIdKey is the key for task ID used in routing parameters.
	TaskIdKey = "taskId"

	// UserIdKey is the key for user ID used in routing parameters.
	UserIdKey = "userId"

	// OffsetParamKey is the key for offset used in pagination query parameters.
	OffsetParamKey = "offset"

	// LimitParamKey is the key for limit used in pagination query parameters.
	LimitParamKey = "limit"
)
