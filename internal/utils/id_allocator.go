package utils

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"strconv"

	"todo-api/internal/interfaces"
)

// Identifiers are drawn at random from [minID, maxID] and checked against the
// table before use. The draw is capped: a saturated id space fails fast
// instead of spinning.
const (
	defaultMinID  int64 = 100000
	defaultMaxID  int64 = 999999999
	maxIDAttempts       = 100
)

// Exists-check queries per table, parameterized by the candidate id.
const (
	UserIDExistsQuery     = "SELECT EXISTS(SELECT 1 FROM todo_schema.users WHERE user_id = $1)"
	CategoryIDExistsQuery = "SELECT EXISTS(SELECT 1 FROM todo_schema.categories WHERE category_id = $1)"
	TaskIDExistsQuery     = "SELECT EXISTS(SELECT 1 FROM todo_schema.tasks WHERE task_id = $1)"
)

// ErrIDSpaceExhausted is returned when no free identifier was found within
// the attempt budget.
var ErrIDSpaceExhausted = errors.New("no free identifier found within attempt budget")

// AllocateID draws a random identifier and verifies it is unused via the
// given exists-check query. It retries on collisions up to maxIDAttempts.
func AllocateID(ctx context.Context, q interfaces.RowQuerier, existsQuery string) (int64, error) {
	minID := envInt64("MIN_ID", defaultMinID)
	maxID := envInt64("MAX_ID", defaultMaxID)

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		candidate := minID + rand.Int63n(maxID-minID+1)

		var exists bool
		if err := q.QueryRow(ctx, existsQuery, candidate).Scan(&exists); err != nil {
			return 0, err
		}

		if !exists {
			return candidate, nil
		}
	}

	return 0, ErrIDSpaceExhausted
}

func envInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}

	return parsed
}
