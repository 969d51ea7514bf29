package schemas

import "time"

// ErrorDTO is a struct that represents an error response
// Error is the custom error, see CustomError
type ErrorDTO struct {
	Error CustomError `json:"error"`
}

// SuccessDTO is a struct that represents a plain success response
type SuccessDTO struct {
	Success string `json:"success"`
}

// Ok returns the canonical success response body.
func Ok() *SuccessDTO {
	return &SuccessDTO{Success: "ok"}
}

// TokenPairDTO is a struct that represents a token response
// Token is the main JWT token used for auth
// RefreshToken is the refresh token used to get a new token
type TokenPairDTO struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// TokenDTO is a struct that represents a single-token response,
// returned when refreshing an access token
type TokenDTO struct {
	Token string `json:"token"`
}

// UserDTO is a struct that represents a user response
type UserDTO struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	ShortName  string    `json:"shortName"`
	Email      string    `json:"email"`
	Gender     string    `json:"gender"`
	IsAdmin    bool      `json:"isAdmin"`
	IsVerified bool      `json:"isVerified"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserProfileDTO is a struct that represents the authenticated user's own
// profile, including everything the user owns
type UserProfileDTO struct {
	UserDTO
	BaseCategoryID int64         `json:"baseCategoryId"`
	Categories     []CategoryDTO `json:"categories"`
	Tasks          []TaskDTO     `json:"tasks"`
}

// CategoryDTO is a struct that represents a category response
type CategoryDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryWithTasksDTO is a struct that represents a category response
// together with the tasks it contains
type CategoryWithTasksDTO struct {
	CategoryDTO
	Tasks []TaskDTO `json:"tasks"`
}

// TaskDTO is a struct that represents a task response
type TaskDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Priority    int16     `json:"priority"`
	Completed   bool      `json:"completed"`
	UserID      int64     `json:"userId"`
	CategoryID  int64     `json:"categoryId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PaginatedResponse is a struct that represents a paginated response
// Records is the records of the response
// Pagination is the pagination of the response
type PaginatedResponse struct {
	Records    interface{} `json:"records"`
	Pagination interface{} `json:"pagination"`
}

// Pagination is a struct that represents a pagination
// Offset is the given offset of the pagination
// Limit is the given limit of the pagination
// Records is the total records of the pagination
type Pagination struct {
	Offset  int `json:"offset"`
	Limit   int `json:"limit"`
	Records int `json:"records"`
}

type MetadataDTO struct {
	ApiVersion string `json:"apiVersion"`
	ApiName    string `json:"apiName"`
}

// NewUserDTO projects a user record onto its response shape.
func NewUserDTO(user *User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		Name:       user.Name,
		Surname:    user.Surname,
		ShortName:  user.ShortName,
		Email:      user.Email,
		Gender:     user.Gender,
		IsAdmin:    user.IsAdmin,
		IsVerified: user.IsVerified,
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt,
	}
}

// NewCategoryDTO projects a category record onto its response shape.
func NewCategoryDTO(category *Category) CategoryDTO {
	return CategoryDTO{
		ID:        category.ID,
		Name:      category.Name,
		Color:     category.Color,
		UserID:    category.UserID,
		CreatedAt: category.CreatedAt,
	}
}

// NewTaskDTO projects a task record onto its response shape.
func NewTaskDTO(task *Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Priority:    task.Priority,
		Completed:   task.Completed,
		UserID:      task.UserID,
		CategoryID:  task.CategoryID,
		CreatedAt:   task.CreatedAt,
	}
}
