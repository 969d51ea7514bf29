// Package schemas defines the data structures
package schemas

import (
	"time"
)

// Token type discriminators embedded in the "type" claim of every JWT.
const (
	AccessTokenType  = "access"
	RefreshTokenType = "refresh"
)

// Gender values accepted for a user.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Task priority levels.
const (
	PriorityLow    int16 = 1
	PriorityMedium int16 = 2
	PriorityHigh   int16 = 3
)

// BaseCategorySentinel is the base_category_id of a user whose base category
// has not been linked yet. Registration replaces it in the same transaction
// that creates the user.
const BaseCategorySentinel int64 = -1

// Name and color of the category every user starts with.
const (
	BaseCategoryName  = "base_category"
	BaseCategoryColor = "#FFFFFF"
)

// User represents the data model for a user in the system.
type User struct {
	ID             int64     `json:"id"`               // Unique identifier for the user.
	Name           string    `json:"name"`             // Given name of the user.
	Surname        string    `json:"surname"`          // Surname of the user.
	ShortName      string    `json:"short_name"`       // Unique public handle of the user.
	Email          string    `json:"email"`            // Email address of the user.
	Gender         string    `json:"gender"`           // Gender of the user.
	BaseCategoryID int64     `json:"base_category_id"` // Identifier of the user's base category.
	IsAdmin        bool      `json:"is_admin"`         // Whether the user holds the admin role.
	IsVerified     bool      `json:"is_verified"`      // Whether the user's email has been verified.
	IsActive       bool      `json:"is_active"`        // Whether the account is active.
	PasswordHash   []byte    `json:"-"`                // Password hash of the user.
	CreatedAt      time.Time `json:"created_at"`       // Timestamp when the user was created.
}

// Category represents the data model for a task category owned by a user.
type Category struct {
	ID        int64     `json:"id"`         // Unique identifier for the category.
	Name      string    `json:"name"`       // Name of the category.
	Color     string    `json:"color"`      // Display color of the category.
	UserID    int64     `json:"user_id"`    // Identifier of the owning user.
	CreatedAt time.Time `json:"created_at"` // Timestamp when the category was created.
}

// Task represents the data model for a task inside a category.
type Task struct {
	ID          int64     `json:"id"`          // Unique identifier for the task.
	Name        string    `json:"name"`        // Name of the task.
	Description string    `json:"description"` // Free-form description of the task.
	Priority    int16     `json:"priority"`    // Priority level, one of PriorityLow/Medium/High.
	Completed   bool      `json:"completed"`   // Whether the task has been completed.
	UserID      int64     `json:"user_id"`     // Identifier of the owning user.
	CategoryID  int64     `json:"category_id"` // Identifier of the containing category.
	CreatedAt   time.Time `json:"created_at"`  // Date the task is scheduled for.
}

// VerifyCode represents a pending email verification code. At most one code
// exists per email address; requesting a new one overwrites it.
type VerifyCode struct {
	Email string `json:"email"` // Email address the code was sent to.
	Code  int32  `json:"code"`  // Numeric 6-digit code.
}
