// Package schemas defines the request structures for various operations in the application.
package schemas

import "time"

// RegistrationRequest is a struct that represents a registration request
// ShortName is required and must be less than 20 characters
// Email is required and must be a valid email
// Password is required and must be at least 8 characters
type RegistrationRequest struct {
	Name      string `json:"name" validate:"required,max=50"`
	Surname   string `json:"surname" validate:"required,max=50"`
	ShortName string `json:"shortName" validate:"required,max=20,short_name_validation"`
	Email     string `json:"email" validate:"required,email"`
	Gender    string `json:"gender" validate:"required,oneof=male female"`
	Password  string `json:"password" validate:"required,min=8,password_validation"`
}

// LoginRequest is a struct that represents a login request
// Email is required and must be a valid email
// Password is required and must be at least 8 characters
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RefreshTokenRequest is a struct that represents a RefreshToken request
// RefreshToken is required and must be a valid refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// EditUserRequest is a struct that represents a profile edit request
type EditUserRequest struct {
	Name    string `json:"name" validate:"required,max=50"`
	Surname string `json:"surname" validate:"required,max=50"`
	Gender  string `json:"gender" validate:"required,oneof=male female"`
}

// ChangePasswordRequest is a struct that represents a PasswordChange request
// OldPassword is required and must be at least 8 characters
// NewPassword is required and must be at least 8 characters
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required,min=8"`
	NewPassword string `json:"newPassword" validate:"required,min=8,password_validation"`
}

// RequestVerifyCodeRequest is a struct that represents a request for an
// email verification code
type RequestVerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ConfirmVerifyCodeRequest is a struct that represents a confirmation of an
// email verification code
// Code is required and must be a 6-digit number
type ConfirmVerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  int32  `json:"code" validate:"required,min=100000,max=999999"`
}

// CreateCategoryRequest is a struct that represents a create category request
type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"required,max=25"`
}

// EditCategoryRequest is a struct that represents a category edit request
type EditCategoryRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"required,max=25"`
}

// CreateTaskRequest is a struct that represents a create task request
// Priority must be one of the three defined levels
type CreateTaskRequest struct {
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description" validate:"max=1000"`
	Priority    int16     `json:"priority" validate:"required,min=1,max=3"`
	Completed   bool      `json:"completed"`
	CategoryID  int64     `json:"categoryId" validate:"required"`
	CreatedAt   time.Time `json:"createdAt" validate:"required"`
}

// EditTaskRequest is a struct that represents a task edit request
type EditTaskRequest struct {
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description" validate:"max=1000"`
	Priority    int16     `json:"priority" validate:"required,min=1,max=3"`
	Completed   bool      `json:"completed"`
	CategoryID  int64     `json:"categoryId" validate:"required"`
	CreatedAt   time.Time `json:"createdAt" validate:"required"`
}
