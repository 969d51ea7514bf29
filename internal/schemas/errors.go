package schemas

// CustomError is the error payload returned to clients. The code is stable
// across releases, the message is advisory.
type CustomError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	// BadRequest is returned when the request body fails decoding, sanitization or validation.
	BadRequest = &CustomError{
		Code:    "ERR-001",
		Message: "The request body is invalid. Please check the request body and try again.",
	}
	// ShortNameTaken is returned when the requested short name is already claimed.
	ShortNameTaken = &CustomError{
		Code:    "ERR-002",
		Message: "User with this shortname already exists",
	}
	// EmailTaken is returned when the email address already belongs to a registered user.
	EmailTaken = &CustomError{
		Code:    "ERR-003",
		Message: "User with this email already exists",
	}
	// UserNotFound is returned when the addressed user does not exist.
	UserNotFound = &CustomError{
		Code:    "ERR-004",
		Message: "User not found",
	}
	// CategoryNotFound is returned when the addressed category does not exist.
	// The base-category guard deliberately reuses it for edits and deletes of
	// the base category, which is not independently manageable.
	CategoryNotFound = &CustomError{
		Code:    "ERR-005",
		Message: "Category not found",
	}
	// TaskNotFound is returned when the addressed task does not exist.
	TaskNotFound = &CustomError{
		Code:    "ERR-006",
		Message: "Task not found",
	}
	// InvalidEmailAddress is returned when the mail transport rejects the
	// recipient, or when a verification is confirmed for an email without a
	// pending code.
	InvalidEmailAddress = &CustomError{
		Code:    "ERR-007",
		Message: "Invalid email address",
	}
	// IncorrectVerifyCode is returned when the submitted verification code
	// does not match the pending one.
	IncorrectVerifyCode = &CustomError{
		Code:    "ERR-008",
		Message: "Incorrect verification code",
	}
	// EmailNotSent is returned when the mail transport fails for any reason
	// other than a rejected recipient.
	EmailNotSent = &CustomError{
		Code:    "ERR-009",
		Message: "Failed to send code to email",
	}
	// DatabaseError is returned when a database operation fails unexpectedly.
	DatabaseError = &CustomError{
		Code:    "ERR-010",
		Message: "A database error occurred. Please try again later.",
	}
	// InternalServerError is returned for failures with no more precise classification.
	InternalServerError = &CustomError{
		Code:    "ERR-011",
		Message: "An internal error occurred. Please try again later.",
	}
	// InvalidCredentials covers bad logins and malformed, expired or
	// unresolvable tokens. Wrong email and wrong password intentionally
	// produce this same error.
	InvalidCredentials = &CustomError{
		Code:    "ERR-012",
		Message: "Could not validate credentials",
	}
	// InvalidTokenType is returned when a token of the wrong kind is
	// presented, e.g. a refresh token where an access token is required.
	InvalidTokenType = &CustomError{
		Code:    "ERR-013",
		Message: "Invalid token type",
	}
	// Unauthorized is returned when no usable bearer token accompanies a
	// request that requires one.
	Unauthorized = &CustomError{
		Code:    "ERR-014",
		Message: "The request is unauthorized. Please login to your account.",
	}
	// AccessDenied is returned on ownership and role violations.
	AccessDenied = &CustomError{
		Code:    "ERR-015",
		Message: "Access denied!",
	}
)
