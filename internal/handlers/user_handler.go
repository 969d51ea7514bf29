package handlers

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"todo-api/internal/interfaces"
	"todo-api/internal/managers"
	"todo-api/internal/schemas"
	"todo-api/internal/utils"
)

type UserHdl interface {
	Register(ctx *gin.Context)
	Login(ctx *gin.Context)
	Refresh(ctx *gin.Context)
	GetProfile(ctx *gin.Context)
	EditProfile(ctx *gin.Context)
	ChangePassword(ctx *gin.Context)
	DeleteAccount(ctx *gin.Context)
	RequestVerifyCode(ctx *gin.Context)
	ConfirmVerifyCode(ctx *gin.Context)
}

type UserHandler struct {
	DatabaseManager managers.DatabaseMgr
	JWTManager      managers.JWTMgr
	MailManager     managers.MailMgr
	Validator       *utils.Validator
}

func NewUserHandler(databaseManager *managers.DatabaseMgr, jwtManager *managers.JWTMgr, mailManager *managers.MailMgr) UserHdl {
	return &UserHandler{
		DatabaseManager: *databaseManager,
		JWTManager:      *jwtManager,
		MailManager:     *mailManager,
		Validator:       utils.GetValidator(),
	}
}

const (
	userConflictQuery  = "SELECT short_name, email FROM todo_schema.users WHERE short_name = $1 OR email = $2"
	userByEmailQuery   = "SELECT user_id, name, surname, short_name, email, gender, base_category_id, is_admin, is_verified, is_active, password_hash, created_at FROM todo_schema.users WHERE email = $1"
	insertUserQuery    = "INSERT INTO todo_schema.users (user_id, name, surname, short_name, email, gender, base_category_id, is_admin, is_verified, is_active, password_hash, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)"
	linkBaseQuery      = "UPDATE todo_schema.users SET base_category_id = $1 WHERE user_id = $2"
	upsertCodeQuery    = "INSERT INTO todo_schema.verify_codes (email, code) VALUES ($1, $2) ON CONFLICT (email) DO UPDATE SET code = $2"
	codeByEmailQuery   = "SELECT code FROM todo_schema.verify_codes WHERE email = $1"
	deleteCodeQuery    = "DELETE FROM todo_schema.verify_codes WHERE email = $1"
	emailExistsQuery   = "SELECT EXISTS(SELECT 1 FROM todo_schema.users WHERE email = $1)"
	editUserQuery      = "UPDATE todo_schema.users SET name = $1, surname = $2, gender = $3 WHERE user_id = $4"
	changePasswdQuery  = "UPDATE todo_schema.users SET password_hash = $1 WHERE user_id = $2"
	userCategoriesSQL  = "SELECT category_id, name, color, user_id, created_at FROM todo_schema.categories WHERE user_id = $1 ORDER BY created_at"
	userTasksSQL       = "SELECT task_id, name, description, priority, completed, user_id, category_id, created_at FROM todo_schema.tasks WHERE user_id = $1 ORDER BY created_at"
	deleteUserTasksSQL = "DELETE FROM todo_schema.tasks WHERE user_id = $1"
	deleteUserCatsSQL  = "DELETE FROM todo_schema.categories WHERE user_id = $1"
	deleteUserQuery    = "DELETE FROM todo_schema.users WHERE user_id = $1"
)

// Register creates a new user account along with its base category and
// returns a fresh token pair. The user row, the base category and the
// back-link between them are written in a single transaction, so a failed
// registration leaves no partial state behind.
func (handler *UserHandler) Register(ctx *gin.Context) {
	payload, ok := utils.GetPayload[schemas.RegistrationRequest](ctx)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	tx := utils.BeginTransaction(ctx, pool)
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(ctx, tx, err) }()

	// Check both uniqueness constraints up front, reporting the email
	// conflict first when both collide.
	rows, err := tx.Query(ctx, userConflictQuery, payload.ShortName, payload.Email)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	emailTaken, shortNameTaken := false, false
	for rows.Next() {
		var shortName, email string
		if err = rows.Scan(&shortName, &email); err != nil {
			rows.Close()
			utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}

		if email == payload.Email {
			emailTaken = true
		}
		if shortName == payload.ShortName {
			shortNameTaken = true
		}
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if emailTaken {
		err = errors.New("email already registered")
		utils.WriteAndLogError(ctx, schemas.EmailTaken, http.StatusBadRequest, err)
		return
	}
	if shortNameTaken {
		err = errors.New("short name already registered")
		utils.WriteAndLogError(ctx, schemas.ShortNameTaken, http.StatusBadRequest, err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	userID, err := utils.AllocateID(ctx, tx, utils.UserIDExistsQuery)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	createdAt := time.Now()
	user := &schemas.User{
		ID:             userID,
		Name:           payload.Name,
		Surname:        payload.Surname,
		ShortName:      payload.ShortName,
		Email:          payload.Email,
		Gender:         payload.Gender,
		BaseCategoryID: schemas.BaseCategorySentinel,
		IsActive:       true,
		PasswordHash:   passwordHash,
		CreatedAt:      createdAt,
	}

	if _, err = tx.Exec(ctx, insertUserQuery, user.ID, user.Name, user.Surname, user.ShortName, user.Email,
		user.Gender, user.BaseCategoryID, user.IsAdmin, user.IsVerified, user.IsActive, user.PasswordHash,
		user.CreatedAt); err != nil {
		// The up-front conflict check races with concurrent registrations,
		// so a unique violation here still maps to the taken errors.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			customErr := schemas.EmailTaken
			if strings.Contains(pgErr.ConstraintName, "short_name") {
				customErr = schemas.ShortNameTaken
			}
			utils.WriteAndLogError(ctx, customErr, http.StatusBadRequest, err)
			return
		}

		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	categoryID, err := utils.AllocateID(ctx, tx, utils.CategoryIDExistsQuery)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if _, err = tx.Exec(ctx, insertCategoryQuery, categoryID, schemas.BaseCategoryName,
		schemas.BaseCategoryColor, user.ID, createdAt); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if _, err = tx.Exec(ctx, linkBaseQuery, categoryID, user.ID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	user.BaseCategoryID = categoryID

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	tokenPair, tokenErr := handler.JWTManager.GenerateTokenPair(user)
	if tokenErr != nil {
		utils.WriteAndLogError(ctx, schemas.InternalServerError, http.StatusInternalServerError, tokenErr)
		return
	}

	utils.WriteAndLogResponse(ctx, tokenPair, http.StatusCreated)
}

// Login authenticates by email and password. Unknown email and wrong
// password produce the same response, so the endpoint does not leak which
// accounts exist.
func (handler *UserHandler) Login(ctx *gin.Context) {
	payload, ok := utils.GetPayload[schemas.LoginRequest](ctx)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	user, err := fetchUserByEmail(ctx, pool, payload.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.InvalidCredentials, http.StatusUnauthorized, err)
			return
		}

		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(payload.Password)); err != nil {
		utils.WriteAndLogError(ctx, schemas.InvalidCredentials, http.StatusUnauthorized, err)
		return
	}

	tokenPair, err := handler.JWTManager.GenerateTokenPair(user)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(ctx, tokenPair, http.StatusOK)
}

// Refresh exchanges a refresh token for a new access token. Presenting an
// access token here fails with the token-type error.
func (handler *UserHandler) Refresh(ctx *gin.Context) {
	payload, ok := utils.GetPayload[schemas.RefreshTokenRequest](ctx)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	user, err := handler.JWTManager.ResolveUser(ctx, pool, payload.RefreshToken, schemas.RefreshTokenType)
	if err != nil {
		switch {
		case errors.Is(err, managers.ErrWrongTokenType):
			utils.WriteAndLogError(ctx, schemas.InvalidTokenType, http.StatusUnauthorized, err)
		case errors.Is(err, managers.ErrTokenInvalid), errors.Is(err, managers.ErrUserGone):
			utils.WriteAndLogError(ctx, schemas.InvalidCredentials, http.StatusUnauthorized, err)
		default:
			utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		}
		return
	}

	accessToken, err := handler.JWTManager.GenerateJWT(user, schemas.AccessTokenType)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(ctx, &schemas.TokenDTO{Token: accessToken}, http.StatusOK)
}

// GetProfile returns the authenticated user together with every category
// and task the user owns.
func (handler *UserHandler) GetProfile(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()

	categories, err := collectCategories(ctx, pool, userCategoriesSQL, user.ID)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	tasks, err := collectTasks(ctx, pool, userTasksSQL, user.ID)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	profile := &schemas.UserProfileDTO{
		UserDTO:        schemas.NewUserDTO(user),
		BaseCategoryID: user.BaseCategoryID,
		Categories:     categories,
		Tasks:          tasks,
	}

	utils.WriteAndLogResponse(ctx, profile, http.StatusOK)
}

// EditProfile updates name, surname and gender of the authenticated user.
func (handler *UserHandler) EditProfile(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	payload, ok := utils.GetPayload[schemas.EditUserRequest](ctx)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	tx := utils.BeginTransaction(ctx, pool)
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(ctx, tx, err) }()

	if _, err = tx.Exec(ctx, editUserQuery, payload.Name, payload.Surname, payload.Gender, user.ID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	user.Name = payload.Name
	user.Surname = payload.Surname
	user.Gender = payload.Gender

	utils.WriteAndLogResponse(ctx, schemas.NewUserDTO(user), http.StatusOK)
}

// ChangePassword verifies the current password before storing the new hash.
func (handler *UserHandler) ChangePassword(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	payload, ok := utils.GetPayload[schemas.ChangePasswordRequest](ctx)
	if !ok {
		return
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(payload.OldPassword)); err != nil {
		utils.WriteAndLogError(ctx, schemas.InvalidCredentials, http.StatusUnauthorized, err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	pool := handler.DatabaseManager.GetPool()
	tx := utils.BeginTransaction(ctx, pool)
	if tx == nil {
		return
	}
	defer func() { utils.RollbackTransaction(ctx, tx, err) }()

	if _, err = tx.Exec(ctx, changePasswdQuery, passwordHash, user.ID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	utils.WriteAndLogResponse(ctx, schemas.Ok(), http.StatusOK)
}

// DeleteAccount removes the user and everything the user owns. Tasks go
// first, then categories, then any pending verify code, then the user row.
func (handler *UserHandler) DeleteAccount(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	tx := utils.BeginTransaction(ctx, pool)
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(ctx, tx, err) }()

	if err = deleteUserCascade(ctx, tx, user); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	ctx.Status(http.StatusNoContent)
}

// RequestVerifyCode generates a six-digit code for the email, stores it
// (replacing any previous code for that address) and mails it out.
func (handler *UserHandler) RequestVerifyCode(ctx *gin.Context) {
	payload, ok := utils.GetPayload[schemas.RequestVerifyCodeRequest](ctx)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()

	var registered bool
	if err := pool.QueryRow(ctx, emailExistsQuery, payload.Email).Scan(&registered); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	if registered {
		utils.WriteAndLogError(ctx, schemas.EmailTaken, http.StatusBadRequest, errors.New("email already registered"))
		return
	}

	// Deep mailbox verification runs against live DNS, so it is gated to
	// production to keep local and CI flows offline.
	if os.Getenv("ENVIRONMENT") == "production" && !handler.Validator.VerifyEmail(payload.Email) {
		utils.WriteAndLogError(ctx, schemas.InvalidEmailAddress, http.StatusBadRequest, errors.New("email failed verification"))
		return
	}

	code := rand.Int31n(900000) + 100000

	tx := utils.BeginTransaction(ctx, pool)
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(ctx, tx, err) }()

	if _, err = tx.Exec(ctx, upsertCodeQuery, payload.Email, code); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	if mailErr := handler.MailManager.SendVerifyCodeMail(payload.Email, payload.Email, strconv.Itoa(int(code))); mailErr != nil {
		if errors.Is(mailErr, managers.ErrRecipientRejected) {
			utils.WriteAndLogError(ctx, schemas.InvalidEmailAddress, http.StatusBadRequest, mailErr)
			return
		}

		utils.WriteAndLogError(ctx, schemas.EmailNotSent, http.StatusInternalServerError, mailErr)
		return
	}

	utils.WriteAndLogResponse(ctx, schemas.Ok(), http.StatusOK)
}

// ConfirmVerifyCode checks the submitted code against the pending one and
// consumes it on success. A code can only be used once.
func (handler *UserHandler) ConfirmVerifyCode(ctx *gin.Context) {
	payload, ok := utils.GetPayload[schemas.ConfirmVerifyCodeRequest](ctx)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	tx := utils.BeginTransaction(ctx, pool)
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(ctx, tx, err) }()

	var storedCode int32
	if err = tx.QueryRow(ctx, codeByEmailQuery, payload.Email).Scan(&storedCode); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.InvalidEmailAddress, http.StatusBadRequest, err)
			return
		}

		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if storedCode != payload.Code {
		err = errors.New("verify code mismatch")
		utils.WriteAndLogError(ctx, schemas.IncorrectVerifyCode, http.StatusBadRequest, err)
		return
	}

	if _, err = tx.Exec(ctx, deleteCodeQuery, payload.Email); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	utils.WriteAndLogResponse(ctx, schemas.Ok(), http.StatusOK)
}

func fetchUserByEmail(ctx context.Context, q interfaces.RowQuerier, email string) (*schemas.User, error) {
	user := &schemas.User{}
	row := q.QueryRow(ctx, userByEmailQuery, email)
	if err := row.Scan(&user.ID, &user.Name, &user.Surname, &user.ShortName, &user.Email, &user.Gender,
		&user.BaseCategoryID, &user.IsAdmin, &user.IsVerified, &user.IsActive, &user.PasswordHash, &user.CreatedAt); err != nil {
		return nil, err
	}

	return user, nil
}

// deleteUserCascade removes everything owned by the user inside the given
// transaction, in dependency order.
func deleteUserCascade(ctx *gin.Context, tx pgx.Tx, user *schemas.User) error {
	if _, err := tx.Exec(ctx, deleteUserTasksSQL, user.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, deleteUserCatsSQL, user.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, deleteCodeQuery, user.Email); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, deleteUserQuery, user.ID); err != nil {
		return err
	}

	return nil
}
