package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"todo-api/internal/interfaces"
	"todo-api/internal/managers"
	"todo-api/internal/schemas"
	"todo-api/internal/utils"
)

type AdminHdl interface {
	ListUsers(ctx *gin.Context)
	ToggleAdmin(ctx *gin.Context)
	ToggleVerified(ctx *gin.Context)
	ToggleActive(ctx *gin.Context)
	DeleteUser(ctx *gin.Context)
}

type AdminHandler struct {
	DatabaseManager managers.DatabaseMgr
}

func NewAdminHandler(databaseManager *managers.DatabaseMgr) AdminHdl {
	return &AdminHandler{
		DatabaseManager: *databaseManager,
	}
}

const (
	userByIdQuery       = "SELECT user_id, name, surname, short_name, email, gender, base_category_id, is_admin, is_verified, is_active, password_hash, created_at FROM todo_schema.users WHERE user_id = $1"
	listUsersSQL        = "SELECT user_id, name, surname, short_name, email, gender, base_category_id, is_admin, is_verified, is_active, password_hash, created_at FROM todo_schema.users ORDER BY created_at LIMIT $1 OFFSET $2"
	countUsersSQL       = "SELECT COUNT(*) FROM todo_schema.users"
	toggleAdminQuery    = "UPDATE todo_schema.users SET is_admin = NOT is_admin WHERE user_id = $1"
	toggleVerifiedQuery = "UPDATE todo_schema.users SET is_verified = NOT is_verified WHERE user_id = $1"
	toggleActiveQuery   = "UPDATE todo_schema.users SET is_active = NOT is_active WHERE user_id = $1"
)

// ListUsers returns a page of all user accounts.
func (handler *AdminHandler) ListUsers(ctx *gin.Context) {
	offset, limit := utils.ParsePaginationParams(ctx)

	pool := handler.DatabaseManager.GetPool()

	var totalRecords int
	if err := pool.QueryRow(ctx, countUsersSQL).Scan(&totalRecords); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	rows, err := pool.Query(ctx, listUsersSQL, limit, offset)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	users := make([]schemas.UserDTO, 0)
	for rows.Next() {
		user := schemas.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.Surname, &user.ShortName, &user.Email, &user.Gender,
			&user.BaseCategoryID, &user.IsAdmin, &user.IsVerified, &user.IsActive, &user.PasswordHash,
			&user.CreatedAt); err != nil {
			utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}

		users = append(users, schemas.NewUserDTO(&user))
	}
	if err := rows.Err(); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.SendPaginatedResponse(ctx, users, offset, limit, totalRecords)
}

// ToggleAdmin flips the admin flag on a non-admin target.
func (handler *AdminHandler) ToggleAdmin(ctx *gin.Context) {
	handler.toggleFlag(ctx, toggleAdminQuery, func(user *schemas.User) {
		user.IsAdmin = !user.IsAdmin
	})
}

// ToggleVerified flips the verified flag on a non-admin target.
func (handler *AdminHandler) ToggleVerified(ctx *gin.Context) {
	handler.toggleFlag(ctx, toggleVerifiedQuery, func(user *schemas.User) {
		user.IsVerified = !user.IsVerified
	})
}

// ToggleActive flips the active flag on a non-admin target.
func (handler *AdminHandler) ToggleActive(ctx *gin.Context) {
	handler.toggleFlag(ctx, toggleActiveQuery, func(user *schemas.User) {
		user.IsActive = !user.IsActive
	})
}

// toggleFlag implements the shared toggle shape: target must exist and must
// not itself be an admin. Admin accounts can only be changed at the
// database, never through the API.
func (handler *AdminHandler) toggleFlag(ctx *gin.Context, query string, apply func(*schemas.User)) {
	targetID, ok := parseIdParam(ctx, utils.UserIdKey)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	target, ok := fetchTargetUser(ctx, pool, targetID)
	if !ok {
		return
	}

	tx := utils.BeginTransaction(ctx, pool)
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(ctx, tx, err) }()

	if _, err = tx.Exec(ctx, query, target.ID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	apply(target)
	utils.WriteAndLogResponse(ctx, schemas.NewUserDTO(target), http.StatusOK)
}

// DeleteUser force-deletes a non-admin account and everything it owns.
func (handler *AdminHandler) DeleteUser(ctx *gin.Context) {
	targetID, ok := parseIdParam(ctx, utils.UserIdKey)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	target, ok := fetchTargetUser(ctx, pool, targetID)
	if !ok {
		return
	}

	tx := utils.BeginTransaction(ctx, pool)
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(ctx, tx, err) }()

	if err = deleteUserCascade(ctx, tx, target); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	ctx.Status(http.StatusNoContent)
}

// fetchTargetUser loads the target account of an admin operation and
// rejects admin targets.
func fetchTargetUser(ctx *gin.Context, q interfaces.RowQuerier, targetID int64) (*schemas.User, bool) {
	target := &schemas.User{}
	row := q.QueryRow(ctx, userByIdQuery, targetID)
	if err := row.Scan(&target.ID, &target.Name, &target.Surname, &target.ShortName, &target.Email, &target.Gender,
		&target.BaseCategoryID, &target.IsAdmin, &target.IsVerified, &target.IsActive, &target.PasswordHash,
		&target.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.UserNotFound, http.StatusNotFound, err)
			return nil, false
		}

		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return nil, false
	}

	if target.IsAdmin {
		utils.WriteAndLogError(ctx, schemas.AccessDenied, http.StatusForbidden, errors.New("target account is an admin"))
		return nil, false
	}

	return target, true
}
