package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"todo-api/internal/interfaces"
	"todo-api/internal/schemas"
	"todo-api/internal/utils"
)

const (
	categoryByIdQuery = "SELECT category_id, name, color, user_id, created_at FROM todo_schema.categories WHERE category_id = $1"
	taskByIdQuery     = "SELECT task_id, name, description, priority, completed, user_id, category_id, created_at FROM todo_schema.tasks WHERE task_id = $1"
)

// parseIdParam reads a numeric id from the named URL parameter. A malformed
// id is reported as a bad request.
func parseIdParam(ctx *gin.Context, key string) (int64, bool) {
	raw := ctx.Param(key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, err)
		return 0, false
	}

	return id, true
}

// fetchCategoryForUser loads the category and checks it belongs to the user.
// A missing category and a foreign category produce different responses:
// absent is not-found, present-but-foreign is access denied.
func fetchCategoryForUser(ctx *gin.Context, q interfaces.RowQuerier, categoryID int64, user *schemas.User) (*schemas.Category, bool) {
	category := &schemas.Category{}
	row := q.QueryRow(ctx, categoryByIdQuery, categoryID)
	if err := row.Scan(&category.ID, &category.Name, &category.Color, &category.UserID, &category.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.CategoryNotFound, http.StatusNotFound, err)
			return nil, false
		}

		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return nil, false
	}

	if category.UserID != user.ID {
		utils.WriteAndLogError(ctx, schemas.AccessDenied, http.StatusForbidden, errors.New("category owned by another user"))
		return nil, false
	}

	return category, true
}

// fetchTaskForUser loads the task and checks it belongs to the user, with
// the same absent-versus-foreign distinction as categories.
func fetchTaskForUser(ctx *gin.Context, q interfaces.RowQuerier, taskID int64, user *schemas.User) (*schemas.Task, bool) {
	task := &schemas.Task{}
	row := q.QueryRow(ctx, taskByIdQuery, taskID)
	if err := row.Scan(&task.ID, &task.Name, &task.Description, &task.Priority, &task.Completed,
		&task.UserID, &task.CategoryID, &task.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.TaskNotFound, http.StatusNotFound, err)
			return nil, false
		}

		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return nil, false
	}

	if task.UserID != user.ID {
		utils.WriteAndLogError(ctx, schemas.AccessDenied, http.StatusForbidden, errors.New("task owned by another user"))
		return nil, false
	}

	return task, true
}

// guardBaseCategory rejects operations on the user's base category. The
// base category is reported as absent rather than forbidden, so its id is
// not confirmed to the caller.
func guardBaseCategory(ctx *gin.Context, category *schemas.Category, user *schemas.User) bool {
	if category.ID == user.BaseCategoryID {
		utils.WriteAndLogError(ctx, schemas.CategoryNotFound, http.StatusNotFound, errors.New("base category is protected"))
		return false
	}

	return true
}

// collectCategories runs a category query and scans the result set into
// response DTOs.
func collectCategories(ctx context.Context, q interfaces.PgxPoolIface, query string, args ...interface{}) ([]schemas.CategoryDTO, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]schemas.CategoryDTO, 0)
	for rows.Next() {
		category := schemas.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Color, &category.UserID, &category.CreatedAt); err != nil {
			return nil, err
		}

		categories = append(categories, schemas.NewCategoryDTO(&category))
	}

	return categories, rows.Err()
}

// collectTasks runs a task query and scans the result set into response
// DTOs.
func collectTasks(ctx context.Context, q interfaces.PgxPoolIface, query string, args ...interface{}) ([]schemas.TaskDTO, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]schemas.TaskDTO, 0)
	for rows.Next() {
		task := schemas.Task{}
		if err := rows.Scan(&task.ID, &task.Name, &task.Description, &task.Priority, &task.Completed,
			&task.UserID, &task.CategoryID, &task.CreatedAt); err != nil {
			return nil, err
		}

		tasks = append(tasks, schemas.NewTaskDTO(&task))
	}

	return tasks, rows.Err()
}
