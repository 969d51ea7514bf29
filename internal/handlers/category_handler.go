package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"todo-api/internal/managers"
	"todo-api/internal/schemas"
	"todo-api/internal/utils"
)

type CategoryHdl interface {
	GetCategories(ctx *gin.Context)
	GetCategoriesWithoutBase(ctx *gin.Context)
	GetCategory(ctx *gin.Context)
	CreateCategory(ctx *gin.Context)
	EditCategory(ctx *gin.Context)
	DeleteCategory(ctx *gin.Context)
}

type CategoryHandler struct {
	DatabaseManager managers.DatabaseMgr
}

func NewCategoryHandler(databaseManager *managers.DatabaseMgr) CategoryHdl {
	return &CategoryHandler{
		DatabaseManager: *databaseManager,
	}
}

const (
	insertCategoryQuery    = "INSERT INTO todo_schema.categories (category_id, name, color, user_id, created_at) VALUES ($1, $2, $3, $4, $5)"
	editCategoryQuery      = "UPDATE todo_schema.categories SET name = $1, color = $2 WHERE category_id = $3"
	deleteCategoryQuery    = "DELETE FROM todo_schema.categories WHERE category_id = $1"
	categoriesNoBaseSQL    = "SELECT category_id, name, color, user_id, created_at FROM todo_schema.categories WHERE user_id = $1 AND category_id <> $2 ORDER BY created_at"
	tasksByCategorySQL     = "SELECT task_id, name, description, priority, completed, user_id, category_id, created_at FROM todo_schema.tasks WHERE category_id = $1 ORDER BY created_at"
	deleteCategoryTasksSQL = "DELETE FROM todo_schema.tasks WHERE category_id = $1"
	categoryOwnedByUserSQL = "SELECT category_id, name, color, user_id, created_at FROM todo_schema.categories WHERE user_id = $1 ORDER BY created_at"
)

// GetCategories lists every category of the authenticated user, the base
// category included.
func (handler *CategoryHandler) GetCategories(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	categories, err := collectCategories(ctx, pool, categoryOwnedByUserSQL, user.ID)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(ctx, categories, http.StatusOK)
}

// GetCategoriesWithoutBase lists the user's categories with the base
// category filtered out, for pickers that must not offer it.
func (handler *CategoryHandler) GetCategoriesWithoutBase(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	categories, err := collectCategories(ctx, pool, categoriesNoBaseSQL, user.ID, user.BaseCategoryID)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(ctx, categories, http.StatusOK)
}

// GetCategory returns a single category together with its tasks.
func (handler *CategoryHandler) GetCategory(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	categoryID, ok := parseIdParam(ctx, utils.CategoryIdKey)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	category, ok := fetchCategoryForUser(ctx, pool, categoryID, user)
	if !ok {
		return
	}

	tasks, err := collectTasks(ctx, pool, tasksByCategorySQL, category.ID)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	response := &schemas.CategoryWithTasksDTO{
		CategoryDTO: schemas.NewCategoryDTO(category),
		Tasks:       tasks,
	}

	utils.WriteAndLogResponse(ctx, response, http.StatusOK)
}

// CreateCategory creates a new category for the authenticated user.
func (handler *CategoryHandler) CreateCategory(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	payload, ok := utils.GetPayload[schemas.CreateCategoryRequest](ctx)
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

	categoryID, err := utils.AllocateID(ctx, tx, utils.CategoryIDExistsQuery)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	category := &schemas.Category{
		ID:        categoryID,
		Name:      payload.Name,
		Color:     payload.Color,
		UserID:    user.ID,
		CreatedAt: time.Now(),
	}

	if _, err = tx.Exec(ctx, insertCategoryQuery, category.ID, category.Name, category.Color,
		category.UserID, category.CreatedAt); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	utils.WriteAndLogResponse(ctx, schemas.NewCategoryDTO(category), http.StatusCreated)
}

// EditCategory renames or recolors a category. The base category cannot be
// edited.
func (handler *CategoryHandler) EditCategory(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	categoryID, ok := parseIdParam(ctx, utils.CategoryIdKey)
	if !ok {
		return
	}

	payload, ok := utils.GetPayload[schemas.EditCategoryRequest](ctx)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	category, ok := fetchCategoryForUser(ctx, pool, categoryID, user)
	if !ok {
		return
	}

	if !guardBaseCategory(ctx, category, user) {
		return
	}

	tx := utils.BeginTransaction(ctx, pool)
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(ctx, tx, err) }()

	if _, err = tx.Exec(ctx, editCategoryQuery, payload.Name, payload.Color, category.ID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	category.Name = payload.Name
	category.Color = payload.Color

	utils.WriteAndLogResponse(ctx, schemas.NewCategoryDTO(category), http.StatusOK)
}

// DeleteCategory removes a category and every task in it. The base category
// cannot be deleted.
func (handler *CategoryHandler) DeleteCategory(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	categoryID, ok := parseIdParam(ctx, utils.CategoryIdKey)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	category, ok := fetchCategoryForUser(ctx, pool, categoryID, user)
	if !ok {
		return
	}

	if !guardBaseCategory(ctx, category, user) {
		return
	}

	tx := utils.BeginTransaction(ctx, pool)
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(ctx, tx, err) }()

	if _, err = tx.Exec(ctx, deleteCategoryTasksSQL, category.ID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if _, err = tx.Exec(ctx, deleteCategoryQuery, category.ID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	ctx.Status(http.StatusNoContent)
}
