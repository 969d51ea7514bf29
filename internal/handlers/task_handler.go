package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/internal/managers"
	"todo-api/internal/schemas"
	"todo-api/internal/utils"
)

type TaskHdl interface {
	GetTasks(ctx *gin.Context)
	GetTask(ctx *gin.Context)
	CreateTask(ctx *gin.Context)
	EditTask(ctx *gin.Context)
	ToggleTaskStatus(ctx *gin.Context)
	MoveTaskToBase(ctx *gin.Context)
	DeleteTask(ctx *gin.Context)
}

type TaskHandler struct {
	DatabaseManager managers.DatabaseMgr
}

func NewTaskHandler(databaseManager *managers.DatabaseMgr) TaskHdl {
	return &TaskHandler{
		DatabaseManager: *databaseManager,
	}
}

const (
	insertTaskQuery    = "INSERT INTO todo_schema.tasks (task_id, name, description, priority, completed, user_id, category_id, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)"
	editTaskQuery      = "UPDATE todo_schema.tasks SET name = $1, description = $2, priority = $3, completed = $4, category_id = $5 WHERE task_id = $6"
	toggleTaskQuery    = "UPDATE todo_schema.tasks SET completed = NOT completed WHERE task_id = $1"
	moveToBaseQuery    = "UPDATE todo_schema.tasks SET category_id = $1 WHERE task_id = $2"
	deleteTaskQuery    = "DELETE FROM todo_schema.tasks WHERE task_id = $1"
	tasksPageSQL       = "SELECT task_id, name, description, priority, completed, user_id, category_id, created_at FROM todo_schema.tasks WHERE user_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3"
	countUserTasksSQL  = "SELECT COUNT(*) FROM todo_schema.tasks WHERE user_id = $1"
)

// GetTasks returns a page of the user's tasks, ordered by creation time.
func (handler *TaskHandler) GetTasks(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	offset, limit := utils.ParsePaginationParams(ctx)

	pool := handler.DatabaseManager.GetPool()

	var totalRecords int
	if err := pool.QueryRow(ctx, countUserTasksSQL, user.ID).Scan(&totalRecords); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	tasks, err := collectTasks(ctx, pool, tasksPageSQL, user.ID, limit, offset)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.SendPaginatedResponse(ctx, tasks, offset, limit, totalRecords)
}

// GetTask returns a single task.
func (handler *TaskHandler) GetTask(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	taskID, ok := parseIdParam(ctx, utils.TaskIdKey)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	task, ok := fetchTaskForUser(ctx, pool, taskID, user)
	if !ok {
		return
	}

	utils.WriteAndLogResponse(ctx, schemas.NewTaskDTO(task), http.StatusOK)
}

// CreateTask creates a task inside one of the user's categories. The target
// category must exist and belong to the user.
func (handler *TaskHandler) CreateTask(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	payload, ok := utils.GetPayload[schemas.CreateTaskRequest](ctx)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	if _, ok := fetchCategoryForUser(ctx, pool, payload.CategoryID, user); !ok {
		return
	}

	tx := utils.BeginTransaction(ctx, pool)
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(ctx, tx, err) }()

	taskID, err := utils.AllocateID(ctx, tx, utils.TaskIDExistsQuery)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	task := &schemas.Task{
		ID:          taskID,
		Name:        payload.Name,
		Description: payload.Description,
		Priority:    payload.Priority,
		Completed:   payload.Completed,
		UserID:      user.ID,
		CategoryID:  payload.CategoryID,
		CreatedAt:   payload.CreatedAt,
	}

	if _, err = tx.Exec(ctx, insertTaskQuery, task.ID, task.Name, task.Description, task.Priority,
		task.Completed, task.UserID, task.CategoryID, task.CreatedAt); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	utils.WriteAndLogResponse(ctx, schemas.NewTaskDTO(task), http.StatusCreated)
}

// EditTask rewrites a task's fields. A changed target category is checked
// for ownership like on create.
func (handler *TaskHandler) EditTask(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	taskID, ok := parseIdParam(ctx, utils.TaskIdKey)
	if !ok {
		return
	}

	payload, ok := utils.GetPayload[schemas.EditTaskRequest](ctx)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	task, ok := fetchTaskForUser(ctx, pool, taskID, user)
	if !ok {
		return
	}

	if task.CategoryID != payload.CategoryID {
		if _, ok := fetchCategoryForUser(ctx, pool, payload.CategoryID, user); !ok {
			return
		}
	}

	tx := utils.BeginTransaction(ctx, pool)
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(ctx, tx, err) }()

	if _, err = tx.Exec(ctx, editTaskQuery, payload.Name, payload.Description, payload.Priority,
		payload.Completed, payload.CategoryID, task.ID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	task.Name = payload.Name
	task.Description = payload.Description
	task.Priority = payload.Priority
	task.Completed = payload.Completed
	task.CategoryID = payload.CategoryID

	utils.WriteAndLogResponse(ctx, schemas.NewTaskDTO(task), http.StatusOK)
}

// ToggleTaskStatus flips the completed flag of a task.
func (handler *TaskHandler) ToggleTaskStatus(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	taskID, ok := parseIdParam(ctx, utils.TaskIdKey)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	task, ok := fetchTaskForUser(ctx, pool, taskID, user)
	if !ok {
		return
	}

	tx := utils.BeginTransaction(ctx, pool)
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(ctx, tx, err) }()

	if _, err = tx.Exec(ctx, toggleTaskQuery, task.ID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	task.Completed = !task.Completed
	utils.WriteAndLogResponse(ctx, schemas.NewTaskDTO(task), http.StatusOK)
}

// MoveTaskToBase moves a task into the user's base category.
func (handler *TaskHandler) MoveTaskToBase(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	taskID, ok := parseIdParam(ctx, utils.TaskIdKey)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	task, ok := fetchTaskForUser(ctx, pool, taskID, user)
	if !ok {
		return
	}

	tx := utils.BeginTransaction(ctx, pool)
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(ctx, tx, err) }()

	if _, err = tx.Exec(ctx, moveToBaseQuery, user.BaseCategoryID, task.ID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	task.CategoryID = user.BaseCategoryID
	utils.WriteAndLogResponse(ctx, schemas.NewTaskDTO(task), http.StatusOK)
}

// DeleteTask removes a task.
func (handler *TaskHandler) DeleteTask(ctx *gin.Context) {
	user, ok := utils.GetUser(ctx)
	if !ok {
		return
	}

	taskID, ok := parseIdParam(ctx, utils.TaskIdKey)
	if !ok {
		return
	}

	pool := handler.DatabaseManager.GetPool()
	task, ok := fetchTaskForUser(ctx, pool, taskID, user)
	if !ok {
		return
	}

	tx := utils.BeginTransaction(ctx, pool)
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(ctx, tx, err) }()

	if _, err = tx.Exec(ctx, deleteTaskQuery, task.ID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	ctx.Status(http.StatusNoContent)
}
