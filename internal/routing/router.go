package routing

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"todo-api/internal/handlers"
	"todo-api/internal/managers"
	"todo-api/internal/middleware"
	"todo-api/internal/schemas"
	"todo-api/internal/utils"
)

func InitRouter(databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr) *gin.Engine {
	// Initialize router with logging and recovery middleware
	router := gin.New()
	// Initialize middleware
	setupCommonMiddleware(router)
	// Setup routes
	setupRoutes(router, databaseMgr, mailMgr, jwtMgr)

	return router
}

func setupCommonMiddleware(router *gin.Engine) {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.InjectTrace())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"http://localhost:5173", "http://localhost:19000"},
		AllowMethods:  []string{"GET", "PATCH", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept, Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Trace-Id"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
	})
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}

func setupRoutes(router *gin.Engine, databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr) {
	// Set up version route
	router.GET("/", func(c *gin.Context) {
		apiVersion := os.Getenv("API_VERSION")
		if apiVersion == "" {
			apiVersion = "main:latest"
		}

		metadata := &schemas.MetadataDTO{
			ApiVersion: apiVersion,
			ApiName:    "Todo API",
		}
		utils.WriteAndLogResponse(c, metadata, http.StatusOK)
	})

	// Set up health route
	router.GET("/health", func(c *gin.Context) {
		if err := databaseMgr.GetPool().Ping(c); err != nil {
			c.String(http.StatusInternalServerError, "Database not responding")
			return
		}
		c.Status(http.StatusOK)
	})

	// Set up API routes
	apiRouter := router.Group("/api")
	{
		// Set up user routes
		userRouter := apiRouter.Group("/users")
		userHdl := handlers.NewUserHandler(&databaseMgr, &jwtMgr, &mailMgr)
		userRoutes(userRouter, userHdl, databaseMgr, jwtMgr)

		// Set up category routes
		categoryRouter := apiRouter.Group("/categories")
		categoryRouter.Use(jwtMgr.JWTMiddleware(databaseMgr))
		categoryHdl := handlers.NewCategoryHandler(&databaseMgr)
		categoryRoutes(categoryRouter, categoryHdl)

		// Set up task routes
		taskRouter := apiRouter.Group("/tasks")
		taskRouter.Use(jwtMgr.JWTMiddleware(databaseMgr))
		taskHdl := handlers.NewTaskHandler(&databaseMgr)
		taskRoutes(taskRouter, taskHdl)

		// Set up admin routes
		adminRouter := apiRouter.Group("/admin")
		adminRouter.Use(jwtMgr.JWTMiddleware(databaseMgr), middleware.RequireAdmin())
		adminHdl := handlers.NewAdminHandler(&databaseMgr)
		adminRoutes(adminRouter, adminHdl)
	}
}

func userRoutes(userRouter *gin.RouterGroup, userHdl handlers.UserHdl, databaseMgr managers.DatabaseMgr, jwtMgr managers.JWTMgr) {
	userRouter.POST("", middleware.ValidateAndSanitizeStruct(&schemas.RegistrationRequest{}), userHdl.Register)
	userRouter.POST("/login", middleware.ValidateAndSanitizeStruct(&schemas.LoginRequest{}), userHdl.Login)
	userRouter.POST("/refresh", middleware.ValidateAndSanitizeStruct(&schemas.RefreshTokenRequest{}), userHdl.Refresh)
	userRouter.POST("/verify-code", middleware.ValidateAndSanitizeStruct(&schemas.RequestVerifyCodeRequest{}), userHdl.RequestVerifyCode)
	userRouter.PUT("/verify-code", middleware.ValidateAndSanitizeStruct(&schemas.ConfirmVerifyCodeRequest{}), userHdl.ConfirmVerifyCode)
	// The following routes require the user to be authenticated
	userRouter.Use(jwtMgr.JWTMiddleware(databaseMgr))
	userRouter.GET("/self", userHdl.GetProfile)
	userRouter.PUT("/self", middleware.ValidateAndSanitizeStruct(&schemas.EditUserRequest{}), userHdl.EditProfile)
	userRouter.PATCH("/self/password", middleware.ValidateAndSanitizeStruct(&schemas.ChangePasswordRequest{}), userHdl.ChangePassword)
	userRouter.DELETE("/self", userHdl.DeleteAccount)
}

func categoryRoutes(categoryRouter *gin.RouterGroup, categoryHdl handlers.CategoryHdl) {
	categoryRouter.GET("", categoryHdl.GetCategories)
	categoryRouter.GET("/no-base", categoryHdl.GetCategoriesWithoutBase)
	categoryRouter.GET("/:categoryId", categoryHdl.GetCategory)
	categoryRouter.POST("", middleware.ValidateAndSanitizeStruct(&schemas.CreateCategoryRequest{}), categoryHdl.CreateCategory)
	categoryRouter.PUT("/:categoryId", middleware.ValidateAndSanitizeStruct(&schemas.EditCategoryRequest{}), categoryHdl.EditCategory)
	categoryRouter.DELETE("/:categoryId", categoryHdl.DeleteCategory)
}

func taskRoutes(taskRouter *gin.RouterGroup, taskHdl handlers.TaskHdl) {
	taskRouter.GET("", taskHdl.GetTasks)
	taskRouter.GET("/:taskId", taskHdl.GetTask)
	taskRouter.POST("", middleware.ValidateAndSanitizeStruct(&schemas.CreateTaskRequest{}), taskHdl.CreateTask)
	taskRouter.PUT("/:taskId", middleware.ValidateAndSanitizeStruct(&schemas.EditTaskRequest{}), taskHdl.EditTask)
	taskRouter.PUT("/:taskId/status", taskHdl.ToggleTaskStatus)
	taskRouter.PUT("/:taskId/to-base", taskHdl.MoveTaskToBase)
	taskRouter.DELETE("/:taskId", taskHdl.DeleteTask)
}

func adminRoutes(adminRouter *gin.RouterGroup, adminHdl handlers.AdminHdl) {
	adminRouter.GET("/users", adminHdl.ListUsers)
	adminRouter.PUT("/users/:userId/admin", adminHdl.ToggleAdmin)
	adminRouter.PUT("/users/:userId/verified", adminHdl.ToggleVerified)
	adminRouter.PUT("/users/:userId/active", adminHdl.ToggleActive)
	adminRouter.DELETE("/users/:userId", adminHdl.DeleteUser)
}
