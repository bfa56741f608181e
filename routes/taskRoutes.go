package routes

import (
	"wastetrack-be/controllers"
	"wastetrack-be/middlewares"
	"wastetrack-be/models"

	"github.com/gin-gonic/gin"
)

// TaskRoutes sets up the task routes
func TaskRoutes(r *gin.Engine, tc *controllers.TaskController) {
	task := r.Group("/api/tasks", middlewares.AuthMiddleware())
	{
		task.POST("",
			middlewares.RequireRoles(models.RoleMunicipal),
			tc.CreateTask)
		task.GET("", tc.GetTasks)
		task.GET("/:id", tc.GetTask)
		task.GET("/:id/updates", tc.GetTaskUpdates)
		task.PUT("/:id/assign",
			middlewares.RequireRoles(models.RoleMunicipal),
			tc.AssignTask)
		task.PUT("/:id/status",
			middlewares.RequireRoles(models.RoleWorker, models.RoleMunicipal),
			tc.UpdateTaskStatus)
		task.PUT("/:id/approve",
			middlewares.RequireRoles(models.RoleMunicipal),
			tc.ApproveTask)
		task.POST("/:id/images",
			middlewares.RequireRoles(models.RoleWorker, models.RoleMunicipal),
			tc.UploadTaskImages)
		task.DELETE("/:id",
			middlewares.RequireRoles(models.RoleMunicipal),
			tc.DeleteTask)
	}
}
