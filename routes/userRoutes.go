package routes

import (
	"wastetrack-be/controllers"
	"wastetrack-be/middlewares"
	"wastetrack-be/models"

	"github.com/gin-gonic/gin"
)

// UserRoutes sets up the worker directory routes
func UserRoutes(r *gin.Engine, uc *controllers.UserController) {
	users := r.Group("/api/users")
	{
		users.GET("/worker/:workerId", uc.GetWorkerByWorkerID)

		admin := users.Group("", middlewares.AuthMiddleware(), middlewares.RequireRoles(models.RoleMunicipal))
		{
			admin.GET("", uc.GetUsers)
			admin.POST("", uc.CreateUser)
			admin.GET("/:id", uc.GetUser)
			admin.PUT("/:id", uc.UpdateUser)
			admin.DELETE("/:id", uc.DeleteUser)
			admin.PUT("/:id/points", uc.UpdateUserPoints)
		}
	}
}
