package routes

import (
	"wastetrack-be/controllers"
	"wastetrack-be/middlewares"
	"wastetrack-be/models"

	"github.com/gin-gonic/gin"
)

// ComplaintRoutes sets up the complaint routes
func ComplaintRoutes(r *gin.Engine, cc *controllers.ComplaintController) {
	complaint := r.Group("/api/complaints", middlewares.AuthMiddleware())
	{
		complaint.POST("",
			middlewares.RequireRoles(models.RoleCitizen, models.RoleMunicipal),
			middlewares.ComplaintRateLimiter(10),
			cc.CreateComplaint)
		complaint.GET("", cc.GetComplaints)
		complaint.GET("/:id", cc.GetComplaint)
		complaint.GET("/:id/updates", cc.GetComplaintUpdates)
		complaint.PUT("/:id/assign",
			middlewares.RequireRoles(models.RoleMunicipal),
			cc.AssignComplaint)
		complaint.PUT("/:id/status",
			middlewares.RequireRoles(models.RoleWorker, models.RoleMunicipal),
			cc.UpdateComplaintStatus)
		complaint.PUT("/:id/resolve",
			middlewares.RequireRoles(models.RoleMunicipal),
			cc.ResolveComplaint)
		complaint.PUT("/:id/reject",
			middlewares.RequireRoles(models.RoleMunicipal),
			cc.RejectComplaint)
		complaint.POST("/:id/images",
			middlewares.RequireRoles(models.RoleWorker, models.RoleMunicipal),
			cc.UploadComplaintImages)
	}
}
