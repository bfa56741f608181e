package main

import (
	"log"
	"net/http"
	"os"

	"wastetrack-be/config"
	"wastetrack-be/controllers"
	"wastetrack-be/models"
	"wastetrack-be/routes"
	"wastetrack-be/services"
	"wastetrack-be/store"
	authUtils "wastetrack-be/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}

	log.Println("MongoDB connection established successfully!")

	if os.Getenv("REDIS_ADDRESS") != "" {
		config.ConnectRedis()
	} else {
		log.Println("REDIS_ADDRESS not set, complaint rate limiting disabled")
	}

	if err := models.EnsureUserIndexes(config.GetCollection("users")); err != nil {
		log.Println("Warning: failed to ensure user indexes:", err)
	}
	if err := models.EnsureUpdateIndexes(
		config.GetCollection("complaint_updates"),
		config.GetCollection("task_updates"),
	); err != nil {
		log.Println("Warning: failed to ensure update indexes:", err)
	}

	users := store.NewUsers(config.GetCollection("users"))
	complaints := store.NewComplaints(config.GetCollection("complaints"))
	tasks := store.NewTasks(config.GetCollection("tasks"))
	complaintUpdates := store.NewComplaintUpdates(config.GetCollection("complaint_updates"))
	taskUpdates := store.NewTaskUpdates(config.GetCollection("task_updates"))

	ledger := services.NewLedger(users)
	complaintAudit := services.NewComplaintAudit(complaintUpdates)
	taskAudit := services.NewTaskAudit(taskUpdates)
	complaintService := services.NewComplaintService(complaints, tasks, users, ledger, complaintAudit, taskAudit)
	taskService := services.NewTaskService(tasks, users, ledger, taskAudit)

	uploadsDir := os.Getenv("UPLOADS_DIR")
	if uploadsDir == "" {
		uploadsDir = "uploads"
	}
	evidence, err := authUtils.NewLocalEvidenceStore(uploadsDir)
	if err != nil {
		log.Fatalf("Failed to prepare uploads directory: %v", err)
	}

	r := gin.Default()
	r.Use(cors.Default())
	r.Static("/uploads", uploadsDir)

	routes.AuthRoutes(r)
	routes.ComplaintRoutes(r, controllers.NewComplaintController(complaintService, evidence))
	routes.TaskRoutes(r, controllers.NewTaskController(taskService, evidence))
	routes.UserRoutes(r, controllers.NewUserController(ledger))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
