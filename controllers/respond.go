package controllers

import (
	"context"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"wastetrack-be/models"
	"wastetrack-be/services"
	authUtils "wastetrack-be/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// requestContext bounds every store operation the same way
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// actorFrom reads the identity set by the auth middleware.
func actorFrom(c *gin.Context) (services.Actor, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return services.Actor{}, false
	}
	userID, err := primitive.ObjectIDFromHex(userIDVal.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return services.Actor{}, false
	}
	roleVal, _ := c.Get("role")
	role, _ := roleVal.(string)
	return services.Actor{ID: userID, Role: models.Role(role)}, true
}

// abortWithError maps the service error taxonomy onto HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case services.IsAuthorization(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Println("Internal error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

const maxEvidenceFiles = 5

// saveEvidence stores uploaded "images" form files and returns their URLs.
func saveEvidence(c *gin.Context, storage authUtils.EvidenceStorage) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, services.Validationf("invalid multipart form")
	}
	files := form.File["images"]
	if len(files) > maxEvidenceFiles {
		files = files[:maxEvidenceFiles]
	}

	var urls []string
	for _, file := range files {
		url, err := saveOne(storage, file)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func saveOne(storage authUtils.EvidenceStorage, file *multipart.FileHeader) (string, error) {
	url, err := storage.Save(file)
	if err != nil {
		log.Println("Error storing evidence image:", err)
		return "", err
	}
	return url, nil
}
