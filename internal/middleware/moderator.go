package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
)

// RequireModerator ensures the request is authenticated and the user holds
// the moderator or admin role. An earlier auth middleware must have put
// user_id into the context.
func RequireModerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDValue, exists := c.Get("user_id")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		userID, ok := userIDValue.(string)
		if !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_user_context"})
			return
		}

		var user models.User
		if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
			return
		}

		if !user.IsModerator() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "moderator_access_required"})
			return
		}

		c.Set("user", &user)
		c.Next()
	}
}
