package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/careline/hms-backend/internal/repository"
	"github.com/careline/hms-backend/internal/service"
	"github.com/careline/hms-backend/internal/utils"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

// Authenticate resolves the bearer token to a user id. It only verifies the
// credential; role and active checks happen in RequireRole.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid authorization header"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		userID, role, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(ctxUserID, userID)
		c.Set(ctxRole, role)
		c.Next()
	}
}

// RequireRole gates a route group on the stored account: the user must
// exist, be active, and hold the required role. Nothing downstream runs
// when the gate rejects.
func RequireRole(users repository.UserRepository, role string) gin.HandlerFunc {
	message := strings.ToUpper(role[:1]) + role[1:] + " access required"
	return func(c *gin.Context) {
		user, err := users.FindByID(currentUserID(c))
		if err != nil || !user.IsActive || user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": message})
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// respondError maps service errors onto the HTTP taxonomy. Anything not
// recognized is an internal error.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrPastDate),
		errors.Is(err, service.ErrSlotConflict),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, utils.ErrBadDate),
		errors.Is(err, utils.ErrBadTime):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
