package api

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"bitwise74/drive-api/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,32}$`)

type userRegisterRequest struct {
	Username string `json:"username"`
}

// UserRegister creates a new owner, provisions their folder layout on
// disk and hands back an auth cookie. Usernames double as directory
// names in the storage root, so the charset is deliberately narrow.
func (a *API) UserRegister(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req userRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil || !usernameRegex.MatchString(req.Username) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid username",
			"requestID": requestID,
		})
		return
	}

	var existing model.User

	err := a.DB.
		Where("username = ?", req.Username).
		First(&existing).
		Error
	if err == nil {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":     "Username already taken",
			"requestID": requestID,
		})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if username is taken", zap.Error(err))
		return
	}

	userID := uuid.NewString()

	if err := a.Files.ProvisionOwner(c.Request.Context(), userID, req.Username); err != nil {
		abortWithError(c, err)
		return
	}

	exp := time.Now().Add(24 * time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     exp.Unix(),
	})

	signed, err := token.SignedString([]byte(viper.GetString("jwt.secret")))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to sign token", zap.Error(err))
		return
	}

	c.SetCookie("auth_token", signed, int(time.Until(exp).Seconds()), "/", "", false, true)

	c.JSON(http.StatusCreated, gin.H{
		"id":       userID,
		"username": req.Username,
	})
}
