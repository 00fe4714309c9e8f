// controllers/auth.go
package controllers

import (
	"net/http"
	"os"

	"github.com/sujalrawat884/BadmintonAIManager/utils"

	"github.com/gin-gonic/gin"
)

type LoginInput struct {
	Password string `json:"password" binding:"required"`
}

// Login exchanges the admin password for a JWT. The club has a single
// admin principal; the bcrypt hash lives in ADMIN_PASSWORD_HASH.
func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	hash := os.Getenv("ADMIN_PASSWORD_HASH")
	if hash == "" {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Admin login is not configured")
		return
	}

	if !utils.CheckPasswordHash(input.Password, hash) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken("club-admin")
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
