package controllers

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"

	"github.com/vnkhanh/formbuilder-server/config"
	"github.com/vnkhanh/formbuilder-server/middleware"
	"github.com/vnkhanh/formbuilder-server/models"
	"github.com/vnkhanh/formbuilder-server/utils"
)

type registerReq struct {
	Name     string `json:"name" binding:"required,min=1"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var count int64
	config.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "Email already registered"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not hash password"})
		return
	}

	u := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		IsAdmin:      false,
	}

	if err := config.DB.Create(&u).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create account"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": publicUser(u)})
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var u models.User
	if err := config.DB.Where("email = ?", req.Email).First(&u).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}
	if !utils.CheckPassword(u.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	token, err := utils.GenerateToken(strconv.FormatUint(uint64(u.ID), 10), roleOf(u))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": publicUser(u)})
}

type googleLoginReq struct {
	IDToken string `json:"id_token" binding:"required"`
}

// GoogleLoginHandler verifies a Google ID token and signs the user in,
// creating the account on first login.
func GoogleLoginHandler(c *gin.Context) {
	var req googleLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	payload, err := idtoken.Validate(context.Background(), req.IDToken, clientID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid Google token"})
		return
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google token has no email"})
		return
	}
	if name == "" {
		name = email
	}

	var u models.User
	err = config.DB.Where("email = ?", email).First(&u).Error
	if err == gorm.ErrRecordNotFound {
		// random password hash, the account is Google-only
		rawToken, _ := utils.GenerateEditToken()
		hash, herr := utils.HashPassword(rawToken)
		if herr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create account"})
			return
		}
		u = models.User{Name: name, Email: email, PasswordHash: hash}
		if err := config.DB.Create(&u).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create account"})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not look up account"})
		return
	}

	token, err := utils.GenerateToken(strconv.FormatUint(uint64(u.ID), 10), roleOf(u))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": publicUser(u)})
}

func Me(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)
	c.JSON(http.StatusOK, gin.H{"user": publicUser(u)})
}

func roleOf(u models.User) string {
	if u.IsAdmin {
		return "admin"
	}
	return "user"
}

func publicUser(u models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"is_admin":   u.IsAdmin,
		"created_at": u.CreatedAt,
	}
}
