package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/formbuilder-server/config"
	"github.com/vnkhanh/formbuilder-server/models"
	"github.com/vnkhanh/formbuilder-server/utils"
)

// safe owner check against the *uint pointer
func isOwner(u models.User, f *models.Form) bool {
	return f.OwnerID != nil && *f.OwnerID == u.ID
}

func loadForm(c *gin.Context) (models.Form, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid form ID"})
		return models.Form{}, false
	}

	var f models.Form
	if e := config.DB.Where("id = ? AND status <> ?", id, models.StatusDeleted).First(&f).Error; e != nil {
		if errors.Is(e, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Form not found"})
			return models.Form{}, false
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Could not load form"})
		return models.Form{}, false
	}
	return f, true
}

// CheckFormOwner loads the form into the context and requires the
// authenticated user to own it.
func CheckFormOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(CtxUser).(models.User)

		f, ok := loadForm(c)
		if !ok {
			return
		}

		if !isOwner(u, &f) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You do not own this form"})
			return
		}

		c.Set(CtxForm, f)
		c.Next()
	}
}

// CheckFormEditor allows (1) a JWT owner, or (2) a valid edit token.
func CheckFormEditor() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := loadForm(c)
		if !ok {
			return
		}

		// 1) JWT owner
		if v, ok := c.Get(CtxUser); ok {
			if u, ok2 := v.(models.User); ok2 && isOwner(u, &f) {
				c.Set(CtxForm, f)
				c.Next()
				return
			}
		}

		// 2) Edit token
		token := c.GetHeader(HeaderEditToken)
		if token != "" && utils.VerifyEditToken(f.EditTokenHash, token) {
			c.Set(CtxForm, f)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Missing or invalid edit permission for this form"})
	}
}
