package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/formbuilder-server/config"
	"github.com/vnkhanh/formbuilder-server/middleware"
	"github.com/vnkhanh/formbuilder-server/models"
	"github.com/vnkhanh/formbuilder-server/utils"
)

/* ========== Add field (draft only) ========== */

type fieldReq struct {
	Label         string          `json:"label" binding:"required"`
	Type          string          `json:"type" binding:"required"`
	Required      bool            `json:"required"`
	Options       json.RawMessage `json:"options"`
	Unit          string          `json:"unit"`
	Category      string          `json:"category"`
	CorrectAnswer *string         `json:"correct_answer"`
	Points        int             `json:"points"`
}

func (r *fieldReq) validate() (string, string) {
	fieldType, err := models.ParseFieldType(r.Type)
	if err != nil {
		return "", err.Error()
	}
	if r.Points < 0 {
		return "", "points must be >= 0"
	}
	if len(r.Options) > 0 && !json.Valid(r.Options) {
		return "", "options is not valid JSON"
	}
	return fieldType, ""
}

func AddField(c *gin.Context) {
	f := c.MustGet(middleware.CtxForm).(models.Form)

	if !f.FieldsEditable() {
		c.JSON(http.StatusConflict, gin.H{"message": models.ErrFieldsLocked.Error()})
		return
	}

	var req fieldReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}
	fieldType, reason := req.validate()
	if reason != "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": reason})
		return
	}

	// next index = MAX(sort_order)+1 (0-based)
	type nextRes struct{ Next int }
	var r nextRes
	if err := config.DB.Model(&models.Field{}).
		Where("form_id = ?", f.ID).
		Select("COALESCE(MAX(sort_order), -1) + 1 AS next").
		Scan(&r).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not determine field order"})
		return
	}

	field := models.Field{
		FormID:        f.ID,
		Label:         req.Label,
		Type:          fieldType,
		Required:      req.Required,
		Unit:          req.Unit,
		Category:      req.Category,
		SortOrder:     r.Next,
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
	}
	if len(req.Options) > 0 {
		field.OptionsJSON = string(req.Options)
	}

	if err := config.DB.Create(&field).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not add field"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"field_id": field.ID, "form_id": f.ID, "order": field.SortOrder})
}

/* ========== Update field (draft only, replaced wholesale) ========== */

func UpdateField(c *gin.Context) {
	field, form, ok := loadFieldForEdit(c)
	if !ok {
		return
	}

	if !form.FieldsEditable() {
		c.JSON(http.StatusConflict, gin.H{"message": models.ErrFieldsLocked.Error()})
		return
	}

	var req fieldReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}
	fieldType, reason := req.validate()
	if reason != "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": reason})
		return
	}

	// fields are immutable values: every update replaces the whole row,
	// keeping only id, form and position
	replacement := models.Field{
		ID:            field.ID,
		FormID:        field.FormID,
		Label:         req.Label,
		Type:          fieldType,
		Required:      req.Required,
		Unit:          req.Unit,
		Category:      req.Category,
		SortOrder:     field.SortOrder,
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
	}
	if len(req.Options) > 0 {
		replacement.OptionsJSON = string(req.Options)
	}

	if err := config.DB.Save(&replacement).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

/* ========== Delete field (draft only) + order compaction ========== */

func DeleteField(c *gin.Context) {
	field, form, ok := loadFieldForEdit(c)
	if !ok {
		return
	}

	if !form.FieldsEditable() {
		c.JSON(http.StatusConflict, gin.H{"message": models.ErrFieldsLocked.Error()})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&field).Error; err != nil {
			return err
		}
		// close the gap: everything behind moves up one slot (0-based)
		if err := tx.Model(&models.Field{}).
			Where("form_id = ? AND sort_order > ?", field.FormID, field.SortOrder).
			Update("sort_order", gorm.Expr("sort_order - 1")).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

/* ========== Reorder fields (draft only) ========== */

type reorderReq struct {
	Order []uint `json:"order" binding:"required,min=1,dive,required"`
}

func ReorderFields(c *gin.Context) {
	f := c.MustGet(middleware.CtxForm).(models.Form)

	if !f.FieldsEditable() {
		c.JSON(http.StatusConflict, gin.H{"message": models.ErrFieldsLocked.Error()})
		return
	}

	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	// every listed id must belong to the form
	var count int64
	if err := config.DB.Model(&models.Field{}).
		Where("form_id = ? AND id IN ?", f.ID, req.Order).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not validate fields"})
		return
	}
	if count != int64(len(req.Order)) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Order list contains fields outside this form"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for idx, fieldID := range req.Order {
			if err := tx.Model(&models.Field{}).
				Where("id = ? AND form_id = ?", fieldID, f.ID).
				Update("sort_order", idx).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Reorder failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

// loadFieldForEdit resolves /api/fields/:id back to its form and checks
// edit permission (JWT owner or edit token), mirroring the form-scoped
// editor middleware.
func loadFieldForEdit(c *gin.Context) (models.Field, models.Form, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid field ID"})
		return models.Field{}, models.Form{}, false
	}

	var field models.Field
	if e := config.DB.First(&field, id).Error; e != nil {
		if errors.Is(e, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Field not found"})
			return models.Field{}, models.Form{}, false
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Could not load field"})
		return models.Field{}, models.Form{}, false
	}

	var form models.Form
	if e := config.DB.
		Where("id = ? AND status <> ?", field.FormID, models.StatusDeleted).
		First(&form).Error; e != nil {
		if errors.Is(e, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Form not found"})
			return models.Field{}, models.Form{}, false
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Could not load form"})
		return models.Field{}, models.Form{}, false
	}

	// JWT owner
	if v, ok := c.Get(middleware.CtxUser); ok {
		if u, ok2 := v.(models.User); ok2 && form.OwnerID != nil && *form.OwnerID == u.ID {
			return field, form, true
		}
	}
	// edit token
	token := c.GetHeader(middleware.HeaderEditToken)
	if token != "" && utils.VerifyEditToken(form.EditTokenHash, token) {
		return field, form, true
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Missing or invalid edit permission for this field"})
	return models.Field{}, models.Form{}, false
}
