package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/formbuilder-server/config"
	"github.com/vnkhanh/formbuilder-server/middleware"
	"github.com/vnkhanh/formbuilder-server/models"
	"github.com/vnkhanh/formbuilder-server/utils"
)

/* ========== Create form ========== */

type createFormReq struct {
	Name             string `json:"name" binding:"required,min=3,max=255"`
	Description      string `json:"description"`
	IsQuiz           bool   `json:"is_quiz"`
	SingleSubmission bool   `json:"single_submission"`
}

func CreateForm(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var req createFormReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	form := models.Form{
		Name:             req.Name,
		Description:      req.Description,
		OwnerID:          &u.ID,
		Status:           models.StatusDraft,
		IsQuiz:           req.IsQuiz,
		SingleSubmission: req.SingleSubmission,
		Version:          1,
	}

	if err := config.DB.Create(&form).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create form"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          form.ID,
		"name":        form.Name,
		"description": form.Description,
		"status":      form.Status,
		"version":     form.Version,
		"owner_id":    form.OwnerID,
		"created_at":  form.CreatedAt,
	})
}

/* ========== Form detail ========== */

func GetFormDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid form ID"})
		return
	}

	var form models.Form
	err = config.DB.
		Where("id = ? AND status <> ?", id, models.StatusDeleted).
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		First(&form).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Form not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load form"})
		return
	}

	c.JSON(http.StatusOK, formJSON(form, false))
}

/* ========== My forms ========== */

func GetMyForms(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var forms []models.Form
	if err := config.DB.
		Where("owner_id = ? AND status <> ?", u.ID, models.StatusDeleted).
		Order("created_at DESC").
		Find(&forms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list forms"})
		return
	}

	out := []gin.H{}
	for _, f := range forms {
		out = append(out, gin.H{
			"id":                f.ID,
			"name":              f.Name,
			"description":       f.Description,
			"status":            f.Status,
			"is_quiz":           f.IsQuiz,
			"single_submission": f.SingleSubmission,
			"version":           f.Version,
			"created_at":        f.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"forms": out})
}

/* ========== Admin: all forms ========== */

// GET /api/admin/forms
func GetAllForms(c *gin.Context) {
	var forms []models.Form
	if err := config.DB.
		Preload("Owner").
		Where("status <> ?", models.StatusDeleted).
		Order("created_at DESC").
		Find(&forms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list forms"})
		return
	}

	out := []gin.H{}
	for _, f := range forms {
		fj := gin.H{
			"id":                f.ID,
			"name":              f.Name,
			"status":            f.Status,
			"is_quiz":           f.IsQuiz,
			"single_submission": f.SingleSubmission,
			"version":           f.Version,
			"created_at":        f.CreatedAt,
		}
		if f.Owner != nil {
			fj["owner"] = gin.H{"id": f.Owner.ID, "email": f.Owner.Email}
		}
		out = append(out, fj)
	}
	c.JSON(http.StatusOK, gin.H{"forms": out})
}

/* ========== Update form ========== */

// Draft forms take any combination of edits without touching the version.
// Published forms accept only name/description/quiz-flag, and each update
// bumps the version by exactly 1.
type updateFormReq struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	IsQuiz           *bool   `json:"is_quiz"`
	SingleSubmission *bool   `json:"single_submission"`
}

// validFormName counts runes, matching the min=3,max=255 binding on the
// create path.
func validFormName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 3 && n <= 255
}

// formUpdateSet builds the column whitelist for a form update. Published
// forms refuse single_submission edits, and any accepted edit to a
// published form bumps the version by exactly 1.
func formUpdateSet(f models.Form, req updateFormReq) (map[string]interface{}, error) {
	if req.Name != nil && !validFormName(*req.Name) {
		return nil, errors.New("name must be 3-255 characters")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsQuiz != nil {
		updates["is_quiz"] = *req.IsQuiz
	}
	if req.SingleSubmission != nil {
		if f.Published() {
			return nil, models.ErrFormLocked
		}
		updates["single_submission"] = *req.SingleSubmission
	}

	if len(updates) > 0 && f.Published() {
		updates["version"] = gorm.Expr("version + 1")
	}
	return updates, nil
}

func UpdateForm(c *gin.Context) {
	f := c.MustGet(middleware.CtxForm).(models.Form)

	var req updateFormReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	updates, err := formUpdateSet(f, req)
	if errors.Is(err, models.ErrFormLocked) {
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Nothing to update"})
		return
	}

	if err := config.DB.Model(&models.Form{}).
		Where("id = ?", f.ID).
		Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

/* ========== Delete form (soft) ========== */

func DeleteForm(c *gin.Context) {
	f := c.MustGet(middleware.CtxForm).(models.Form)
	if err := config.DB.Model(&models.Form{}).
		Where("id = ?", f.ID).
		Update("status", models.StatusDeleted).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

/* ========== Publish ========== */

// POST /api/forms/:id/publish
func PublishForm(c *gin.Context) {
	f := c.MustGet(middleware.CtxForm).(models.Form)

	var fieldCount int64
	if err := config.DB.Model(&models.Field{}).
		Where("form_id = ?", f.ID).
		Count(&fieldCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not count fields"})
		return
	}

	if err := f.Publish(fieldCount); err != nil {
		var pe *models.PublishError
		if errors.As(err, &pe) {
			c.JSON(http.StatusConflict, gin.H{"message": pe.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Publish failed"})
		return
	}

	if err := config.DB.Model(&models.Form{}).
		Where("id = ?", f.ID).
		Update("status", models.StatusPublished).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Publish failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "published", "status": models.StatusPublished})
}

/* ========== Share ========== */

// POST /api/forms/:id/share — issues a public share token for the
// submission link plus a one-time-visible edit token.
func ShareForm(c *gin.Context) {
	f := c.MustGet(middleware.CtxForm).(models.Form)

	if !f.Published() {
		c.JSON(http.StatusConflict, gin.H{"message": "Only published forms can be shared"})
		return
	}

	shareToken := uuid.New().String()
	editToken, err := utils.GenerateEditToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not generate tokens"})
		return
	}
	editHash, err := utils.HashEditToken(editToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not generate tokens"})
		return
	}

	if err := config.DB.Model(&models.Form{}).
		Where("id = ?", f.ID).
		Updates(map[string]interface{}{
			"share_token":     shareToken,
			"edit_token_hash": editHash,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save share token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"share_token": shareToken,
		"edit_token":  editToken, // shown once, only the hash is stored
	})
}

/* ========== Public form view ========== */

// GET /api/forms/public/:shareToken — the definition respondents see.
// Correct answers and points never leave the server here.
func GetPublicForm(c *gin.Context) {
	token := c.Param("shareToken")

	var form models.Form
	err := config.DB.
		Where("share_token = ? AND status = ?", token, models.StatusPublished).
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		First(&form).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Form not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load form"})
		return
	}

	c.JSON(http.StatusOK, formJSON(form, true))
}

func formJSON(form models.Form, public bool) gin.H {
	fields := []gin.H{}
	for _, f := range form.Fields {
		fj := gin.H{
			"id":       f.ID,
			"label":    f.Label,
			"type":     f.Type,
			"required": f.Required,
			"order":    f.SortOrder,
		}
		if f.Unit != "" {
			fj["unit"] = f.Unit
		}
		if f.Category != "" {
			fj["category"] = f.Category
		}
		if f.OptionsJSON != "" {
			fj["options"] = rawJSON(f.OptionsJSON)
		}
		if !public {
			fj["points"] = f.Points
			if f.CorrectAnswer != nil {
				fj["correct_answer"] = *f.CorrectAnswer
			}
		}
		fields = append(fields, fj)
	}

	return gin.H{
		"id":                form.ID,
		"name":              form.Name,
		"description":       form.Description,
		"status":            form.Status,
		"is_quiz":           form.IsQuiz,
		"single_submission": form.SingleSubmission,
		"version":           form.Version,
		"created_at":        form.CreatedAt,
		"fields":            fields,
	}
}

func rawJSON(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}
