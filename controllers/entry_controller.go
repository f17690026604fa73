package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/formbuilder-server/config"
	"github.com/vnkhanh/formbuilder-server/middleware"
	"github.com/vnkhanh/formbuilder-server/models"
	"github.com/vnkhanh/formbuilder-server/scoring"
)

type createEntryReq struct {
	Data     map[string]any `json:"data" binding:"required"`
	Duration *int           `json:"duration" binding:"omitempty,gte=0"`
}

// submissionAllowed is the per-user duplicate guard. priorCount is how
// many entries this user already holds on the form, counted under the
// row lock so the insert aborts before a second row can exist.
func submissionAllowed(f models.Form, priorCount int64) error {
	if f.SingleSubmission && priorCount > 0 {
		return models.ErrDuplicateSubmission
	}
	return nil
}

// POST /api/forms/:id/entries
//
// The contract is validate -> score -> persist: entry data is checked
// against every field schema (collecting all violations), quiz forms are
// scored, and the insert runs in one transaction that locks the form row
// so the single-submission guard cannot race with itself.
func CreateEntry(c *gin.Context) {
	formID, err := strconv.Atoi(c.Param("id"))
	if err != nil || formID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid form ID"})
		return
	}

	var form models.Form
	if err := config.DB.
		Where("id = ? AND status <> ?", formID, models.StatusDeleted).
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		First(&form).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Form not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load form"})
		return
	}

	// drafts do not collect entries
	if !form.Published() {
		c.JSON(http.StatusConflict, gin.H{"message": "Form is not published"})
		return
	}

	var req createEntryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	var userID *uint
	if v, exists := c.Get(middleware.CtxUser); exists {
		if u, ok := v.(models.User); ok {
			userID = &u.ID
		}
	}

	// the guard is per (form, user): anonymous submissions cannot be
	// deduplicated, so single-submission forms demand an identity
	if form.SingleSubmission && userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "This form requires login to submit"})
		return
	}

	data := scoring.DataFromJSON(req.Data)
	if errs := scoring.ValidateAll(form.Fields, data); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Entry data is invalid", "errors": errs})
		return
	}

	dataJSON, err := json.Marshal(req.Data)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Entry data is invalid"})
		return
	}

	var entry models.Entry
	var results []scoring.ResultItem

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if form.SingleSubmission {
			// serialize concurrent submissions for this form, then re-check
			var locked models.Form
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&locked, form.ID).Error; err != nil {
				return err
			}
			var count int64
			if err := tx.Model(&models.Entry{}).
				Where("form_id = ? AND user_id = ?", form.ID, *userID).
				Count(&count).Error; err != nil {
				return err
			}
			if err := submissionAllowed(form, count); err != nil {
				return err
			}
		}

		entry = models.Entry{
			FormID:   form.ID,
			UserID:   userID,
			DataJSON: string(dataJSON),
			Duration: req.Duration,
		}
		if form.IsQuiz {
			total, breakdown := scoring.Score(form.Fields, data)
			entry.Score = &total
			results = breakdown
		}

		return tx.Create(&entry).Error
	})

	if errors.Is(err, models.ErrDuplicateSubmission) {
		c.JSON(http.StatusConflict, gin.H{"message": models.ErrDuplicateSubmission.Error()})
		return
	}
	if err != nil {
		log.Printf("could not save entry for form %d: %v", form.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save entry"})
		return
	}

	resp := gin.H{
		"id":         entry.ID,
		"form_id":    entry.FormID,
		"data":       req.Data,
		"created_at": entry.CreatedAt,
	}
	if entry.Duration != nil {
		resp["duration"] = *entry.Duration
	}
	if form.IsQuiz {
		resp["score"] = *entry.Score
		resp["quiz_results"] = results
	}
	c.JSON(http.StatusCreated, resp)
}

// GET /api/forms/:id/entries?page=1&limit=10&start_date=2025-09-01&end_date=2025-09-21
func ListEntries(c *gin.Context) {
	f := c.MustGet(middleware.CtxForm).(models.Form)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := config.DB.Model(&models.Entry{}).Where("form_id = ?", f.ID)

	if s := c.Query("start_date"); s != "" {
		if startDate, err := time.Parse("2006-01-02", s); err == nil {
			query = query.Where("created_at >= ?", startDate)
		}
	}
	if s := c.Query("end_date"); s != "" {
		if endDate, err := time.Parse("2006-01-02", s); err == nil {
			// +1 day so the end date is inclusive
			query = query.Where("created_at < ?", endDate.Add(24*time.Hour))
		}
	}

	var total int64
	query.Count(&total)

	var entries []models.Entry
	if err := query.
		Preload("User").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list entries"})
		return
	}

	resp := []gin.H{}
	for _, e := range entries {
		resp = append(resp, entryJSON(e))
	}

	c.JSON(http.StatusOK, gin.H{
		"form_id": f.ID,
		"page":    page,
		"limit":   limit,
		"total":   total,
		"entries": resp,
	})
}

// GET /api/forms/:id/entries/:entry_id
func GetEntryDetail(c *gin.Context) {
	f := c.MustGet(middleware.CtxForm).(models.Form)

	entryID, err := strconv.Atoi(c.Param("entry_id"))
	if err != nil || entryID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid entry ID"})
		return
	}

	var entry models.Entry
	if err := config.DB.
		Preload("User").
		Where("id = ? AND form_id = ?", entryID, f.ID).
		First(&entry).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Entry not found"})
		return
	}

	c.JSON(http.StatusOK, entryJSON(entry))
}

type updateEntryReq struct {
	Data map[string]any `json:"data" binding:"required"`
}

// PUT /api/forms/:id/entries/:entry_id
//
// Replaces the entry data after re-validating it. The score is a record
// of the submission-time evaluation and is deliberately not recomputed.
func UpdateEntry(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	formID, err := strconv.Atoi(c.Param("id"))
	if err != nil || formID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid form ID"})
		return
	}
	entryID, err := strconv.Atoi(c.Param("entry_id"))
	if err != nil || entryID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid entry ID"})
		return
	}

	var form models.Form
	if err := config.DB.
		Where("id = ? AND status <> ?", formID, models.StatusDeleted).
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		First(&form).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Form not found"})
		return
	}

	var entry models.Entry
	if err := config.DB.
		Where("id = ? AND form_id = ?", entryID, form.ID).
		First(&entry).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Entry not found"})
		return
	}

	isSubmitter := entry.UserID != nil && *entry.UserID == u.ID
	isFormOwner := form.OwnerID != nil && *form.OwnerID == u.ID
	if !isSubmitter && !isFormOwner {
		c.JSON(http.StatusForbidden, gin.H{"message": "You cannot edit this entry"})
		return
	}

	var req updateEntryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	data := scoring.DataFromJSON(req.Data)
	if errs := scoring.ValidateAll(form.Fields, data); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Entry data is invalid", "errors": errs})
		return
	}

	dataJSON, err := json.Marshal(req.Data)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Entry data is invalid"})
		return
	}

	if err := config.DB.Model(&entry).
		Update("data_json", string(dataJSON)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

/* ========== Report: per-field aggregation over entry data ========== */

// GET /api/forms/:id/report
//
// Entry answers live in one JSON column, so the aggregation walks the
// decoded maps in Go instead of GROUP BY over answer rows.
func GetFormReport(c *gin.Context) {
	f := c.MustGet(middleware.CtxForm).(models.Form)

	var fields []models.Field
	if err := config.DB.
		Where("form_id = ?", f.ID).
		Order("sort_order ASC, id ASC").
		Find(&fields).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load fields"})
		return
	}

	var entries []models.Entry
	if err := config.DB.
		Select("id, data_json, score").
		Where("form_id = ?", f.ID).
		Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load entries"})
		return
	}

	// decode once, aggregate per field below
	decoded := make([]map[string]scoring.Value, 0, len(entries))
	for _, e := range entries {
		var raw map[string]any
		if err := json.Unmarshal([]byte(e.DataJSON), &raw); err != nil {
			log.Printf("skipping entry %d with bad data: %v", e.ID, err)
			continue
		}
		decoded = append(decoded, scoring.DataFromJSON(raw))
	}

	results := []gin.H{}
	for i := range fields {
		field := &fields[i]
		stat := gin.H{
			"field_id": field.ID,
			"label":    field.Label,
			"type":     field.Type,
			"stats":    nil,
		}

		switch field.Type {
		case models.FieldNumber, models.FieldCurrency:
			stat["stats"] = numericStats(field, decoded)
		default:
			// select, boolean, text, email, date: value counts
			stat["stats"] = valueCounts(field, decoded)
		}
		results = append(results, stat)
	}

	resp := gin.H{
		"form_id":     f.ID,
		"entry_count": len(entries),
		"results":     results,
	}
	if f.IsQuiz {
		resp["score_stats"] = scoreStats(entries)
	}
	c.JSON(http.StatusOK, resp)
}

func valueCounts(field *models.Field, decoded []map[string]scoring.Value) []gin.H {
	counts := map[string]int{}
	order := []string{}
	total := 0
	for _, data := range decoded {
		v, ok := data[field.Key()]
		if !ok || v.IsEmpty() {
			continue
		}
		text := v.Text()
		if _, seen := counts[text]; !seen {
			order = append(order, text)
		}
		counts[text]++
		total++
	}

	stats := []gin.H{}
	for _, value := range order {
		stats = append(stats, gin.H{
			"value":   value,
			"count":   counts[value],
			"percent": float64(counts[value]) * 100 / float64(total),
		})
	}
	return stats
}

func numericStats(field *models.Field, decoded []map[string]scoring.Value) gin.H {
	var sum, min, max float64
	count := 0
	for _, data := range decoded {
		v, ok := data[field.Key()]
		if !ok {
			continue
		}
		n, ok := v.AsNumber()
		if !ok {
			continue
		}
		if count == 0 || n < min {
			min = n
		}
		if count == 0 || n > max {
			max = n
		}
		sum += n
		count++
	}

	if count == 0 {
		return gin.H{"count": 0, "avg": 0, "min": 0, "max": 0}
	}
	return gin.H{
		"count": count,
		"avg":   sum / float64(count),
		"min":   min,
		"max":   max,
	}
}

func scoreStats(entries []models.Entry) gin.H {
	var sum, min, max int
	count := 0
	for _, e := range entries {
		if e.Score == nil {
			continue
		}
		s := *e.Score
		if count == 0 || s < min {
			min = s
		}
		if count == 0 || s > max {
			max = s
		}
		sum += s
		count++
	}
	if count == 0 {
		return gin.H{"count": 0, "avg": 0, "min": 0, "max": 0}
	}
	return gin.H{
		"count": count,
		"avg":   float64(sum) / float64(count),
		"min":   min,
		"max":   max,
	}
}

func entryJSON(e models.Entry) gin.H {
	var data any
	if err := json.Unmarshal([]byte(e.DataJSON), &data); err != nil {
		data = nil
	}

	out := gin.H{
		"id":         e.ID,
		"form_id":    e.FormID,
		"user_id":    e.UserID,
		"data":       data,
		"created_at": e.CreatedAt,
	}
	if e.Score != nil {
		out["score"] = *e.Score
	}
	if e.Duration != nil {
		out["duration"] = *e.Duration
	}
	if e.User != nil {
		out["user"] = gin.H{"id": e.User.ID, "name": e.User.Name, "email": e.User.Email}
	}
	return out
}
