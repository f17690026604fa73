package controllers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/vnkhanh/formbuilder-server/config"
	"github.com/vnkhanh/formbuilder-server/middleware"
	"github.com/vnkhanh/formbuilder-server/models"
	"github.com/vnkhanh/formbuilder-server/scoring"
	"github.com/vnkhanh/formbuilder-server/utils"
)

type exportRequest struct {
	Format    string  `json:"format"`
	RangeFrom *string `json:"range_from,omitempty"`
	RangeTo   *string `json:"range_to,omitempty"`
}

// POST /api/forms/:id/export
func CreateExport(c *gin.Context) {
	f := c.MustGet(middleware.CtxForm).(models.Form)

	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload"})
		return
	}
	if req.Format == "" {
		req.Format = "csv"
	}
	if req.Format != "csv" && req.Format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "format must be csv or xlsx"})
		return
	}

	var fromPtr, toPtr *time.Time
	if req.RangeFrom != nil {
		if t, err := time.Parse(time.RFC3339, *req.RangeFrom); err == nil {
			fromPtr = &t
		}
	}
	if req.RangeTo != nil {
		if t, err := time.Parse(time.RFC3339, *req.RangeTo); err == nil {
			toPtr = &t
		}
	}

	jobID := uuid.New().String()
	job := models.ExportJob{
		JobID:     jobID,
		FormID:    f.ID,
		Format:    req.Format,
		RangeFrom: fromPtr,
		RangeTo:   toPtr,
		Status:    "queued",
	}
	if err := config.DB.Create(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create export job"})
		return
	}

	go processExportJob(jobID)

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
		"status": "queued",
	})
}

// GET /api/exports/:job_id
func GetExport(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	jobID := c.Param("job_id")
	var job models.ExportJob
	if err := config.DB.First(&job, "job_id = ?", jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "DB error"})
		return
	}

	// exports carry entry data, only the form owner may read them
	var form models.Form
	if err := config.DB.First(&form, job.FormID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load form"})
		return
	}
	if form.OwnerID == nil || *form.OwnerID != u.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "You do not own this export"})
		return
	}

	if job.Status == "done" && job.PublicURL != nil {
		c.JSON(http.StatusOK, gin.H{
			"job_id":     job.JobID,
			"status":     job.Status,
			"public_url": *job.PublicURL,
		})
		return
	}
	if job.Status == "done" && job.FilePath != nil {
		c.FileAttachment(*job.FilePath, path.Base(*job.FilePath))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id": job.JobID,
		"status": job.Status,
		"error":  job.ErrorMsg,
	})
}

func failExportJob(job *models.ExportJob, err error) {
	em := err.Error()
	config.DB.Model(job).Updates(map[string]interface{}{"status": "failed", "error_msg": em})
}

// background worker for one export job
func processExportJob(jobID string) {
	var job models.ExportJob
	if err := config.DB.First(&job, "job_id = ?", jobID).Error; err != nil {
		return
	}
	config.DB.Model(&job).Update("status", "processing")

	var form models.Form
	if err := config.DB.
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		First(&form, job.FormID).Error; err != nil {
		failExportJob(&job, err)
		return
	}

	q := config.DB.Preload("User").Where("form_id = ?", job.FormID)
	if job.RangeFrom != nil {
		q = q.Where("created_at >= ?", job.RangeFrom)
	}
	if job.RangeTo != nil {
		q = q.Where("created_at <= ?", job.RangeTo)
	}
	var entries []models.Entry
	if err := q.Order("created_at ASC").Find(&entries).Error; err != nil {
		failExportJob(&job, err)
		return
	}

	outDir := "./exports"
	os.MkdirAll(outDir, 0755)
	outPath := path.Join(outDir, fmt.Sprintf("export_%s.%s", job.JobID, job.Format))

	header := []string{"entry_id", "user_email", "created_at", "duration", "score"}
	for _, fld := range form.Fields {
		header = append(header, fld.Label)
	}

	rows := [][]string{header}
	for _, e := range entries {
		rows = append(rows, exportRow(form.Fields, e))
	}

	var err error
	if job.Format == "xlsx" {
		err = writeXLSX(outPath, rows)
	} else {
		err = writeCSV(outPath, rows)
	}
	if err != nil {
		failExportJob(&job, err)
		return
	}

	updates := map[string]interface{}{"status": "done", "file_path": outPath}
	if utils.SupabaseConfigured() {
		contentType := "text/csv"
		if job.Format == "xlsx" {
			contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		}
		if url, uerr := utils.UploadExportFile(outPath, contentType); uerr == nil {
			updates["public_url"] = url
		} else {
			log.Printf("export %s: storage upload failed: %v", job.JobID, uerr)
		}
	}
	config.DB.Model(&job).Updates(updates)
}

func exportRow(fields []models.Field, e models.Entry) []string {
	email := ""
	if e.User != nil {
		email = e.User.Email
	}
	duration := ""
	if e.Duration != nil {
		duration = fmt.Sprintf("%d", *e.Duration)
	}
	score := ""
	if e.Score != nil {
		score = fmt.Sprintf("%d", *e.Score)
	}

	row := []string{
		fmt.Sprintf("%d", e.ID),
		email,
		e.CreatedAt.Format(time.RFC3339),
		duration,
		score,
	}

	var raw map[string]any
	_ = json.Unmarshal([]byte(e.DataJSON), &raw)
	data := scoring.DataFromJSON(raw)
	for i := range fields {
		v, ok := data[fields[i].Key()]
		if !ok {
			row = append(row, "")
			continue
		}
		row = append(row, v.Text())
	}
	return row
}

func writeCSV(outPath string, rows [][]string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeXLSX(outPath string, rows [][]string) error {
	x := excelize.NewFile()
	defer x.Close()

	sheet := "Entries"
	idx, err := x.NewSheet(sheet)
	if err != nil {
		return err
	}
	x.SetActiveSheet(idx)
	x.DeleteSheet("Sheet1")

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return x.SaveAs(outPath)
}

// CleanupExpiredExports drops job rows and artifacts older than maxAge.
// Wired to the cron scheduler in main.
func CleanupExpiredExports(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	var jobs []models.ExportJob
	if err := config.DB.Where("created_at < ?", cutoff).Find(&jobs).Error; err != nil {
		log.Printf("export cleanup: %v", err)
		return
	}
	for _, job := range jobs {
		if job.FilePath != nil {
			if err := os.Remove(*job.FilePath); err != nil && !os.IsNotExist(err) {
				log.Printf("export cleanup: remove %s: %v", *job.FilePath, err)
			}
		}
		config.DB.Delete(&models.ExportJob{}, "job_id = ?", job.JobID)
	}
	if len(jobs) > 0 {
		log.Printf("export cleanup: removed %d expired jobs", len(jobs))
	}
}
