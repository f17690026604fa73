package controllers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/formbuilder-server/config"
	"github.com/vnkhanh/formbuilder-server/middleware"
	"github.com/vnkhanh/formbuilder-server/models"
	"github.com/vnkhanh/formbuilder-server/scoring"
)

type importRowError struct {
	Row    int    `json:"row"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

type importRow struct {
	line int
	data map[string]any
}

// POST /api/forms/:id/entries/import
//
// Bulk CSV import. The header names fields by id or label; each data row
// becomes one entry. Rows are validated fail-fast; a bad row is reported
// and skipped while the rest of the batch continues.
func ImportEntries(c *gin.Context) {
	f := c.MustGet(middleware.CtxForm).(models.Form)

	if !f.Published() {
		c.JSON(http.StatusConflict, gin.H{"message": "Form is not published"})
		return
	}

	var fields []models.Field
	if err := config.DB.
		Where("form_id = ?", f.ID).
		Order("sort_order ASC, id ASC").
		Find(&fields).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load fields"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing CSV file"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not open uploaded file"})
		return
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid CSV", "error": err.Error()})
		return
	}
	if len(records) < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "CSV has no header row"})
		return
	}

	rows, rowErrs, err := parseImportRecords(fields, records)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	imported := 0
	for _, row := range rows {
		dataJSON, merr := json.Marshal(row.data)
		if merr != nil {
			rowErrs = append(rowErrs, importRowError{Row: row.line, Reason: "could not encode row"})
			continue
		}

		entry := models.Entry{
			FormID:   f.ID,
			DataJSON: string(dataJSON),
		}
		if f.IsQuiz {
			total, _ := scoring.Score(fields, scoring.DataFromJSON(row.data))
			entry.Score = &total
		}

		if cerr := config.DB.Create(&entry).Error; cerr != nil {
			rowErrs = append(rowErrs, importRowError{Row: row.line, Reason: "could not save row"})
			continue
		}
		imported++
	}

	if rowErrs == nil {
		rowErrs = []importRowError{}
	}
	c.JSON(http.StatusOK, gin.H{
		"imported_count": imported,
		"errors":         rowErrs,
	})
}

// parseImportRecords maps CSV records onto entry data. The first record
// is the header: each cell must name a field by id or exact label. Data
// rows are validated fail-fast; failures land in the returned error list
// and the row is dropped.
func parseImportRecords(fields []models.Field, records [][]string) ([]importRow, []importRowError, error) {
	byLabel := map[string]string{}
	byKey := map[string]bool{}
	for i := range fields {
		byLabel[fields[i].Label] = fields[i].Key()
		byKey[fields[i].Key()] = true
	}

	header := records[0]
	keys := make([]string, len(header))
	for i, cell := range header {
		cell = strings.TrimSpace(cell)
		switch {
		case byKey[cell]:
			keys[i] = cell
		case byLabel[cell] != "":
			keys[i] = byLabel[cell]
		default:
			return nil, nil, fmt.Errorf("header column %q does not match any field", cell)
		}
	}

	var rows []importRow
	var rowErrs []importRowError
	for n, record := range records[1:] {
		line := n + 2 // 1-based, after the header

		data := map[string]any{}
		for i, cell := range record {
			if i >= len(keys) {
				break
			}
			if strings.TrimSpace(cell) == "" {
				continue
			}
			data[keys[i]] = cell
		}

		if fe := scoring.ValidateFailFast(fields, scoring.DataFromJSON(data)); fe != nil {
			rowErrs = append(rowErrs, importRowError{Row: line, Field: fe.Field, Reason: fe.Reason})
			continue
		}
		rows = append(rows, importRow{line: line, data: data})
	}
	return rows, rowErrs, nil
}
