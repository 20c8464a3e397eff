package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go-backoffice/internal/apperr"
	"go-backoffice/internal/pagination"
	"go-backoffice/internal/reports"
	"go-backoffice/internal/sales"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

func init() {
	// Key validation errors on the json names clients actually send,
	// not the Go field names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// Handler carries the shared dependencies for every endpoint.
type Handler struct {
	db      *gorm.DB
	sales   *sales.Orchestrator
	reports *reports.Engine
}

func New(db *gorm.DB) *Handler {
	return &Handler{
		db:      db,
		sales:   sales.New(db),
		reports: reports.New(db),
	}
}

// bindJSON parses the request body and, on validation failure, answers
// 422 with field-level detail. Returns false when the request was
// already answered.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = validationMessage(fe)
			}
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"message": "The given data was invalid",
				"errors":  fields,
			})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	default:
		return "invalid value"
	}
}

// paramID parses the :id path segment. Answers 400 and returns false on
// garbage input.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

// currentUserID reads the user id the auth middleware resolved.
func currentUserID(c *gin.Context) uint {
	return c.MustGet("userID").(uint)
}

func pageParams(c *gin.Context) pagination.Params {
	return pagination.FromQuery(c.Query("page"), c.Query("per_page"))
}

// dateRangeQuery parses optional start_date/end_date filters (YYYY-MM-DD).
func dateRangeQuery(c *gin.Context) (start, end *time.Time, ok bool) {
	for _, q := range []struct {
		name string
		dest **time.Time
	}{
		{"start_date", &start},
		{"end_date", &end},
	} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"message": "The given data was invalid",
				"errors":  gin.H{q.name: "must be a date in YYYY-MM-DD format"},
			})
			return nil, nil, false
		}
		*q.dest = &t
	}
	return start, end, true
}

// requiredDateRange parses mandatory start_date/end_date query params.
func requiredDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, end, ok := dateRangeQuery(c)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	missing := gin.H{}
	if start == nil {
		missing["start_date"] = "this field is required"
	}
	if end == nil {
		missing["end_date"] = "this field is required"
	}
	if len(missing) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid",
			"errors":  missing,
		})
		return time.Time{}, time.Time{}, false
	}
	return *start, *end, true
}

// serviceError maps the apperr taxonomy onto HTTP responses. fallback is
// the generic message for unclassified failures.
func serviceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrInvalidDateRange), errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback, "error": err.Error()})
	}
}

// parseDateString accepts plain dates and full RFC3339 timestamps.
func parseDateString(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// dayStart/dayEnd widen a date filter to whole days.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	return dayStart(t).Add(24*time.Hour - time.Nanosecond)
}
