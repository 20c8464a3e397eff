package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-backoffice/internal/database"
	"go-backoffice/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestBindJSONErrorsKeyedByJSONName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/sales",
		strings.NewReader(`{"payment_method":"cheque"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req CreateSaleRequest
	require.False(t, bindJSON(c, &req))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	// Keys are the wire names the client sent, not Go field names
	assert.Contains(t, body.Errors, "sale_date")
	assert.Contains(t, body.Errors, "payment_method")
	assert.Contains(t, body.Errors, "payment_status")
	assert.Contains(t, body.Errors, "items")
	assert.NotContains(t, body.Errors, "saledate")
	assert.Equal(t, "must be one of: cash card transfer credit", body.Errors["payment_method"])
}

func TestCurrentUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	user := models.User{Username: "owner", PasswordHash: "x", Role: "admin"}
	require.NoError(t, db.Create(&user).Error)

	h := New(db)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/user", nil)
	c.Set("userID", user.ID)

	h.CurrentUser(c)
	assert.Equal(t, http.StatusOK, w.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "owner", got["username"])
	assert.Equal(t, "admin", got["role"])
	assert.NotContains(t, got, "password_hash", "hash must never leave the server")
}

func TestCurrentUserMissingRow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)

	h := New(db)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/user", nil)
	c.Set("userID", uint(42))

	h.CurrentUser(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
