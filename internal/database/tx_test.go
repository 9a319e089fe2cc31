package database

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kgichohi/social_posts/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func runThrough(t *testing.T, db *gorm.DB, handler echo.HandlerFunc) error {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return Transaction(db)(handler)(c)
}

func TestTransactionCommitsOnSuccess(t *testing.T) {
	db := initTestDB(t)

	err := runThrough(t, db, func(c echo.Context) error {
		tx := FromContext(c, db)
		return tx.Create(&models.User{Email: "goose@example.com", Name: "Goose", PasswordHash: "x"}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	db := initTestDB(t)

	boom := errors.New("boom")
	err := runThrough(t, db, func(c echo.Context) error {
		tx := FromContext(c, db)
		require.NoError(t, tx.Create(&models.User{Email: "goose@example.com", Name: "Goose", PasswordHash: "x"}).Error)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestTransactionRollsBackOnPanic(t *testing.T) {
	db := initTestDB(t)

	require.Panics(t, func() {
		_ = runThrough(t, db, func(c echo.Context) error {
			tx := FromContext(c, db)
			require.NoError(t, tx.Create(&models.User{Email: "goose@example.com", Name: "Goose", PasswordHash: "x"}).Error)
			panic("boom")
		})
	})

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestFromContextFallsBack(t *testing.T) {
	db := initTestDB(t)

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	require.Same(t, db, FromContext(c, db))
}
