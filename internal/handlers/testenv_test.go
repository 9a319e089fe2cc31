package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kgichohi/social_posts/internal/hash"
	"github.com/kgichohi/social_posts/internal/models"
	"github.com/kgichohi/social_posts/internal/token"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Tokens *token.Service

	Users *UserHandler
	Auth  *AuthHandler
	Posts *PostHandler
	Votes *VoteHandler
}

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	// one connection, or a pooled second one sees an empty :memory: db
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to obtain sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Vote{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := initTestDB(t)

	tokens, err := token.NewService([]byte("test-secret"), "HS256", 30*time.Minute)
	require.NoError(t, err)

	env := &testEnv{
		T:      t,
		E:      echo.New(),
		DB:     db,
		Tokens: tokens,
	}
	env.Users = &UserHandler{DB: db}
	env.Auth = &AuthHandler{DB: db, Tokens: tokens}
	env.Posts = &PostHandler{DB: db}
	env.Votes = &VoteHandler{DB: db}
	return env
}

func (env *testEnv) doJSON(method, target string, payload interface{}) (*httptest.ResponseRecorder, echo.Context) {
	body := []byte{}
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(env.T, err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) doForm(method, target string, form url.Values) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) createUser(email, name, password string) *models.User {
	digest, err := hash.HashPassword(password)
	require.NoError(env.T, err)

	user := &models.User{Email: email, Name: name, PasswordHash: digest}
	require.NoError(env.T, env.DB.Create(user).Error)
	return user
}

func (env *testEnv) createPost(owner *models.User, title, content string) *models.Post {
	post := &models.Post{Title: title, Content: content, Published: true, OwnerID: owner.ID}
	require.NoError(env.T, env.DB.Create(post).Error)
	return post
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	return he.Code
}
