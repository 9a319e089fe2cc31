package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kgichohi/social_posts/internal/models"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"email":    "goose@example.com",
		"name":     "Goose",
		"password": "password123",
	}
	rec, c := env.doJSON(http.MethodPost, "/users", payload)
	require.NoError(t, env.Users.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "goose@example.com", created.Email)
	require.Equal(t, "Goose", created.Name)
	require.NotEmpty(t, created.ID)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.NotContains(t, raw, "password")
	require.NotContains(t, raw, "password_hash")

	var stored models.User
	require.NoError(t, env.DB.First(&stored, created.ID).Error)
	require.NotEqual(t, "password123", stored.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"email":    "goose@example.com",
		"name":     "Goose",
		"password": "password123",
	}
	rec, c := env.doJSON(http.MethodPost, "/users", payload)
	require.NoError(t, env.Users.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	_, c2 := env.doJSON(http.MethodPost, "/users", payload)
	err := env.Users.Register(c2)
	require.Equal(t, http.StatusConflict, httpCode(t, err))
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t)

	for _, payload := range []map[string]string{
		{"name": "Goose", "password": "password123"},
		{"email": "goose@example.com", "password": "password123"},
		{"email": "goose@example.com", "name": "Goose"},
	} {
		_, c := env.doJSON(http.MethodPost, "/users", payload)
		err := env.Users.Register(c)
		require.Equal(t, http.StatusUnprocessableEntity, httpCode(t, err))
	}
}

func TestGetUserWithPosts(t *testing.T) {
	env := newTestEnv(t)

	user := env.createUser("goose@example.com", "Goose", "password123")
	env.createPost(user, "first title", "first content")
	env.createPost(user, "second title", "second content")

	rec, c := env.doJSON(http.MethodGet, "/users/1", nil)
	c.SetPath("/users/:id")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Users.GetUser(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, user.ID, got.ID)
	require.Len(t, got.Posts, 2)
}

func TestGetUserNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSON(http.MethodGet, "/users/21345678", nil)
	c.SetPath("/users/:id")
	c.SetParamNames("id")
	c.SetParamValues("21345678")
	err := env.Users.GetUser(c)
	require.Equal(t, http.StatusNotFound, httpCode(t, err))
}
