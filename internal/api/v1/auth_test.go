package v1_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/reviewhub/reviewhub/internal/auth"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("Should register a user and stash a hashed code", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"email":    "alice@example.com",
			"username": "alice",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		decodeJSON(t, resp, &body)
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "alice@example.com", body["email"])

		_, err := models.GetUserBy(ctx, env.db, "username = ?", "alice")
		require.NoError(t, err)
		hash, err := env.rclient.Get(ctx, models.ConfirmCodeKey("alice")).Result()
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
	})

	t.Run("Should reissue a code on a repeated signup", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"email":    "alice@example.com",
			"username": "alice",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Should keep the account usable when delivery fails", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"email":    "erin@example.com",
			"username": "erin",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		hash, err := env.rclient.Get(ctx, models.ConfirmCodeKey("erin")).Result()
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
	})

	t.Run("Should reject the reserved username", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"email":    "me@example.com",
			"username": "me",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Should reject a taken username with another email", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"email":    "intruder@example.com",
			"username": "alice",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Should reject a missing email", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"username": "bob",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, _ := env.seedUser(t, "carol", models.RoleUser)
	hash, err := utils.HashCode("12345678")
	require.NoError(t, err)
	require.NoError(t, env.rclient.Set(ctx, models.ConfirmCodeKey(user.Username), hash, 0).Err())

	t.Run("Should 404 on an unknown username", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/auth/token", "", map[string]string{
			"username":          "ghost",
			"confirmation_code": "12345678",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Should 400 on a wrong code", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/auth/token", "", map[string]string{
			"username":          "carol",
			"confirmation_code": "00000000",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Should issue a working token for the right code", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/auth/token", "", map[string]string{
			"username":          "carol",
			"confirmation_code": "12345678",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		decodeJSON(t, resp, &body)
		assert.Equal(t, "carol", body["username"])
		assert.NotEmpty(t, body["refresh_token"])

		claims, err := auth.VerifyToken(body["token"])
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
	})

	t.Run("Should spend the code on first use", func(t *testing.T) {
		_, err := env.rclient.Get(ctx, models.ConfirmCodeKey(user.Username)).Result()
		assert.Equal(t, redis.Nil, err)

		resp := env.request(t, http.MethodPost, "/api/v1/auth/token", "", map[string]string{
			"username":          "carol",
			"confirmation_code": "12345678",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, _ := env.seedUser(t, "dave", models.RoleUser)
	hash, err := utils.HashCode("12345678")
	require.NoError(t, err)
	require.NoError(t, env.rclient.Set(ctx, models.ConfirmCodeKey(user.Username), hash, 0).Err())

	resp := env.request(t, http.MethodPost, "/api/v1/auth/token", "", map[string]string{
		"username":          "dave",
		"confirmation_code": "12345678",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var issued map[string]string
	decodeJSON(t, resp, &issued)

	t.Run("Should rotate the refresh token", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/auth/token/refresh", "", map[string]string{
			"refresh_token": issued["refresh_token"],
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var rotated map[string]string
		decodeJSON(t, resp, &rotated)
		assert.NotEmpty(t, rotated["token"])
		assert.NotEqual(t, issued["refresh_token"], rotated["refresh_token"])
	})

	t.Run("Should reject the spent refresh token", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/auth/token/refresh", "", map[string]string{
			"refresh_token": issued["refresh_token"],
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Should reject an unknown refresh token", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/auth/token/refresh", "", map[string]string{
			"refresh_token": "never-issued",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
