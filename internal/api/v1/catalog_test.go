package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, userToken := env.seedUser(t, "reader", models.RoleUser)
	_, adminToken := env.seedUser(t, "curator", models.RoleAdmin)

	t.Run("Should 401 anonymous creation", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/categories", "", map[string]string{"name": "Films"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Should 403 non-admin creation", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/categories", userToken, map[string]string{"name": "Films"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Should create for an admin", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/categories", adminToken, map[string]string{
			"name": "Films",
			"slug": "films",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("Should reject a malformed slug", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/categories", adminToken, map[string]string{
			"name": "Bad",
			"slug": "Bad Slug!",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Should list anonymously with the envelope", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/categories", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Count   int64                    `json:"count"`
			Results []map[string]interface{} `json:"results"`
		}
		decodeJSON(t, resp, &body)
		assert.EqualValues(t, 1, body.Count)
		require.Len(t, body.Results, 1)
		assert.Equal(t, "films", body.Results[0]["slug"])
	})

	t.Run("Should delete by slug for an admin", func(t *testing.T) {
		resp := env.request(t, http.MethodDelete, "/api/v1/categories/films", adminToken, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = env.request(t, http.MethodDelete, "/api/v1/categories/films", adminToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestTitlesEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser(t, "curator", models.RoleAdmin)

	mustPost := func(path string, body interface{}) {
		t.Helper()
		resp := env.request(t, http.MethodPost, path, adminToken, body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	mustPost("/api/v1/categories", map[string]string{"name": "Films", "slug": "films"})
	mustPost("/api/v1/genres", map[string]string{"name": "Sci-Fi", "slug": "sci-fi"})

	t.Run("Should create a title from slugs and nest refs in the response", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/titles", adminToken, map[string]interface{}{
			"name":     "Dune",
			"year":     2021,
			"category": "films",
			"genre":    []string{"sci-fi"},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var body map[string]interface{}
		decodeJSON(t, resp, &body)
		category, ok := body["category"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "films", category["slug"])
		genres, ok := body["genre"].([]interface{})
		require.True(t, ok)
		assert.Len(t, genres, 1)
		assert.Nil(t, body["rating"])
	})

	t.Run("Should reject an unknown genre slug", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/v1/titles", adminToken, map[string]interface{}{
			"name":  "Ghost",
			"year":  1990,
			"genre": []string{"horror"},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Should filter the list by genre", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/titles?genre=sci-fi", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Count   int64                    `json:"count"`
			Results []map[string]interface{} `json:"results"`
		}
		decodeJSON(t, resp, &body)
		assert.EqualValues(t, 1, body.Count)
	})

	t.Run("Should 404 a malformed title id", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/titles/not-a-uuid", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestReviewAndCommentFlow(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser(t, "curator", models.RoleAdmin)
	_, authorToken := env.seedUser(t, "author", models.RoleUser)
	_, otherToken := env.seedUser(t, "other", models.RoleUser)
	_, modToken := env.seedUser(t, "mod", models.RoleModerator)

	resp := env.request(t, http.MethodPost, "/api/v1/titles", adminToken, map[string]interface{}{
		"name": "Dune",
		"year": 2021,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var title map[string]interface{}
	decodeJSON(t, resp, &title)
	titleID := title["id"].(string)
	reviewsPath := fmt.Sprintf("/api/v1/titles/%s/reviews", titleID)

	t.Run("Should 401 anonymous review creation", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, reviewsPath, "", map[string]interface{}{"text": "x", "score": 5})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	var reviewID string
	t.Run("Should create a review for an authenticated user", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, reviewsPath, authorToken, map[string]interface{}{
			"text":  "masterpiece",
			"score": 10,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var body map[string]interface{}
		decodeJSON(t, resp, &body)
		assert.Equal(t, "author", body["author"])
		reviewID = body["id"].(string)
	})

	t.Run("Should reject a second review by the same author", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, reviewsPath, authorToken, map[string]interface{}{
			"text":  "again",
			"score": 1,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Should reject an out-of-range score", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, reviewsPath, otherToken, map[string]interface{}{
			"text":  "meh",
			"score": 11,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Should surface the rating on the title", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/titles/"+titleID, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		decodeJSON(t, resp, &body)
		assert.InDelta(t, 10.0, body["rating"].(float64), 0.001)
	})

	t.Run("Should 403 another user's edit", func(t *testing.T) {
		resp := env.request(t, http.MethodPatch, reviewsPath+"/"+reviewID, otherToken, map[string]interface{}{
			"text": "hijacked",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Should let the author edit", func(t *testing.T) {
		resp := env.request(t, http.MethodPatch, reviewsPath+"/"+reviewID, authorToken, map[string]interface{}{
			"score": 9,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		decodeJSON(t, resp, &body)
		assert.EqualValues(t, 9, body["score"])
	})

	var commentID string
	commentsPath := reviewsPath + "/" + reviewID + "/comments"
	t.Run("Should let another user comment", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, commentsPath, otherToken, map[string]interface{}{
			"text": "well said",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var body map[string]interface{}
		decodeJSON(t, resp, &body)
		assert.Equal(t, "other", body["author"])
		commentID = body["id"].(string)
	})

	t.Run("Should 403 a stranger deleting the comment", func(t *testing.T) {
		resp := env.request(t, http.MethodDelete, commentsPath+"/"+commentID, authorToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Should let a moderator delete the comment", func(t *testing.T) {
		resp := env.request(t, http.MethodDelete, commentsPath+"/"+commentID, modToken, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("Should let a moderator delete the review", func(t *testing.T) {
		resp := env.request(t, http.MethodDelete, reviewsPath+"/"+reviewID, modToken, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = env.request(t, http.MethodGet, reviewsPath+"/"+reviewID, "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Should 404 reviews under a missing title", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/titles/00000000-0000-0000-0000-000000000000/reviews", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
