package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/reviewhub/reviewhub/internal/api"
	"github.com/reviewhub/reviewhub/internal/auth"
	"github.com/reviewhub/reviewhub/internal/db"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/pkg/logger"
	storage "github.com/reviewhub/reviewhub/pkg/redis"
	"github.com/reviewhub/reviewhub/pkg/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glog "gorm.io/gorm/logger"
)

type testEnv struct {
	app     *fiber.App
	db      *gorm.DB
	rclient *storage.RedisClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	auth.SetSecret("test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	gdb, err := db.NewDB(context.Background(), sqlite.Open(dsn), func(d *gorm.DB) error {
		d.Logger = glog.Default.LogMode(glog.Silent)
		return nil
	}, models.Migrate)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rclient := &storage.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	log, err := logger.NewLogger(logger.WithOutputDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(log.Close)

	app := fiber.New()
	// Nothing listens on the SMTP port; delivery failures are tolerated.
	api.SetupRoutes(app, gdb, rclient, log, utils.EmailConfig{
		SMTPHost:  "127.0.0.1",
		SMTPPort:  2525,
		FromEmail: "no-reply@test.local",
		AppURL:    "http://test.local",
	})

	return &testEnv{app: app, db: gdb, rclient: rclient}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// seedUser creates an account and mints a token for it.
func (e *testEnv) seedUser(t *testing.T, username, role string) (*models.User, string) {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, models.CreateUser(context.Background(), e.db, u))
	token, err := auth.GenerateAccessToken(u.ID.String(), u.Username, u.Role)
	require.NoError(t, err)
	return u, token
}
