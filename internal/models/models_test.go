package models

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/reviewhub/reviewhub/internal/db"
	storage "github.com/reviewhub/reviewhub/pkg/redis"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glog "gorm.io/gorm/logger"
)

// newTestDB opens a throwaway in-memory database with foreign keys on,
// migrated through the same path production uses.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	gdb, err := db.NewDB(context.Background(), sqlite.Open(dsn), func(d *gorm.DB) error {
		d.Logger = glog.Default.LogMode(glog.Silent)
		return nil
	}, Migrate)
	require.NoError(t, err)
	return gdb
}

func newTestRedis(t *testing.T) *storage.RedisClient {
	t.Helper()
	mr := miniredis.RunT(t)
	return &storage.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
}

func mustCreateUser(t *testing.T, gdb *gorm.DB, username, role string) *User {
	t.Helper()
	u := &User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, CreateUser(context.Background(), gdb, u))
	return u
}

func mustCreateTitle(t *testing.T, gdb *gorm.DB, name string, year int) *Title {
	t.Helper()
	title := &Title{Name: name, Year: year}
	require.NoError(t, CreateTitle(context.Background(), gdb, title, "", nil))
	return title
}
