package models

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/reviewhub/reviewhub/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateUser(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()

	t.Run("Should create a fresh user with the default role", func(t *testing.T) {
		u, err := GetOrCreateUser(ctx, gdb, "alice", "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, RoleUser, u.Role)
		assert.NotEqual(t, "", u.ID.String())
	})

	t.Run("Should return the same user on a repeated pair", func(t *testing.T) {
		first, err := GetOrCreateUser(ctx, gdb, "bob", "bob@example.com")
		require.NoError(t, err)
		second, err := GetOrCreateUser(ctx, gdb, "bob", "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("Should reject a taken username with another email", func(t *testing.T) {
		_, err := GetOrCreateUser(ctx, gdb, "carol", "carol@example.com")
		require.NoError(t, err)
		_, err = GetOrCreateUser(ctx, gdb, "carol", "other@example.com")
		require.Error(t, err)
		appErr, ok := err.(*utils.CustomError)
		require.True(t, ok)
		assert.Equal(t, utils.ErrBadRequest.Code, appErr.Code)
	})

	t.Run("Should reject a taken email with another username", func(t *testing.T) {
		_, err := GetOrCreateUser(ctx, gdb, "dave", "dave@example.com")
		require.NoError(t, err)
		_, err = GetOrCreateUser(ctx, gdb, "dave2", "dave@example.com")
		require.Error(t, err)
	})
}

func TestUsernameMeRejected(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()

	t.Run("Should refuse to persist the reserved username", func(t *testing.T) {
		err := CreateUser(ctx, gdb, &User{Username: "me", Email: "me@example.com"})
		require.Error(t, err)
		appErr, ok := err.(*utils.CustomError)
		require.True(t, ok)
		assert.Equal(t, utils.ErrBadRequest.Code, appErr.Code)
	})

	t.Run("Should refuse renaming an existing user to the reserved name", func(t *testing.T) {
		rclient := newTestRedis(t)
		u := mustCreateUser(t, gdb, "erin", RoleUser)
		err := UpdateUser(ctx, rclient, gdb, u, WithUsername("me"))
		require.Error(t, err)
	})
}

func TestUpdateUserInvalidatesCodes(t *testing.T) {
	gdb := newTestDB(t)
	rclient := newTestRedis(t)
	ctx := context.Background()

	u := mustCreateUser(t, gdb, "frank", RoleUser)
	require.NoError(t, rclient.Set(ctx, ConfirmCodeKey(u.Username), "hash", 0).Err())
	require.NoError(t, rclient.Set(ctx, UserCacheKey(u.ID), "cached", 0).Err())

	require.NoError(t, UpdateUser(ctx, rclient, gdb, u, WithBio("updated")))

	_, err := rclient.Get(ctx, ConfirmCodeKey(u.Username)).Result()
	assert.Equal(t, redis.Nil, err)
	_, err = rclient.Get(ctx, UserCacheKey(u.ID)).Result()
	assert.Equal(t, redis.Nil, err)
}

func TestGetUsers(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()

	mustCreateUser(t, gdb, "anna", RoleUser)
	mustCreateUser(t, gdb, "annabelle", RoleUser)
	mustCreateUser(t, gdb, "zoe", RoleAdmin)

	t.Run("Should filter by username substring", func(t *testing.T) {
		users, count, err := GetUsers(ctx, gdb, "anna", 10, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
		assert.Len(t, users, 2)
	})

	t.Run("Should page with the full count intact", func(t *testing.T) {
		users, count, err := GetUsers(ctx, gdb, "", 2, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 3, count)
		assert.Len(t, users, 2)
	})
}
