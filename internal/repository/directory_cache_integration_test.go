//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/repository"
	"github.com/spec-kit/escalation-service/internal/repository/memory"
	"github.com/spec-kit/escalation-service/internal/testutils"
)

func TestCachedDirectoryReadsThrough(t *testing.T) {
	ctx := context.Background()
	client := testutils.SetupRedis(t)

	id := uuid.NewString()
	backing := memory.NewDirectory()
	backing.PutUser(domain.User{ID: id, Name: "Tina", Role: domain.RoleTeacher, WhatsApp: "+100", PasswordHash: "secret-hash", Active: true})
	dir := repository.NewCachedDirectory(backing, client, time.Minute, nil)

	user, err := dir.ResolveUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Tina", user.Name)

	raw, err := client.Get(ctx, "directory:user:"+id).Result()
	require.NoError(t, err)
	assert.NotContains(t, raw, "secret-hash")

	// cached entry wins over the backing directory until it expires
	backing.PutUser(domain.User{ID: id, Name: "Renamed", Role: domain.RoleTeacher, Active: true})
	user, err = dir.ResolveUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Tina", user.Name)
	assert.Equal(t, "+100", user.WhatsApp)

	_, err = dir.ResolveUser(ctx, uuid.NewString())
	assert.True(t, repository.IsNotFound(err))
}

func TestNewCachedDirectoryWithoutRedis(t *testing.T) {
	backing := memory.NewDirectory()
	assert.Same(t, backing, repository.NewCachedDirectory(backing, nil, time.Minute, nil))
}
