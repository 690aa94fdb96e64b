package repository

import (
	"context"
	"testing"

	"github.com/Preeth02/aqi-using-ai/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMessageTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Message{}))
	return db
}

func createMailboxOwner(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:            username,
		Email:               username + "@example.com",
		Password:            "hashed",
		IsVerified:          true,
		IsAcceptingMessages: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestMessageRepository_AppendAndList(t *testing.T) {
	db := setupMessageTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	owner := createMailboxOwner(t, db, "alice")

	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Append(ctx, &models.Message{UserID: owner.ID, Content: content}))
	}

	messages, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	// Insertion order is preserved
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
	assert.Equal(t, "third", messages[2].Content)
}

func TestMessageRepository_ListByUser_EmptyMailbox(t *testing.T) {
	db := setupMessageTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	owner := createMailboxOwner(t, db, "bob")

	messages, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestMessageRepository_Delete_ScopedToOwner(t *testing.T) {
	db := setupMessageTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	alice := createMailboxOwner(t, db, "alice")
	bob := createMailboxOwner(t, db, "bob")

	msg := &models.Message{UserID: alice.ID, Content: "for alice"}
	require.NoError(t, repo.Append(ctx, msg))

	// Bob cannot delete Alice's message; the row survives
	err := repo.Delete(ctx, bob.ID, msg.ID)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	remaining, err := repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	// Alice can
	require.NoError(t, repo.Delete(ctx, alice.ID, msg.ID))

	remaining, err = repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestMessageRepository_Delete_AlreadyGone(t *testing.T) {
	db := setupMessageTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	owner := createMailboxOwner(t, db, "carol")

	err := repo.Delete(ctx, owner.ID, 12345)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
