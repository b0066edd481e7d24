package database_test

import (
	"context"
	"fmt"
	"testing"

	"anthraxutils/internal/config"
	"anthraxutils/internal/database"
	"anthraxutils/internal/database/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *database.StickyStore {
	t.Helper()

	// Every test gets its own in-memory database
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.NewConnection(context.Background(), config.Datastore{
		Driver:      config.DriverSQLite,
		AutoMigrate: true,
	}, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return database.NewStickyStore(db)
}

func TestStickyStoreInsertAndList(t *testing.T) {
	t.Parallel()
	store := setupStore(t)
	ctx := context.Background()

	first := &types.StickyMessage{MessageID: 100, ChannelID: 10, GuildID: 1, Content: "Read the rules"}
	second := &types.StickyMessage{MessageID: 200, ChannelID: 20, GuildID: 1, Content: "No spoilers"}
	require.NoError(t, store.Insert(ctx, first))
	require.NoError(t, store.Insert(ctx, second))
	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	messages, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, int64(100), messages[0].MessageID)
	assert.Equal(t, "Read the rules", messages[0].Content)
	assert.Equal(t, int64(20), messages[1].ChannelID)
	assert.False(t, messages[0].CreatedAt.IsZero())
}

func TestStickyStoreUpdateMessageID(t *testing.T) {
	t.Parallel()
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &types.StickyMessage{MessageID: 100, ChannelID: 10, GuildID: 1, Content: "hello"}))
	require.NoError(t, store.UpdateMessageID(ctx, 100, 101))

	messages, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, int64(101), messages[0].MessageID)
	assert.Equal(t, int64(10), messages[0].ChannelID)
	assert.Equal(t, int64(1), messages[0].GuildID)
	assert.Equal(t, "hello", messages[0].Content)
}

func TestStickyStoreDelete(t *testing.T) {
	t.Parallel()
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &types.StickyMessage{MessageID: 100, ChannelID: 10, GuildID: 1, Content: "a"}))
	require.NoError(t, store.Insert(ctx, &types.StickyMessage{MessageID: 200, ChannelID: 10, GuildID: 1, Content: "b"}))
	require.NoError(t, store.Delete(ctx, 100))

	messages, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, int64(200), messages[0].MessageID)

	// Deleting an unknown id is not an error
	require.NoError(t, store.Delete(ctx, 999))
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.NewConnection(context.Background(), config.Datastore{
		Driver:      config.DriverSQLite,
		AutoMigrate: true,
	}, dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.Migrate(context.Background(), db))
}

func TestNewConnectionUnknownDriver(t *testing.T) {
	t.Parallel()
	_, err := database.NewConnection(context.Background(), config.Datastore{Driver: "mongodb"}, "")
	assert.ErrorIs(t, err, config.ErrUnknownDriver)
}

func TestSnowflakes(t *testing.T) {
	t.Parallel()
	message := types.StickyMessage{MessageID: 1383845771232678071, ChannelID: 1374722200053088306}
	assert.Equal(t, "1383845771232678071", message.MessageSnowflake())
	assert.Equal(t, "1374722200053088306", message.ChannelSnowflake())

	id, err := types.ParseSnowflake("767047725333086209")
	require.NoError(t, err)
	assert.Equal(t, int64(767047725333086209), id)

	_, err = types.ParseSnowflake("not-an-id")
	assert.Error(t, err)
}
