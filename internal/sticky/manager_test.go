package sticky_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"anthraxutils/internal/database/types"
	"anthraxutils/internal/sticky"
	"anthraxutils/internal/sticky/stickytest"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guildID   = "1"
	channelID = "10"
)

func setupManager(t *testing.T, records ...types.StickyMessage) (*sticky.Manager, *stickytest.MemoryStore, *stickytest.Messenger) {
	t.Helper()
	store := stickytest.NewMemoryStore(records...)
	messenger := stickytest.NewMessenger()
	for _, record := range records {
		messenger.Put(record.ChannelSnowflake(), record.MessageSnowflake(), record.Content)
	}
	cache := sticky.NewCache(store)
	cache.Refresh(context.Background())
	return sticky.NewManager(store, cache, messenger), store, messenger
}

func TestValidateContent(t *testing.T) {
	t.Parallel()
	assert.NoError(t, sticky.ValidateContent("hello"))
	assert.NoError(t, sticky.ValidateContent(strings.Repeat("é", sticky.MaxContentLength)))
	assert.ErrorIs(t, sticky.ValidateContent("   "), sticky.ErrInvalidContent)
	assert.ErrorIs(t, sticky.ValidateContent(strings.Repeat("a", sticky.MaxContentLength+1)), sticky.ErrInvalidContent)
}

func TestCreate(t *testing.T) {
	t.Parallel()
	manager, store, messenger := setupManager(t)
	ctx := context.Background()

	record, err := manager.Create(ctx, guildID, channelID, "Read the rules")
	require.NoError(t, err)
	assert.Equal(t, int64(10), record.ChannelID)
	assert.Equal(t, int64(1), record.GuildID)

	live := messenger.Live(channelID)
	require.Len(t, live, 1)
	assert.Equal(t, "Read the rules", live[0].Content)
	assert.Equal(t, live[0].ID, record.MessageSnowflake())

	require.Len(t, store.Records(), 1)
	snapshot := manager.Cache().Snapshot()
	assert.True(t, snapshot.Watching(10))
	cached, ok := snapshot.Find(record.MessageID)
	require.True(t, ok)
	assert.Equal(t, "Read the rules", cached.Content)
}

func TestCreateInvalid(t *testing.T) {
	t.Parallel()
	manager, store, messenger := setupManager(t)
	ctx := context.Background()

	_, err := manager.Create(ctx, guildID, channelID, "")
	assert.ErrorIs(t, err, sticky.ErrInvalidContent)

	_, err = manager.Create(ctx, "guild", channelID, "hello")
	assert.Error(t, err)

	assert.Empty(t, store.Records())
	assert.Empty(t, messenger.Live(channelID))
}

func TestCreateStoreFailureCleansUp(t *testing.T) {
	t.Parallel()
	manager, store, messenger := setupManager(t)
	store.Fail = true

	_, err := manager.Create(context.Background(), guildID, channelID, "hello")
	require.ErrorIs(t, err, stickytest.ErrUnavailable)
	assert.Empty(t, messenger.Live(channelID))
	assert.False(t, manager.Cache().Snapshot().Watching(10))
}

func TestBump(t *testing.T) {
	t.Parallel()
	manager, store, messenger := setupManager(t, types.StickyMessage{
		MessageID: 100, ChannelID: 10, GuildID: 1, Content: "Read the rules",
	})
	messenger.Post(channelID, "someone chatting")

	require.NoError(t, manager.Bump(context.Background(), 10))

	records := store.Records()
	require.Len(t, records, 1)
	assert.NotEqual(t, int64(100), records[0].MessageID)
	assert.Equal(t, int64(10), records[0].ChannelID)
	assert.Equal(t, int64(1), records[0].GuildID)
	assert.Equal(t, "Read the rules", records[0].Content)
	assert.Equal(t, []string{"100"}, messenger.Deleted)

	// The sticky message is now the newest message of the channel
	live := messenger.Live(channelID)
	require.Len(t, live, 2)
	assert.Equal(t, "Read the rules", live[1].Content)
	assert.Equal(t, records[0].MessageSnowflake(), live[1].ID)

	_, ok := manager.Cache().Snapshot().Find(records[0].MessageID)
	assert.True(t, ok)
}

func TestBumpKeepsInsertionOrder(t *testing.T) {
	t.Parallel()
	manager, _, messenger := setupManager(t,
		types.StickyMessage{MessageID: 100, ChannelID: 10, GuildID: 1, Content: "first"},
		types.StickyMessage{MessageID: 101, ChannelID: 10, GuildID: 1, Content: "second"},
	)

	require.NoError(t, manager.Bump(context.Background(), 10))

	live := messenger.Live(channelID)
	require.Len(t, live, 2)
	assert.Equal(t, "first", live[0].Content)
	assert.Equal(t, "second", live[1].Content)
}

func TestBumpDeadMessage(t *testing.T) {
	t.Parallel()
	manager, store, messenger := setupManager(t,
		types.StickyMessage{MessageID: 100, ChannelID: 10, GuildID: 1, Content: "gone"},
		types.StickyMessage{MessageID: 101, ChannelID: 10, GuildID: 1, Content: "alive"},
	)
	messenger.Forget("100")

	err := manager.Bump(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, sticky.IsUnknownMessage(err))

	records := store.Records()
	require.Len(t, records, 2)
	// The dead record is left untouched, the other one still moves
	assert.Equal(t, int64(100), records[0].MessageID)
	assert.NotEqual(t, int64(101), records[1].MessageID)
}

func TestBumpUnwatchedChannel(t *testing.T) {
	t.Parallel()
	manager, store, messenger := setupManager(t)

	require.NoError(t, manager.Bump(context.Background(), 42))
	assert.Empty(t, store.Records())
	assert.Empty(t, messenger.Deleted)
}

func TestBumpConcurrent(t *testing.T) {
	t.Parallel()
	manager, store, messenger := setupManager(t, types.StickyMessage{
		MessageID: 100, ChannelID: 10, GuildID: 1, Content: "Read the rules",
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, manager.Bump(context.Background(), 10))
		}()
	}
	wg.Wait()

	// Every bump saw the previous one, so exactly one copy is left
	live := messenger.Live(channelID)
	require.Len(t, live, 1)
	assert.Equal(t, store.Records()[0].MessageSnowflake(), live[0].ID)
	assert.Len(t, messenger.Deleted, 8)
}

func TestBumpAll(t *testing.T) {
	t.Parallel()
	manager, store, messenger := setupManager(t,
		types.StickyMessage{MessageID: 100, ChannelID: 10, GuildID: 1, Content: "a"},
		types.StickyMessage{MessageID: 200, ChannelID: 20, GuildID: 1, Content: "b"},
		types.StickyMessage{MessageID: 300, ChannelID: 30, GuildID: 2, Content: "c"},
	)

	manager.BumpAll(context.Background())

	assert.ElementsMatch(t, []string{"100", "200", "300"}, messenger.Deleted)
	for _, record := range store.Records() {
		assert.Greater(t, record.MessageID, int64(5000))
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()
	manager, store, messenger := setupManager(t,
		types.StickyMessage{MessageID: 100, ChannelID: 10, GuildID: 1, Content: "a"},
		types.StickyMessage{MessageID: 200, ChannelID: 20, GuildID: 1, Content: "b"},
	)

	record, err := manager.Remove(context.Background(), guildID, 100)
	require.NoError(t, err)
	assert.Equal(t, "a", record.Content)
	assert.Equal(t, []string{"100"}, messenger.Deleted)

	require.Len(t, store.Records(), 1)
	snapshot := manager.Cache().Snapshot()
	_, ok := snapshot.Find(100)
	assert.False(t, ok)
	assert.False(t, snapshot.Watching(10))
	assert.True(t, snapshot.Watching(20))
}

func TestRemoveKeepsChannelWithOtherSticky(t *testing.T) {
	t.Parallel()
	manager, _, _ := setupManager(t,
		types.StickyMessage{MessageID: 100, ChannelID: 10, GuildID: 1, Content: "a"},
		types.StickyMessage{MessageID: 101, ChannelID: 10, GuildID: 1, Content: "b"},
	)

	_, err := manager.Remove(context.Background(), guildID, 100)
	require.NoError(t, err)
	assert.True(t, manager.Cache().Snapshot().Watching(10))
}

func TestRemoveAlreadyDeletedMessage(t *testing.T) {
	t.Parallel()
	manager, store, messenger := setupManager(t,
		types.StickyMessage{MessageID: 100, ChannelID: 10, GuildID: 1, Content: "a"},
	)
	messenger.Forget("100")

	_, err := manager.Remove(context.Background(), guildID, 100)
	require.NoError(t, err)
	assert.Empty(t, store.Records())
}

func TestRemoveNotFound(t *testing.T) {
	t.Parallel()
	manager, store, _ := setupManager(t,
		types.StickyMessage{MessageID: 100, ChannelID: 10, GuildID: 1, Content: "a"},
	)

	_, err := manager.Remove(context.Background(), guildID, 999)
	assert.ErrorIs(t, err, sticky.ErrNotFound)

	// Another guild cannot remove it either
	_, err = manager.Remove(context.Background(), "2", 100)
	assert.ErrorIs(t, err, sticky.ErrNotFound)

	assert.Len(t, store.Records(), 1)
}

func TestIsUnknownMessage(t *testing.T) {
	t.Parallel()
	assert.True(t, sticky.IsUnknownMessage(stickytest.UnknownMessage()))
	assert.False(t, sticky.IsUnknownMessage(errors.New("boom")))
	assert.False(t, sticky.IsUnknownMessage(&discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingAccess}}))
}
