package sticky

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"anthraxutils/internal/database/types"

	"github.com/rs/zerolog/log"
)

// Lister fetches every stored sticky message.
type Lister interface {
	List(ctx context.Context) ([]types.StickyMessage, error)
}

// Snapshot is an immutable view of the stored sticky messages and the
// channels they live in. Never modify a published snapshot.
type Snapshot struct {
	messages []types.StickyMessage
	channels map[int64]struct{}
}

// NewSnapshot derives the channel set from the given messages.
func NewSnapshot(messages []types.StickyMessage) *Snapshot {
	snapshot := &Snapshot{
		messages: slices.Clone(messages),
		channels: make(map[int64]struct{}, len(messages)),
	}
	for _, message := range messages {
		snapshot.channels[message.ChannelID] = struct{}{}
	}
	return snapshot
}

// Messages returns a copy of every cached sticky message.
func (s *Snapshot) Messages() []types.StickyMessage {
	return slices.Clone(s.messages)
}

// Len returns the number of cached sticky messages.
func (s *Snapshot) Len() int {
	return len(s.messages)
}

// Watching reports whether the channel holds at least one sticky message.
func (s *Snapshot) Watching(channelID int64) bool {
	_, ok := s.channels[channelID]
	return ok
}

// Channels returns the listened channel ids in ascending order.
func (s *Snapshot) Channels() []int64 {
	channels := make([]int64, 0, len(s.channels))
	for channelID := range s.channels {
		channels = append(channels, channelID)
	}
	slices.Sort(channels)
	return channels
}

// InChannel returns the sticky messages of a channel in insertion order.
func (s *Snapshot) InChannel(channelID int64) []types.StickyMessage {
	messages := []types.StickyMessage{}
	for _, message := range s.messages {
		if message.ChannelID == channelID {
			messages = append(messages, message)
		}
	}
	return messages
}

// Find returns the sticky message currently shown as messageID.
func (s *Snapshot) Find(messageID int64) (types.StickyMessage, bool) {
	for _, message := range s.messages {
		if message.MessageID == messageID {
			return message, true
		}
	}
	return types.StickyMessage{}, false
}

// Cache keeps the latest snapshot of the sticky message table in memory.
// Reads never block, refreshes replace the whole snapshot at once.
type Cache struct {
	store   Lister
	current atomic.Pointer[Snapshot]
	// Serialises refreshes so snapshots are published in call order
	refreshMu sync.Mutex
}

// NewCache returns an empty cache backed by store.
func NewCache(store Lister) *Cache {
	cache := &Cache{store: store}
	cache.current.Store(NewSnapshot(nil))
	return cache
}

// Snapshot returns the current snapshot.
func (c *Cache) Snapshot() *Snapshot {
	return c.current.Load()
}

// Refresh reloads every row from the store. A failed fetch is logged and
// leaves the cache empty until the next successful refresh.
func (c *Cache) Refresh(ctx context.Context) *Snapshot {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	messages, err := c.store.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching sticky messages")
		messages = nil
	}

	snapshot := NewSnapshot(messages)
	c.current.Store(snapshot)

	log.Debug().
		Int("messages", snapshot.Len()).
		Int("channels", len(snapshot.channels)).
		Msg("Refreshed sticky message cache")
	return snapshot
}

// Invalidate drops the cached snapshot.
func (c *Cache) Invalidate() {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	c.current.Store(NewSnapshot(nil))
}
