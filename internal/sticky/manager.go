// Package sticky keeps messages pinned to the bottom of their channel by
// deleting and re-sending them whenever someone else posts.
package sticky

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"anthraxutils/internal/database/types"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

// MaxContentLength is the longest message Discord accepts.
const MaxContentLength = 2000

// Channels bumped in parallel at startup.
const startupBumpConcurrency = 4

var (
	ErrNotFound       = errors.New("sticky message not found")
	ErrInvalidContent = errors.New("invalid sticky message content")
)

// Store persists sticky messages.
type Store interface {
	Lister
	Insert(ctx context.Context, message *types.StickyMessage) error
	UpdateMessageID(ctx context.Context, oldID, newID int64) error
	Delete(ctx context.Context, messageID int64) error
}

// Messenger is the part of the Discord session the manager needs.
type Messenger interface {
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Manager creates, bumps and removes sticky messages. Every mutation is
// followed by a cache refresh.
type Manager struct {
	store     Store
	cache     *Cache
	messenger Messenger
	// One mutex per channel id
	locks sync.Map
}

// NewManager creates a manager writing to store and publishing to cache.
func NewManager(store Store, cache *Cache, messenger Messenger) *Manager {
	return &Manager{store: store, cache: cache, messenger: messenger}
}

// Cache returns the cache the manager keeps up to date.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// ValidateContent checks content can be posted as a single message.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is empty", ErrInvalidContent)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return fmt.Errorf("%w: content is longer than %d characters", ErrInvalidContent, MaxContentLength)
	}
	return nil
}

// Create posts content in the channel and stores it as a sticky message.
func (m *Manager) Create(ctx context.Context, guildID, channelID, content string) (types.StickyMessage, error) {
	if err := ValidateContent(content); err != nil {
		return types.StickyMessage{}, err
	}
	guild, err := types.ParseSnowflake(guildID)
	if err != nil {
		return types.StickyMessage{}, fmt.Errorf("invalid guild id %q: %w", guildID, err)
	}
	channel, err := types.ParseSnowflake(channelID)
	if err != nil {
		return types.StickyMessage{}, fmt.Errorf("invalid channel id %q: %w", channelID, err)
	}

	unlock := m.lock(channel)
	defer unlock()

	sent, err := m.messenger.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return types.StickyMessage{}, fmt.Errorf("failed to send sticky message: %w", err)
	}
	messageID, err := types.ParseSnowflake(sent.ID)
	if err != nil {
		return types.StickyMessage{}, fmt.Errorf("invalid message id %q: %w", sent.ID, err)
	}

	record := types.StickyMessage{
		MessageID: messageID,
		ChannelID: channel,
		GuildID:   guild,
		Content:   content,
	}
	if err := m.store.Insert(ctx, &record); err != nil {
		// Do not leave a message behind that nothing will ever bump
		if delErr := m.messenger.ChannelMessageDelete(channelID, sent.ID, discordgo.WithContext(ctx)); delErr != nil {
			log.Warn().Err(delErr).Str("message_id", sent.ID).Msg("Could not delete unsaved sticky message")
		}
		return types.StickyMessage{}, err
	}
	m.cache.Refresh(ctx)

	log.Info().
		Int64("message_id", record.MessageID).
		Int64("channel_id", record.ChannelID).
		Msg("Created sticky message")
	return record, nil
}

// Bump re-sends every sticky message of a channel so it ends up at the bottom.
// A record whose message cannot be fetched is skipped and left as it is.
func (m *Manager) Bump(ctx context.Context, channelID int64) error {
	unlock := m.lock(channelID)
	defer unlock()

	// Read after locking so a bump queued behind another sees its result
	var errs []error
	for _, record := range m.cache.Snapshot().InChannel(channelID) {
		if err := m.bumpOne(ctx, record); err != nil {
			log.Error().
				Err(err).
				Int64("message_id", record.MessageID).
				Int64("channel_id", record.ChannelID).
				Msg("Error in refreshing sticky message")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) bumpOne(ctx context.Context, record types.StickyMessage) error {
	channelID := record.ChannelSnowflake()

	old, err := m.messenger.ChannelMessage(channelID, record.MessageSnowflake(), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to fetch sticky message %d: %w", record.MessageID, err)
	}
	if err := m.messenger.ChannelMessageDelete(channelID, old.ID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete sticky message %d: %w", record.MessageID, err)
	}

	sent, err := m.messenger.ChannelMessageSend(channelID, record.Content, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to re-send sticky message %d: %w", record.MessageID, err)
	}
	newID, err := types.ParseSnowflake(sent.ID)
	if err != nil {
		return fmt.Errorf("invalid message id %q: %w", sent.ID, err)
	}

	if err := m.store.UpdateMessageID(ctx, record.MessageID, newID); err != nil {
		return err
	}
	m.cache.Refresh(ctx)

	log.Debug().
		Int64("old_message_id", record.MessageID).
		Int64("new_message_id", newID).
		Int64("channel_id", record.ChannelID).
		Msg("Bumped sticky message")
	return nil
}

// BumpAll bumps every listened channel, a few channels at a time.
func (m *Manager) BumpAll(ctx context.Context) {
	p := pool.New().WithMaxGoroutines(startupBumpConcurrency)
	for _, channelID := range m.cache.Snapshot().Channels() {
		p.Go(func() {
			// Errors are logged per record by Bump
			_ = m.Bump(ctx, channelID)
		})
	}
	p.Wait()
}

// Remove deletes a sticky message of the guild, both the live message and
// its record. A live message that is already gone is not an error.
func (m *Manager) Remove(ctx context.Context, guildID string, messageID int64) (types.StickyMessage, error) {
	guild, err := types.ParseSnowflake(guildID)
	if err != nil {
		return types.StickyMessage{}, fmt.Errorf("invalid guild id %q: %w", guildID, err)
	}

	record, ok := m.cache.Snapshot().Find(messageID)
	if !ok || record.GuildID != guild {
		return types.StickyMessage{}, fmt.Errorf("%w: %d", ErrNotFound, messageID)
	}

	unlock := m.lock(record.ChannelID)
	defer unlock()

	// The message may have been bumped while waiting for the lock
	record, ok = m.cache.Snapshot().Find(messageID)
	if !ok {
		return types.StickyMessage{}, fmt.Errorf("%w: %d", ErrNotFound, messageID)
	}

	err = m.messenger.ChannelMessageDelete(record.ChannelSnowflake(), record.MessageSnowflake(), discordgo.WithContext(ctx))
	if err != nil && !IsUnknownMessage(err) {
		return types.StickyMessage{}, fmt.Errorf("failed to delete sticky message %d: %w", messageID, err)
	}
	if err := m.store.Delete(ctx, messageID); err != nil {
		return types.StickyMessage{}, err
	}
	m.cache.Refresh(ctx)

	log.Info().
		Int64("message_id", record.MessageID).
		Int64("channel_id", record.ChannelID).
		Msg("Removed sticky message")
	return record, nil
}

// IsUnknownMessage reports whether Discord rejected a call because the
// message does not exist anymore.
func IsUnknownMessage(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage
}

func (m *Manager) lock(channelID int64) func() {
	value, _ := m.locks.LoadOrStore(channelID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
