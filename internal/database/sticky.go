package database

import (
	"context"
	"fmt"

	"anthraxutils/internal/database/types"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
)

// StickyStore handles database operations for sticky messages.
type StickyStore struct {
	db *bun.DB
}

// NewStickyStore creates a sticky message store on top of db.
func NewStickyStore(db *bun.DB) *StickyStore {
	return &StickyStore{db: db}
}

// List returns every sticky message in insertion order.
func (s *StickyStore) List(ctx context.Context) ([]types.StickyMessage, error) {
	var messages []types.StickyMessage
	err := s.db.NewSelect().
		Model(&messages).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sticky messages: %w", err)
	}
	return messages, nil
}

// Insert stores a new sticky message, filling in its id.
func (s *StickyStore) Insert(ctx context.Context, message *types.StickyMessage) error {
	_, err := s.db.NewInsert().
		Model(message).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert sticky message: %w", err)
	}

	log.Debug().
		Int64("message_id", message.MessageID).
		Int64("channel_id", message.ChannelID).
		Msg("Inserted sticky message")
	return nil
}

// UpdateMessageID points the record of oldID at the re-sent message newID.
func (s *StickyStore) UpdateMessageID(ctx context.Context, oldID, newID int64) error {
	_, err := s.db.NewUpdate().
		Model((*types.StickyMessage)(nil)).
		Set("message_id = ?", newID).
		Where("message_id = ?", oldID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update sticky message %d: %w", oldID, err)
	}
	return nil
}

// Delete removes the record of a sticky message.
func (s *StickyStore) Delete(ctx context.Context, messageID int64) error {
	_, err := s.db.NewDelete().
		Model((*types.StickyMessage)(nil)).
		Where("message_id = ?", messageID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete sticky message %d: %w", messageID, err)
	}
	return nil
}
