package types

import (
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

// StickyMessage is a message kept at the bottom of its channel.
// MessageID changes every time the message is re-sent.
type StickyMessage struct {
	bun.BaseModel `bun:"table:sticky_messages"`

	ID        int64     `bun:"id,pk,autoincrement"`
	MessageID int64     `bun:"message_id,notnull"`
	ChannelID int64     `bun:"channel_id,notnull"`
	GuildID   int64     `bun:"guild_id,notnull"`
	Content   string    `bun:"content,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// MessageSnowflake returns the message id as Discord formats it.
func (s *StickyMessage) MessageSnowflake() string {
	return strconv.FormatInt(s.MessageID, 10)
}

// ChannelSnowflake returns the channel id as Discord formats it.
func (s *StickyMessage) ChannelSnowflake() string {
	return strconv.FormatInt(s.ChannelID, 10)
}

// ParseSnowflake converts a Discord id into its integer form.
func ParseSnowflake(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}
