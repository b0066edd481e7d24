package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
)

// Hook implements bun.QueryHook, logging every query with zerolog.
type Hook struct{}

// NewHook creates a new query logging hook.
func NewHook() *Hook {
	return &Hook{}
}

// BeforeQuery is a no-op, timing comes from the event itself.
func (h *Hook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

// AfterQuery logs the query and its execution time.
func (h *Hook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	duration := time.Since(event.StartTime)
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		log.Error().Err(event.Err).Str("query", event.Query).Dur("duration", duration).Msg("Query failed")
		return
	}
	log.Trace().Str("query", event.Query).Dur("duration", duration).Msg("Query executed")
}
