package migrations

import (
	"context"
	"fmt"

	"anthraxutils/internal/database/types"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewCreateTable().
			Model((*types.StickyMessage)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create sticky_messages: %w", err)
		}

		indexes := []struct {
			name   string
			column string
		}{
			{"sticky_messages_channel_id_idx", "channel_id"},
			{"sticky_messages_message_id_idx", "message_id"},
		}
		for _, index := range indexes {
			_, err = db.NewCreateIndex().
				Model((*types.StickyMessage)(nil)).
				Index(index.name).
				Column(index.column).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create index %s: %w", index.name, err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewDropTable().
			Model((*types.StickyMessage)(nil)).
			IfExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop sticky_messages: %w", err)
		}
		return nil
	})
}
