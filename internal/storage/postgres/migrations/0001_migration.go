package migrations

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
)

func init() {
	DbMigrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		// early rows were stored with mixed-case hex addresses; every
		// lookup canonicalizes them to lower case, so backfill the
		// key. Base58 addresses are case sensitive and stay untouched.
		for _, table := range []string{
			"token",
			"security_snapshot",
			"tokenomics_snapshot",
			"liquidity_snapshot",
			"community_snapshot",
			"development_snapshot",
			"scan_event",
		} {
			result, err := db.ExecContext(ctx, "UPDATE "+table+" SET address = lower(address) WHERE address LIKE '0x%' AND address != lower(address)")
			if err != nil {
				return err
			}
			if rows, err := result.RowsAffected(); err == nil && rows > 0 {
				log.Info().Str("table", table).Int64("rows", rows).Msg("lower-cased addresses")
			}
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		return nil
	})
}
