package postgres

import (
	"context"
	"database/sql"
	"fmt"

	models "github.com/chainscope/tokenscan/internal/storage"
	"github.com/chainscope/tokenscan/internal/storage/postgres/migrations"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// Config -
type Config struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required,min=1,max=65535"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Database string `yaml:"database" validate:"required"`
	SSLMode  string `yaml:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
}

// DSN -
func (cfg Config) DSN() string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode,
	)
}

// Storage -
type Storage struct {
	db *bun.DB

	Tokens      models.ITokens
	Security    models.ISnapshots[*models.SecuritySnapshot]
	Tokenomics  models.ISnapshots[*models.TokenomicsSnapshot]
	Liquidity   models.ISnapshots[*models.LiquiditySnapshot]
	Community   models.ISnapshots[*models.CommunitySnapshot]
	Development models.ISnapshots[*models.DevelopmentSnapshot]
	ScanEvents  models.IScanEvents
}

// Create -
func Create(ctx context.Context, cfg Config) (Storage, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN())))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.PingContext(ctx); err != nil {
		return Storage{}, errors.Wrap(err, "ping database")
	}

	if err := initDatabase(ctx, db); err != nil {
		return Storage{}, err
	}

	s := Storage{
		db:          db,
		Tokens:      NewTokens(db),
		Security:    NewSnapshots[models.SecuritySnapshot](db),
		Tokenomics:  NewSnapshots[models.TokenomicsSnapshot](db),
		Liquidity:   NewSnapshots[models.LiquiditySnapshot](db),
		Community:   NewSnapshots[models.CommunitySnapshot](db),
		Development: NewSnapshots[models.DevelopmentSnapshot](db),
		ScanEvents:  NewScanEvents(db),
	}

	if err := s.setTokenLastUpdateID(ctx); err != nil {
		return Storage{}, err
	}

	return s, nil
}

func initDatabase(ctx context.Context, db *bun.DB) error {
	for _, data := range models.Models {
		if _, err := db.NewCreateTable().IfNotExists().Model(data).Exec(ctx); err != nil {
			return errors.Wrap(err, "create table")
		}
	}

	if err := applyMigrations(ctx, db); err != nil {
		return err
	}

	return createIndices(ctx, db)
}

func createIndices(ctx context.Context, db *bun.DB) error {
	log.Info().Msg("creating indexes...")
	return db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewCreateIndex().
			IfNotExists().
			Model((*models.Token)(nil)).
			Index("token_updated_at_idx").
			Column("updated_at").
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewCreateIndex().
			IfNotExists().
			Model((*models.ScanEvent)(nil)).
			Index("scan_event_key_idx").
			Column("address", "chain_id").
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewCreateIndex().
			IfNotExists().
			Model((*models.ScanEvent)(nil)).
			Index("scan_event_created_at_idx").
			Column("created_at").
			Exec(ctx); err != nil {
			return err
		}

		return nil
	})
}

func applyMigrations(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, migrations.DbMigrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	_, err := migrator.Migrate(ctx)
	return err
}

func (s Storage) setTokenLastUpdateID(ctx context.Context) error {
	var token models.Token
	err := s.db.NewSelect().
		Model(&token).
		Order("update_id desc").
		Limit(1).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	models.SetLastUpdateID(token.UpdateID)
	return nil
}

// Invalidate - removes the previous snapshot for a key: five category
// rows first, the identity row last. Each delete is independent and a
// single table failing is logged and skipped, never fatal.
func (s Storage) Invalidate(ctx context.Context, address, chainID string) {
	deletes := []struct {
		table string
		fn    func() (int64, error)
	}{
		{"security_snapshot", func() (int64, error) { return s.Security.Delete(ctx, address, chainID) }},
		{"tokenomics_snapshot", func() (int64, error) { return s.Tokenomics.Delete(ctx, address, chainID) }},
		{"liquidity_snapshot", func() (int64, error) { return s.Liquidity.Delete(ctx, address, chainID) }},
		{"community_snapshot", func() (int64, error) { return s.Community.Delete(ctx, address, chainID) }},
		{"development_snapshot", func() (int64, error) { return s.Development.Delete(ctx, address, chainID) }},
		{"token", func() (int64, error) { return s.Tokens.Delete(ctx, address, chainID) }},
	}

	for _, d := range deletes {
		if _, err := d.fn(); err != nil {
			log.Err(err).
				Str("table", d.table).
				Str("address", address).
				Str("chain_id", chainID).
				Msg("snapshot invalidation")
		}
	}
}

// Close -
func (s Storage) Close() error {
	return s.db.Close()
}

// DB -
func (s Storage) DB() *bun.DB {
	return s.db
}
