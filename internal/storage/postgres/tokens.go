package postgres

import (
	"context"
	"time"

	models "github.com/chainscope/tokenscan/internal/storage"
	"github.com/uptrace/bun"
)

// Tokens -
type Tokens struct {
	db *bun.DB
}

// NewTokens -
func NewTokens(db *bun.DB) *Tokens {
	return &Tokens{db: db}
}

// GetByKey -
func (t *Tokens) GetByKey(ctx context.Context, address, chainID string) (token models.Token, err error) {
	err = t.db.NewSelect().
		Model(&token).
		Where("address = ?", address).
		Where("chain_id = ?", chainID).
		Scan(ctx)
	return
}

// Upsert - wholesale replacement keyed by (address, chain)
func (t *Tokens) Upsert(ctx context.Context, token *models.Token) error {
	_, err := t.db.NewInsert().
		Model(token).
		On("CONFLICT (address, chain_id) DO UPDATE").
		Set("updated_at = EXCLUDED.updated_at").
		Set("update_id = EXCLUDED.update_id").
		Set("name = EXCLUDED.name").
		Set("symbol = EXCLUDED.symbol").
		Set("description = EXCLUDED.description").
		Set("logo_url = EXCLUDED.logo_url").
		Set("website = EXCLUDED.website").
		Set("twitter = EXCLUDED.twitter").
		Set("github_url = EXCLUDED.github_url").
		Set("discord_url = EXCLUDED.discord_url").
		Set("telegram_url = EXCLUDED.telegram_url").
		Set("price = EXCLUDED.price").
		Set("change24h = EXCLUDED.change24h").
		Set("market_cap = EXCLUDED.market_cap").
		Set("volume24h = EXCLUDED.volume24h").
		Set("total_supply = EXCLUDED.total_supply").
		Set("provenance = EXCLUDED.provenance").
		Set("overall_score = EXCLUDED.overall_score").
		Exec(ctx)
	return err
}

// Delete -
func (t *Tokens) Delete(ctx context.Context, address, chainID string) (int64, error) {
	result, err := t.db.NewDelete().
		Model((*models.Token)(nil)).
		Where("address = ?", address).
		Where("chain_id = ?", chainID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetStale - tokens whose snapshot is older than the given time,
// oldest first.
func (t *Tokens) GetStale(ctx context.Context, olderThan time.Time, limit int) (tokens []models.Token, err error) {
	if limit < 1 {
		limit = 10
	}
	err = t.db.NewSelect().
		Model(&tokens).
		Where("updated_at < ?", olderThan.Unix()).
		Order("updated_at asc").
		Limit(limit).
		Scan(ctx)
	return
}
