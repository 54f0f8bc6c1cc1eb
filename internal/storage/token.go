package storage

import (
	"context"
	"time"

	"github.com/chainscope/tokenscan/internal/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// TokenUpdateID - incremental counter
var TokenUpdateID = types.NewCounter(0)

// SetLastUpdateID -
func SetLastUpdateID(value int64) {
	TokenUpdateID.Set(value)
}

// ITokens -
type ITokens interface {
	GetByKey(ctx context.Context, address, chainID string) (Token, error)
	Upsert(ctx context.Context, token *Token) error
	Delete(ctx context.Context, address, chainID string) (int64, error)
	GetStale(ctx context.Context, olderThan time.Time, limit int) ([]Token, error)
}

// Token - identity row of a scanned token: the natural key plus the
// resolved metadata fields with per-field provenance.
type Token struct {
	bun.BaseModel `bun:"table:token" comment:"Table with scanned token identities and resolved metadata."`

	ID        uint64 `bun:"id,pk,autoincrement" comment:"Unique internal identity"`
	Address   string `bun:"address,unique:token_key,notnull" comment:"Lower-cased token contract address"`
	ChainID   string `bun:"chain_id,unique:token_key,notnull" comment:"Canonical chain id"`
	CreatedAt int64  `comment:"Time when row was created"`
	UpdatedAt int64  `comment:"Time when row was last updated"`
	UpdateID  int64  `bun:",notnull" json:"-" comment:"Update counter, increments on each token update"`

	Name        *string          `comment:"Token name"`
	Symbol      *string          `comment:"Token symbol"`
	Description *string          `comment:"Resolved or synthesized description"`
	LogoURL     *string          `comment:"Logo URL"`
	Website     *string          `comment:"Project website"`
	Twitter     *string          `comment:"Twitter handle"`
	GithubURL   *string          `comment:"Repository URL"`
	DiscordURL  *string          `comment:"Discord invite URL"`
	TelegramURL *string          `comment:"Telegram chat URL"`
	Price       *decimal.Decimal `bun:",type:numeric" comment:"Price in USD"`
	Change24h   *decimal.Decimal `bun:",type:numeric" comment:"24h price change percentage"`
	MarketCap   *decimal.Decimal `bun:",type:numeric" comment:"Market cap in USD"`
	Volume24h   *decimal.Decimal `bun:",type:numeric" comment:"24h trading volume in USD"`
	TotalSupply *decimal.Decimal `bun:",type:numeric" comment:"Total supply"`

	Provenance   map[string]string `bun:",type:jsonb" comment:"Provider that supplied each resolved field"`
	OverallScore int               `bun:",notnull" comment:"Overall score of the latest scan"`
}

// TableName -
func (Token) TableName() string {
	return "token"
}

var _ bun.BeforeAppendModelHook = (*Token)(nil)

// BeforeAppendModel -
func (t *Token) BeforeAppendModel(_ context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		t.UpdatedAt = time.Now().Unix()
		if t.CreatedAt == 0 {
			t.CreatedAt = t.UpdatedAt
		}
		t.UpdateID = TokenUpdateID.Increment()
	case *bun.UpdateQuery:
		t.UpdatedAt = time.Now().Unix()
		t.UpdateID = TokenUpdateID.Increment()
	}
	return nil
}
