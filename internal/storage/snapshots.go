package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Snapshot - category snapshot model
type Snapshot interface {
	Key() (address, chainID string)
}

// ISnapshots - contract of one category snapshot table; exactly one
// live row per (address, chain) key at all times.
type ISnapshots[M Snapshot] interface {
	GetByKey(ctx context.Context, address, chainID string) (M, error)
	Upsert(ctx context.Context, snapshot M) error
	Delete(ctx context.Context, address, chainID string) (int64, error)
}

// SecuritySnapshot -
type SecuritySnapshot struct {
	bun.BaseModel `bun:"table:security_snapshot" comment:"Current security category snapshot per token."`

	Address string `bun:"address,pk" comment:"Lower-cased token contract address"`
	ChainID string `bun:"chain_id,pk" comment:"Canonical chain id"`
	Score   int    `bun:",notnull" comment:"Security score in [0,100]"`

	OwnershipRenounced *bool `comment:"Contract ownership renounced"`
	CanMint            *bool `comment:"Supply can still be minted"`
	Honeypot           *bool `comment:"Honeypot behavior flagged"`
	FreezeAuthority    *bool `comment:"Transfers can be frozen"`
	Verified           *bool `comment:"Source code verified"`
	Audited            *bool `comment:"Audit or trust list entry known"`
}

// TableName -
func (SecuritySnapshot) TableName() string { return "security_snapshot" }

// Key -
func (s *SecuritySnapshot) Key() (string, string) { return s.Address, s.ChainID }

// TokenomicsSnapshot -
type TokenomicsSnapshot struct {
	bun.BaseModel `bun:"table:tokenomics_snapshot" comment:"Current tokenomics category snapshot per token."`

	Address string `bun:"address,pk"`
	ChainID string `bun:"chain_id,pk"`
	Score   int    `bun:",notnull" comment:"Tokenomics score in [0,100]"`

	TotalSupply         *decimal.Decimal `bun:",type:numeric" comment:"Total supply"`
	ConcentrationBucket *string          `comment:"Holder concentration bucket"`
	Gini                *decimal.Decimal `bun:",type:numeric" comment:"Gini coefficient over the top holders"`
	TotalHolders        *int64           `comment:"Total holder count"`
	Spam                *bool            `comment:"Spam flag reported by the holder provider"`
	TVLUSD              *decimal.Decimal `bun:"tvl_usd,type:numeric" comment:"Protocol TVL in USD, when the token maps to a protocol"`
}

// TableName -
func (TokenomicsSnapshot) TableName() string { return "tokenomics_snapshot" }

// Key -
func (s *TokenomicsSnapshot) Key() (string, string) { return s.Address, s.ChainID }

// LiquiditySnapshot -
type LiquiditySnapshot struct {
	bun.BaseModel `bun:"table:liquidity_snapshot" comment:"Current liquidity category snapshot per token."`

	Address string `bun:"address,pk"`
	ChainID string `bun:"chain_id,pk"`
	Score   int    `bun:",notnull" comment:"Liquidity score in [0,100]"`

	Volume24h         *decimal.Decimal `bun:",type:numeric" comment:"24h trading volume in USD"`
	MarketCap         *decimal.Decimal `bun:",type:numeric" comment:"Market cap in USD"`
	TotalLiquidityUSD *decimal.Decimal `bun:",type:numeric" comment:"Pooled liquidity in USD"`
	MajorPairs        []map[string]any `bun:",type:jsonb" comment:"Largest pools for the token"`
	LockDays          *int64           `comment:"Best-effort parsed liquidity lock duration in days"`
	CEXListings       *int64           `bun:"cex_listings" comment:"Count of allow-listed CEX listings"`
}

// TableName -
func (LiquiditySnapshot) TableName() string { return "liquidity_snapshot" }

// Key -
func (s *LiquiditySnapshot) Key() (string, string) { return s.Address, s.ChainID }

// CommunitySnapshot -
type CommunitySnapshot struct {
	bun.BaseModel `bun:"table:community_snapshot" comment:"Current community category snapshot per token."`

	Address string `bun:"address,pk"`
	ChainID string `bun:"chain_id,pk"`
	Score   int    `bun:",notnull" comment:"Community score in [0,100]"`

	TwitterFollowers *int64 `comment:"Twitter follower count"`
	DiscordMembers   *int64 `comment:"Discord member count"`
	TelegramMembers  *int64 `comment:"Telegram member count"`
}

// TableName -
func (CommunitySnapshot) TableName() string { return "community_snapshot" }

// Key -
func (s *CommunitySnapshot) Key() (string, string) { return s.Address, s.ChainID }

// DevelopmentSnapshot -
type DevelopmentSnapshot struct {
	bun.BaseModel `bun:"table:development_snapshot" comment:"Current development category snapshot per token."`

	Address string `bun:"address,pk"`
	ChainID string `bun:"chain_id,pk"`
	Score   int    `bun:",notnull" comment:"Development score in [0,100]"`

	RepoURL      *string    `comment:"Repository URL"`
	Stars        *int64     `comment:"Repository stars"`
	Forks        *int64     `comment:"Repository forks"`
	Contributors *int64     `comment:"Contributor count"`
	Commits30d   *int64     `comment:"Commits in the last 30 days"`
	LastPush     *time.Time `comment:"Time of the last push"`
}

// TableName -
func (DevelopmentSnapshot) TableName() string { return "development_snapshot" }

// Key -
func (s *DevelopmentSnapshot) Key() (string, string) { return s.Address, s.ChainID }
