package token

import (
	"time"

	"github.com/shopspring/decimal"
)

// Security - flags reported by the security-risk providers. Nil means
// the provider did not report the flag, which is distinct from an
// explicit false.
type Security struct {
	OwnershipRenounced *bool
	CanMint            *bool
	Honeypot           *bool
	FreezeAuthority    *bool
	Verified           *bool
	Audited            *bool
}

// Distribution - holder distribution metrics
type Distribution struct {
	Gini                *decimal.Decimal
	ConcentrationBucket *string
	TotalHolders        *int64
	Spam                *bool
}

// concentration buckets
const (
	ConcentrationLow    = "low"
	ConcentrationMedium = "medium"
	ConcentrationHigh   = "high"
)

// Pair - a single liquidity pool for the token
type Pair struct {
	Dex          string
	Name         string
	LiquidityUSD decimal.Decimal
}

// Liquidity - pool depth metrics
type Liquidity struct {
	TotalLiquidityUSD *decimal.Decimal
	MajorPairs        []Pair
	LockDays          *int64
}

// Development - repository activity metrics
type Development struct {
	Stars        *int64
	Forks        *int64
	Contributors *int64
	Commits30d   *int64
	LastPush     *time.Time
}

// Community - follower and member counts gathered in the social phase
type Community struct {
	TwitterFollowers *int64
	DiscordMembers   *int64
	TelegramMembers  *int64
}

// Partial - one provider's view of a token. Every field is optional:
// nil marks data the provider did not supply.
type Partial struct {
	Name        *string
	Symbol      *string
	Description *string
	LogoURL     *string
	Website     *string
	Twitter     *string
	GithubURL   *string
	DiscordURL  *string
	TelegramURL *string

	Price       *decimal.Decimal
	Change24h   *decimal.Decimal
	MarketCap   *decimal.Decimal
	Volume24h   *decimal.Decimal
	TotalSupply *decimal.Decimal

	Security     *Security
	Distribution *Distribution
	Liquidity    *Liquidity
	TVLUSD       *decimal.Decimal
	CEXListings  *int64
}

// Merged - the single record a scan produces after fallback
// resolution. Provenance maps every resolved logical field to the
// provider that supplied it.
type Merged struct {
	Address string
	ChainID string

	Name        *string
	Symbol      *string
	Description *string
	LogoURL     *string
	Website     *string
	Twitter     *string
	GithubURL   *string
	DiscordURL  *string
	TelegramURL *string

	Price       *decimal.Decimal
	Change24h   *decimal.Decimal
	MarketCap   *decimal.Decimal
	Volume24h   *decimal.Decimal
	TotalSupply *decimal.Decimal

	Security     Security
	Distribution Distribution
	Liquidity    Liquidity
	TVLUSD       *decimal.Decimal
	CEXListings  *int64
	Community    Community
	Development  *Development

	Provenance map[Field]string

	// providers that answered with data, by name
	Responded map[string]bool
}

// NewMerged -
func NewMerged(address, chainID string) *Merged {
	return &Merged{
		Address:    address,
		ChainID:    chainID,
		Provenance: make(map[Field]string),
		Responded:  make(map[string]bool),
	}
}
