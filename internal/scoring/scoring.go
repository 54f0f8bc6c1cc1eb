package scoring

import (
	"github.com/chainscope/tokenscan/internal/token"
	"github.com/shopspring/decimal"
)

// Category -
type Category string

// categories
const (
	CategorySecurity    Category = "security"
	CategoryTokenomics  Category = "tokenomics"
	CategoryLiquidity   Category = "liquidity"
	CategoryCommunity   Category = "community"
	CategoryDevelopment Category = "development"
)

// Categories -
var Categories = []Category{
	CategorySecurity,
	CategoryTokenomics,
	CategoryLiquidity,
	CategoryCommunity,
	CategoryDevelopment,
}

// Scores - per-category scores. Nil means no source feeding the
// category produced any data, which is different from a low score.
type Scores struct {
	Security    *int
	Tokenomics  *int
	Liquidity   *int
	Community   *int
	Development *int
}

// Get -
func (s Scores) Get(category Category) *int {
	switch category {
	case CategorySecurity:
		return s.Security
	case CategoryTokenomics:
		return s.Tokenomics
	case CategoryLiquidity:
		return s.Liquidity
	case CategoryCommunity:
		return s.Community
	case CategoryDevelopment:
		return s.Development
	}
	return nil
}

// Compute - all five category scores from one merged record. Pure:
// no I/O, no clock, identical input gives identical output.
func Compute(merged *token.Merged) Scores {
	var scores Scores

	if score, ok := Security(merged); ok {
		scores.Security = &score
	}
	if score, ok := Tokenomics(merged); ok {
		scores.Tokenomics = &score
	}
	if score, ok := Liquidity(merged); ok {
		scores.Liquidity = &score
	}
	if score, ok := Community(merged); ok {
		scores.Community = &score
	}
	if score, ok := Development(merged); ok {
		scores.Development = &score
	}

	return scores
}

// Overall - arithmetic mean of the non-null category scores, rounded
// half up. All five null gives 0 by policy.
func Overall(scores Scores) int {
	var (
		sum   int
		count int
	)
	for _, category := range Categories {
		if score := scores.Get(category); score != nil {
			sum += *score
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return (sum + count/2) / count
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Security - base 50, bonuses for renounced ownership, verified and
// audited code, the inability to mint; heavy penalties for honeypot
// behavior and a freeze authority.
func Security(merged *token.Merged) (int, bool) {
	s := merged.Security
	if s.OwnershipRenounced == nil && s.CanMint == nil && s.Honeypot == nil &&
		s.FreezeAuthority == nil && s.Verified == nil && s.Audited == nil {
		return 0, false
	}

	score := 50
	if s.OwnershipRenounced != nil && *s.OwnershipRenounced {
		score += 15
	}
	if s.Verified != nil && *s.Verified {
		score += 10
	}
	if s.Audited != nil && *s.Audited {
		score += 10
	}
	if s.CanMint != nil && !*s.CanMint {
		score += 10
	}
	if s.Honeypot != nil && *s.Honeypot {
		score -= 50
	}
	if s.FreezeAuthority != nil && *s.FreezeAuthority {
		score -= 20
	}

	return clamp(score), true
}

var (
	million         = decimal.NewFromInt(1_000_000)
	tenMillion      = decimal.NewFromInt(10_000_000)
	hundredMillion  = decimal.NewFromInt(100_000_000)
	hundredThousand = decimal.NewFromInt(100_000)
	tenThousand     = decimal.NewFromInt(10_000)
	billion         = decimal.NewFromInt(1_000_000_000)
	trillion        = decimal.NewFromInt(1_000_000_000_000)
)

// Liquidity - base 30 plus tiered bonuses by 24h volume and market
// cap buckets.
func Liquidity(merged *token.Merged) (int, bool) {
	if merged.Volume24h == nil && merged.MarketCap == nil {
		return 0, false
	}

	score := 30
	if v := merged.Volume24h; v != nil {
		switch {
		case v.GreaterThan(million):
			score += 25
		case v.GreaterThan(hundredThousand):
			score += 15
		case v.GreaterThan(tenThousand):
			score += 8
		}
	}
	if mc := merged.MarketCap; mc != nil {
		switch {
		case mc.GreaterThan(hundredMillion):
			score += 20
		case mc.GreaterThan(tenMillion):
			score += 12
		case mc.GreaterThan(million):
			score += 6
		}
	}

	return clamp(score), true
}

// Tokenomics - base 40 with supply-shape, contract, spam, stability,
// concentration and pool-depth adjustments. Adjustments sourced from
// the enhanced providers are scaled by how many of those providers
// actually responded.
func Tokenomics(merged *token.Merged) (int, bool) {
	hasCore := merged.TotalSupply != nil || merged.Change24h != nil || merged.Security.Verified != nil
	hasEnhanced := merged.Distribution.ConcentrationBucket != nil ||
		merged.Distribution.Spam != nil ||
		merged.Liquidity.TotalLiquidityUSD != nil
	if !hasCore && !hasEnhanced {
		return 0, false
	}

	score := 40
	if supply := merged.TotalSupply; supply != nil {
		switch {
		case supply.GreaterThan(trillion):
			score -= 10
		case supply.LessThanOrEqual(billion) && supply.IsPositive():
			score += 10
		}
	}
	if merged.Security.Verified != nil && *merged.Security.Verified {
		score += 10
	}
	if change := merged.Change24h; change != nil {
		switch abs := change.Abs(); {
		case abs.LessThan(decimal.NewFromInt(5)):
			score += 10
		case abs.GreaterThan(decimal.NewFromInt(30)):
			score -= 10
		}
	}

	var (
		enhanced    int
		enhancedAdj int
	)
	if merged.Distribution.Spam != nil {
		enhanced++
		if *merged.Distribution.Spam {
			enhancedAdj -= 25
		}
	}
	if bucket := merged.Distribution.ConcentrationBucket; bucket != nil {
		enhanced++
		switch *bucket {
		case token.ConcentrationLow:
			enhancedAdj += 15
		case token.ConcentrationMedium:
			enhancedAdj += 5
		case token.ConcentrationHigh:
			enhancedAdj -= 10
		}
	}
	if liquidity := merged.Liquidity.TotalLiquidityUSD; liquidity != nil {
		enhanced++
		switch {
		case liquidity.GreaterThan(hundredThousand):
			enhancedAdj += 10
		case liquidity.GreaterThan(tenThousand):
			enhancedAdj += 5
		}
	}
	if enhanced > 0 {
		score += enhancedAdj * enhanced / 3
	}

	return clamp(score), true
}

// Community - base 20 with tiered per-platform bonuses and a bonus
// scaling with how many platforms are present at all.
func Community(merged *token.Merged) (int, bool) {
	c := merged.Community
	if c.TwitterFollowers == nil && c.DiscordMembers == nil && c.TelegramMembers == nil {
		return 0, false
	}

	score := 20
	platforms := 0

	if followers := c.TwitterFollowers; followers != nil {
		platforms++
		switch {
		case *followers > 100_000:
			score += 20
		case *followers > 10_000:
			score += 12
		case *followers > 1_000:
			score += 5
		}
	}
	if members := c.DiscordMembers; members != nil {
		platforms++
		switch {
		case *members > 50_000:
			score += 15
		case *members > 5_000:
			score += 10
		case *members > 500:
			score += 4
		}
	}
	if members := c.TelegramMembers; members != nil {
		platforms++
		switch {
		case *members > 50_000:
			score += 15
		case *members > 5_000:
			score += 10
		case *members > 500:
			score += 4
		}
	}

	switch platforms {
	case 1:
		score += 3
	case 2:
		score += 8
	case 3:
		score += 15
	}

	return clamp(score), true
}

// Development - derived entirely from repository activity. A token
// with a known repository that turned out not to exist scores 0; a
// token that never referenced a repository has no development signal
// at all.
func Development(merged *token.Merged) (int, bool) {
	if merged.Development == nil {
		if merged.GithubURL == nil {
			return 0, false
		}
		return 0, true
	}

	d := merged.Development
	score := 0

	if d.Stars != nil {
		switch {
		case *d.Stars > 10_000:
			score += 30
		case *d.Stars > 1_000:
			score += 20
		case *d.Stars > 100:
			score += 10
		}
	}
	if d.Forks != nil {
		switch {
		case *d.Forks > 1_000:
			score += 15
		case *d.Forks > 100:
			score += 8
		}
	}
	if d.Contributors != nil {
		switch {
		case *d.Contributors > 50:
			score += 20
		case *d.Contributors > 10:
			score += 12
		case *d.Contributors > 3:
			score += 5
		}
	}
	if d.Commits30d != nil {
		switch {
		case *d.Commits30d > 30:
			score += 25
		case *d.Commits30d > 10:
			score += 15
		case *d.Commits30d > 0:
			score += 8
		}
	}

	return clamp(score), true
}
