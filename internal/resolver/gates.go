package resolver

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/chainscope/tokenscan/internal/providers"
	"github.com/chainscope/tokenscan/internal/token"
)

// Quality gates. A candidate value that fails its field's gate is
// discarded outright; the fallback chain moves on to the next
// provider.

const minDescriptionLength = 40

var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^no description`),
	regexp.MustCompile(`(?i)^description (is )?(not )?(yet )?(available|provided)`),
	regexp.MustCompile(`(?i)^see (the )?(official )?(website|whitepaper)`),
	regexp.MustCompile(`(?i)^\w+ is a (crypto ?currency|token) (on|launched on) [\w ]+\.?$`),
	regexp.MustCompile(`(?i)^coming soon`),
	regexp.MustCompile(`(?i)lorem ipsum`),
}

var taglineWords = []string{
	"to the moon", "100x", "1000x", "next big thing", "revolutionary",
	"best token", "don't miss", "guaranteed",
}

// GoodDescription - rejects short, templated and tagline-style text
func GoodDescription(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minDescriptionLength {
		return false
	}

	for _, pattern := range boilerplatePatterns {
		if pattern.MatchString(trimmed) {
			return false
		}
	}

	lower := strings.ToLower(trimmed)
	for _, word := range taglineWords {
		if strings.Contains(lower, word) {
			return false
		}
	}

	// a single short exclamatory line is marketing, not a description
	if !strings.ContainsAny(trimmed, "\n") && len(trimmed) < 120 && strings.HasSuffix(trimmed, "!") {
		return false
	}

	return true
}

var (
	discordURLRe  = regexp.MustCompile(`^https://(www\.)?(discord\.gg|discord\.com/invite)/[A-Za-z0-9-]{2,}$`)
	telegramURLRe = regexp.MustCompile(`^https://(www\.)?t\.me/[A-Za-z0-9_]{5,32}$`)
	twitterRe     = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)
)

// GoodDiscordURL -
func GoodDiscordURL(link string) bool {
	return discordURLRe.MatchString(strings.TrimSpace(link))
}

// GoodTelegramURL -
func GoodTelegramURL(link string) bool {
	return telegramURLRe.MatchString(strings.TrimSpace(link))
}

// GoodTwitterHandle -
func GoodTwitterHandle(handle string) bool {
	return twitterRe.MatchString(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// GoodWebURL - http(s), public host
func GoodWebURL(link string) bool {
	parsed, err := url.ParseRequestURI(strings.TrimSpace(link))
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	if parsed.Host == "" {
		return false
	}
	return providers.ValidateURL(parsed) == nil
}

var githubRepoRe = regexp.MustCompile(`^https://(www\.)?github\.com/[\w.-]+/[\w.-]+/?$`)

// GoodGithubURL -
func GoodGithubURL(link string) bool {
	return githubRepoRe.MatchString(strings.TrimSpace(link))
}

// SynthesizeDescription - deterministic fallback text assembled from
// already-resolved structured fields when every provider's description
// failed the gate.
func SynthesizeDescription(merged *token.Merged) string {
	var b strings.Builder

	switch {
	case merged.Symbol != nil && merged.Name != nil:
		fmt.Fprintf(&b, "%s (%s) is a token on chain %s.", *merged.Name, *merged.Symbol, merged.ChainID)
	case merged.Name != nil:
		fmt.Fprintf(&b, "%s is a token on chain %s.", *merged.Name, merged.ChainID)
	default:
		fmt.Fprintf(&b, "Token %s on chain %s.", merged.Address, merged.ChainID)
	}

	if merged.Price != nil {
		fmt.Fprintf(&b, " It currently trades at $%s.", merged.Price.String())
	}
	if merged.TotalSupply != nil {
		fmt.Fprintf(&b, " Total supply is %s.", merged.TotalSupply.String())
	}
	if merged.Security.OwnershipRenounced != nil && *merged.Security.OwnershipRenounced {
		b.WriteString(" Contract ownership is renounced.")
	}
	if merged.Security.Honeypot != nil {
		if *merged.Security.Honeypot {
			b.WriteString(" Honeypot behavior has been flagged.")
		} else {
			b.WriteString(" No honeypot behavior was detected.")
		}
	}

	return b.String()
}
