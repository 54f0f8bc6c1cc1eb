package providers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chainscope/tokenscan/internal/chains"
	"github.com/chainscope/tokenscan/internal/token"
	"github.com/shopspring/decimal"
)

// GeckoTerminal - liquidity-pool provider
type GeckoTerminal struct {
	client *Client
	cfg    DataSource
}

// NewGeckoTerminal -
func NewGeckoTerminal(client *Client, cfg DataSource) *GeckoTerminal {
	return &GeckoTerminal{client: client, cfg: cfg}
}

// Name -
func (g *GeckoTerminal) Name() string { return "geckoterminal" }

// Fields -
func (g *GeckoTerminal) Fields() []token.Field { return nil }

type geckoTerminalResponse struct {
	Data []struct {
		Attributes struct {
			Name         string           `json:"name"`
			ReserveInUsd *decimal.Decimal `json:"reserve_in_usd,string"`
			LockInfo     string           `json:"lock_info"`
		} `json:"attributes"`
		Relationships struct {
			Dex struct {
				Data struct {
					ID string `json:"id"`
				} `json:"data"`
			} `json:"dex"`
		} `json:"relationships"`
	} `json:"data"`
}

// Fetch -
func (g *GeckoTerminal) Fetch(ctx context.Context, address string, chain chains.Descriptor) Outcome {
	started := time.Now()

	network, ok := chain.ProviderID(chains.VocabularyDexScreener)
	if !ok {
		return noData(g.Name(), started)
	}

	var response geckoTerminalResponse
	link := fmt.Sprintf("%s/api/v2/networks/%s/tokens/%s/pools", g.cfg.URL, network, address)
	if err := g.client.GetJSON(ctx, link, nil, &response); err != nil {
		if err == ErrNotFound {
			return noData(g.Name(), started)
		}
		return failure(g.Name(), err, started)
	}

	if len(response.Data) == 0 {
		return noData(g.Name(), started)
	}

	var (
		total    decimal.Decimal
		pairs    = make([]token.Pair, 0, len(response.Data))
		lockDays *int64
	)
	for i := range response.Data {
		attributes := response.Data[i].Attributes
		reserve := decimal.Zero
		if attributes.ReserveInUsd != nil {
			reserve = *attributes.ReserveInUsd
		}
		total = total.Add(reserve)
		pairs = append(pairs, token.Pair{
			Dex:          response.Data[i].Relationships.Dex.Data.ID,
			Name:         attributes.Name,
			LiquidityUSD: reserve,
		})
		if lockDays == nil {
			lockDays = ParseLockDuration(attributes.LockInfo)
		}
	}

	liquidity := token.Liquidity{
		TotalLiquidityUSD: &total,
		MajorPairs:        pairs,
		LockDays:          lockDays,
	}

	return success(g.Name(), &token.Partial{Liquidity: &liquidity}, started)
}

var lockDurationRe = regexp.MustCompile(`(?i)(\d+)\s*(day|month|year)s?`)

// ParseLockDuration - best-effort extraction of a lock duration from
// free text like "locked for 6 months". Unparseable text yields nil,
// never an error.
func ParseLockDuration(text string) *int64 {
	match := lockDurationRe.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	n, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return nil
	}

	switch strings.ToLower(match[2]) {
	case "month":
		n *= 30
	case "year":
		n *= 365
	}
	return &n
}
