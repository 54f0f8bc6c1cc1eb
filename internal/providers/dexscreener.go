package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/chainscope/tokenscan/internal/chains"
	"github.com/chainscope/tokenscan/internal/token"
	"github.com/shopspring/decimal"
)

// DexScreener - price provider backed by the most liquid pair the
// aggregator knows for the token.
type DexScreener struct {
	client *Client
	cfg    DataSource
}

// NewDexScreener -
func NewDexScreener(client *Client, cfg DataSource) *DexScreener {
	return &DexScreener{client: client, cfg: cfg}
}

// Name -
func (d *DexScreener) Name() string { return "dexscreener" }

// Fields -
func (d *DexScreener) Fields() []token.Field {
	return []token.Field{
		token.FieldName, token.FieldSymbol, token.FieldPrice,
		token.FieldChange24h, token.FieldMarketCap, token.FieldVolume24h,
	}
}

type dexScreenerResponse struct {
	Pairs []dexScreenerPair `json:"pairs"`
}

type dexScreenerPair struct {
	ChainID   string `json:"chainId"`
	BaseToken struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"baseToken"`
	PriceUsd    *decimal.Decimal `json:"priceUsd,string"`
	PriceChange struct {
		H24 *decimal.Decimal `json:"h24"`
	} `json:"priceChange"`
	Volume struct {
		H24 *decimal.Decimal `json:"h24"`
	} `json:"volume"`
	Liquidity struct {
		Usd decimal.Decimal `json:"usd"`
	} `json:"liquidity"`
	MarketCap *decimal.Decimal `json:"marketCap"`
}

// Fetch -
func (d *DexScreener) Fetch(ctx context.Context, address string, chain chains.Descriptor) Outcome {
	started := time.Now()

	chainID, ok := chain.ProviderID(chains.VocabularyDexScreener)
	if !ok {
		return noData(d.Name(), started)
	}

	var response dexScreenerResponse
	link := fmt.Sprintf("%s/latest/dex/tokens/%s", d.cfg.URL, address)
	if err := d.client.GetJSON(ctx, link, nil, &response); err != nil {
		if err == ErrNotFound {
			return noData(d.Name(), started)
		}
		return failure(d.Name(), err, started)
	}

	var best *dexScreenerPair
	for i := range response.Pairs {
		pair := &response.Pairs[i]
		if pair.ChainID != chainID {
			continue
		}
		if best == nil || pair.Liquidity.Usd.GreaterThan(best.Liquidity.Usd) {
			best = pair
		}
	}
	if best == nil {
		return noData(d.Name(), started)
	}

	partial := &token.Partial{
		Name:      nonEmpty(best.BaseToken.Name),
		Symbol:    nonEmpty(best.BaseToken.Symbol),
		Price:     best.PriceUsd,
		Change24h: best.PriceChange.H24,
		Volume24h: best.Volume.H24,
		MarketCap: best.MarketCap,
	}

	return success(d.Name(), partial, started)
}
