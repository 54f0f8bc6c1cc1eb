package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/chainscope/tokenscan/internal/chains"
	"github.com/chainscope/tokenscan/internal/token"
	"github.com/karlseguin/ccache/v2"
	"github.com/shopspring/decimal"
)

// DefiLlama - protocol TVL provider. Token addresses map to protocol
// slugs through a curated table; tokens without a protocol behind them
// are NoData by definition.
type DefiLlama struct {
	client *Client
	cfg    DataSource
	cache  *ccache.Cache
}

// NewDefiLlama -
func NewDefiLlama(client *Client, cfg DataSource) *DefiLlama {
	return &DefiLlama{
		client: client,
		cfg:    cfg,
		cache:  ccache.New(ccache.Configure().MaxSize(1000)),
	}
}

// Name -
func (d *DefiLlama) Name() string { return "defillama" }

// Fields -
func (d *DefiLlama) Fields() []token.Field { return nil }

// governance token address -> protocol slug
var protocolSlugs = map[string]string{
	"1:0x808507121b80c02388fad14726482e061b8da827":  "pendle",
	"1:0x1f9840a85d5af5bf1d1762f925bdaddc4201f984":  "uniswap",
	"1:0x7fc66500c84a76ad7e9c93437bfc5ac33e2ddae9":  "aave",
	"1:0x5a98fcbea516cf06857215779fd812ca3bef1b32":  "lido",
	"1:0xc00e94cb662c3520282e6f5717214004a7f26888":  "compound-finance",
	"1:0xd533a949740bb3306d119cc777fa900ba034cd52":  "curve-finance",
	"56:0x0e09fabb73bd3ade0a17ecc321fd13a19e81ce82": "pancakeswap",
	"42161:0x912ce59144191c1204e64559fe8253a0e49e6548": "gmx",
}

// Fetch -
func (d *DefiLlama) Fetch(ctx context.Context, address string, chain chains.Descriptor) Outcome {
	started := time.Now()

	if _, ok := chain.ProviderID(chains.VocabularyDefiLlama); !ok {
		return noData(d.Name(), started)
	}

	slug, ok := protocolSlugs[chain.ID+":"+address]
	if !ok {
		return noData(d.Name(), started)
	}

	item, err := d.cache.Fetch("tvl:"+slug, time.Hour, func() (interface{}, error) {
		var tvl decimal.Decimal
		link := fmt.Sprintf("%s/tvl/%s", d.cfg.URL, slug)
		if err := d.client.GetJSON(ctx, link, nil, &tvl); err != nil {
			return nil, err
		}
		return tvl, nil
	})
	if err != nil {
		if err == ErrNotFound {
			return noData(d.Name(), started)
		}
		return failure(d.Name(), err, started)
	}

	tvl := item.Value().(decimal.Decimal)
	return success(d.Name(), &token.Partial{TVLUSD: &tvl}, started)
}
