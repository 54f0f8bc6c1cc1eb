package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chainscope/tokenscan/internal/chains"
	"github.com/chainscope/tokenscan/internal/token"
	"github.com/shopspring/decimal"
)

// CoinGecko - metadata provider: names, description, links, market
// data and the allow-listed CEX count, all from a single contract
// lookup.
type CoinGecko struct {
	client *Client
	cfg    DataSource
}

// NewCoinGecko -
func NewCoinGecko(client *Client, cfg DataSource) *CoinGecko {
	return &CoinGecko{client: client, cfg: cfg}
}

// Name -
func (c *CoinGecko) Name() string { return "coingecko" }

// Fields -
func (c *CoinGecko) Fields() []token.Field {
	return []token.Field{
		token.FieldName, token.FieldSymbol, token.FieldDescription,
		token.FieldLogo, token.FieldWebsite, token.FieldTwitter,
		token.FieldGithub, token.FieldDiscord, token.FieldTelegram,
		token.FieldPrice, token.FieldChange24h, token.FieldMarketCap,
		token.FieldVolume24h, token.FieldTotalSupply,
	}
}

// exchanges counted for the listing bonus
var allowedExchanges = map[string]struct{}{
	"binance":    {},
	"gdax":       {},
	"kraken":     {},
	"okex":       {},
	"bybit_spot": {},
	"kucoin":     {},
	"gate":       {},
	"huobi":      {},
	"bitfinex":   {},
	"upbit":      {},
	"crypto_com": {},
	"bitstamp":   {},
}

type coinGeckoResponse struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description struct {
		En string `json:"en"`
	} `json:"description"`
	Image struct {
		Large string `json:"large"`
	} `json:"image"`
	Links struct {
		Homepage                  []string `json:"homepage"`
		TwitterScreenName         string   `json:"twitter_screen_name"`
		TelegramChannelIdentifier string   `json:"telegram_channel_identifier"`
		ChatURL                   []string `json:"chat_url"`
		ReposURL                  struct {
			Github []string `json:"github"`
		} `json:"repos_url"`
	} `json:"links"`
	MarketData *struct {
		CurrentPrice             map[string]decimal.Decimal `json:"current_price"`
		MarketCap                map[string]decimal.Decimal `json:"market_cap"`
		TotalVolume              map[string]decimal.Decimal `json:"total_volume"`
		PriceChangePercentage24h *decimal.Decimal           `json:"price_change_percentage_24h"`
		TotalSupply              *decimal.Decimal           `json:"total_supply"`
	} `json:"market_data"`
	Tickers []struct {
		Market struct {
			Identifier string `json:"identifier"`
		} `json:"market"`
	} `json:"tickers"`
}

// Fetch -
func (c *CoinGecko) Fetch(ctx context.Context, address string, chain chains.Descriptor) Outcome {
	started := time.Now()

	platform, ok := chain.ProviderID(chains.VocabularyCoinGecko)
	if !ok {
		return noData(c.Name(), started)
	}

	var response coinGeckoResponse
	link := fmt.Sprintf("%s/api/v3/coins/%s/contract/%s", c.cfg.URL, platform, address)
	headers := map[string]string{}
	if c.cfg.Key != "" {
		headers["x-cg-pro-api-key"] = c.cfg.Key
	}
	if err := c.client.GetJSON(ctx, link, headers, &response); err != nil {
		if err == ErrNotFound {
			return noData(c.Name(), started)
		}
		return failure(c.Name(), err, started)
	}

	if response.Name == "" && response.Symbol == "" {
		return noData(c.Name(), started)
	}

	partial := &token.Partial{
		Name:   nonEmpty(response.Name),
		Symbol: nonEmpty(strings.ToUpper(response.Symbol)),
	}
	if description := strings.TrimSpace(response.Description.En); description != "" {
		partial.Description = &description
	}
	partial.LogoURL = nonEmpty(response.Image.Large)
	for _, homepage := range response.Links.Homepage {
		if homepage != "" {
			partial.Website = &homepage
			break
		}
	}
	partial.Twitter = nonEmpty(response.Links.TwitterScreenName)
	if id := response.Links.TelegramChannelIdentifier; id != "" {
		telegram := "https://t.me/" + id
		partial.TelegramURL = &telegram
	}
	for _, chat := range response.Links.ChatURL {
		if strings.Contains(chat, "discord") {
			partial.DiscordURL = &chat
			break
		}
	}
	for _, repo := range response.Links.ReposURL.Github {
		if repo != "" {
			partial.GithubURL = &repo
			break
		}
	}

	if md := response.MarketData; md != nil {
		if price, ok := md.CurrentPrice["usd"]; ok {
			partial.Price = &price
		}
		if marketCap, ok := md.MarketCap["usd"]; ok {
			partial.MarketCap = &marketCap
		}
		if volume, ok := md.TotalVolume["usd"]; ok {
			partial.Volume24h = &volume
		}
		partial.Change24h = md.PriceChangePercentage24h
		partial.TotalSupply = md.TotalSupply
	}

	exchanges := make(map[string]struct{})
	for i := range response.Tickers {
		id := response.Tickers[i].Market.Identifier
		if _, ok := allowedExchanges[id]; ok {
			exchanges[id] = struct{}{}
		}
	}
	cexCount := int64(len(exchanges))
	partial.CEXListings = &cexCount

	return success(c.Name(), partial, started)
}

func nonEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
