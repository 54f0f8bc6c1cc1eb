package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chainscope/tokenscan/internal/chains"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const uniAddress = "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984"

func mustChain(t *testing.T, id string) chains.Descriptor {
	t.Helper()
	chain, err := chains.Resolve(id)
	require.NoError(t, err)
	return chain
}

func serve(t *testing.T, handler http.HandlerFunc) (*Client, DataSource) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(time.Second * 5), DataSource{URL: server.URL}
}

func TestGoPlusFetch(t *testing.T) {
	client, cfg := serve(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/token_security/1", r.URL.Path)
		require.Equal(t, uniAddress, r.URL.Query().Get("contract_addresses"))
		w.Write([]byte(`{
			"code": 1,
			"result": {
				"` + uniAddress + `": {
					"owner_address": "0x0000000000000000000000000000000000000000",
					"is_mintable": "0",
					"is_honeypot": "0",
					"transfer_pausable": "0",
					"is_open_source": "1",
					"trust_list": "1"
				}
			}
		}`))
	})

	outcome := NewGoPlus(client, cfg).Fetch(context.Background(), uniAddress, mustChain(t, "1"))

	require.Equal(t, StatusSuccess, outcome.Status)
	require.NotNil(t, outcome.Data)
	security := outcome.Data.Security
	require.NotNil(t, security)
	require.True(t, *security.OwnershipRenounced)
	require.False(t, *security.CanMint)
	require.False(t, *security.Honeypot)
	require.False(t, *security.FreezeAuthority)
	require.True(t, *security.Verified)
	require.True(t, *security.Audited)
}

func TestGoPlusNotFound(t *testing.T) {
	client, cfg := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	outcome := NewGoPlus(client, cfg).Fetch(context.Background(), uniAddress, mustChain(t, "1"))
	require.Equal(t, StatusNoData, outcome.Status)
	require.Nil(t, outcome.Err)
}

func TestGoPlusServerError(t *testing.T) {
	client, cfg := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	outcome := NewGoPlus(client, cfg).Fetch(context.Background(), uniAddress, mustChain(t, "1"))
	require.Equal(t, StatusError, outcome.Status)
	require.Error(t, outcome.Err)
}

func TestHoneypotFetch(t *testing.T) {
	client, cfg := serve(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/IsHoneypot", r.URL.Path)
		require.Equal(t, "eth", r.URL.Query().Get("chain"))
		w.Write([]byte(`{
			"honeypotResult": {"isHoneypot": true},
			"contractCode": {"openSource": false},
			"flags": ["mintable"]
		}`))
	})

	outcome := NewHoneypot(client, cfg).Fetch(context.Background(), uniAddress, mustChain(t, "1"))

	require.Equal(t, StatusSuccess, outcome.Status)
	security := outcome.Data.Security
	require.True(t, *security.Honeypot)
	require.False(t, *security.Verified)
	require.True(t, *security.CanMint)
	require.Nil(t, security.OwnershipRenounced)
}

func TestCoinGeckoFetch(t *testing.T) {
	client, cfg := serve(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/coins/ethereum/contract/"+uniAddress, r.URL.Path)
		w.Write([]byte(`{
			"name": "Uniswap",
			"symbol": "uni",
			"description": {"en": "Uniswap is a decentralized exchange protocol built on Ethereum."},
			"image": {"large": "https://example.com/uni.png"},
			"links": {
				"homepage": ["", "https://uniswap.org"],
				"twitter_screen_name": "Uniswap",
				"telegram_channel_identifier": "uniswap",
				"chat_url": ["https://discord.gg/uniswap"],
				"repos_url": {"github": ["https://github.com/Uniswap/v3-core"]}
			},
			"market_data": {
				"current_price": {"usd": 7.42},
				"market_cap": {"usd": 4500000000},
				"total_volume": {"usd": 120000000},
				"price_change_percentage_24h": -2.1,
				"total_supply": 1000000000
			},
			"tickers": [
				{"market": {"identifier": "binance"}},
				{"market": {"identifier": "binance"}},
				{"market": {"identifier": "kraken"}},
				{"market": {"identifier": "some_dex"}}
			]
		}`))
	})

	outcome := NewCoinGecko(client, cfg).Fetch(context.Background(), uniAddress, mustChain(t, "1"))

	require.Equal(t, StatusSuccess, outcome.Status)
	data := outcome.Data
	require.Equal(t, "Uniswap", *data.Name)
	require.Equal(t, "UNI", *data.Symbol)
	require.Equal(t, "https://uniswap.org", *data.Website)
	require.Equal(t, "Uniswap", *data.Twitter)
	require.Equal(t, "https://t.me/uniswap", *data.TelegramURL)
	require.Equal(t, "https://discord.gg/uniswap", *data.DiscordURL)
	require.Equal(t, "https://github.com/Uniswap/v3-core", *data.GithubURL)
	require.Equal(t, "7.42", data.Price.String())
	require.Equal(t, "-2.1", data.Change24h.String())
	// duplicate tickers and unknown venues are not counted
	require.EqualValues(t, 2, *data.CEXListings)
}

func TestDexScreenerPicksMostLiquidPair(t *testing.T) {
	client, cfg := serve(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/latest/dex/tokens/"+uniAddress, r.URL.Path)
		w.Write([]byte(`{
			"pairs": [
				{"chainId": "bsc", "baseToken": {"name": "Fake", "symbol": "FAKE"}, "priceUsd": "99", "liquidity": {"usd": 9000000}},
				{"chainId": "ethereum", "baseToken": {"name": "Uniswap", "symbol": "UNI"}, "priceUsd": "7.40", "liquidity": {"usd": 1000000}, "volume": {"h24": 2000000}},
				{"chainId": "ethereum", "baseToken": {"name": "Uniswap", "symbol": "UNI"}, "priceUsd": "7.42", "liquidity": {"usd": 5000000}, "volume": {"h24": 9000000}, "marketCap": 4500000000}
			]
		}`))
	})

	outcome := NewDexScreener(client, cfg).Fetch(context.Background(), uniAddress, mustChain(t, "1"))

	require.Equal(t, StatusSuccess, outcome.Status)
	require.Equal(t, "7.42", outcome.Data.Price.String())
	require.Equal(t, "9000000", outcome.Data.Volume24h.String())
	require.Equal(t, "4500000000", outcome.Data.MarketCap.String())
}

func TestDexScreenerNoPairOnChain(t *testing.T) {
	client, cfg := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"pairs": [{"chainId": "bsc", "baseToken": {"name": "X", "symbol": "X"}}]}`))
	})

	outcome := NewDexScreener(client, cfg).Fetch(context.Background(), uniAddress, mustChain(t, "1"))
	require.Equal(t, StatusNoData, outcome.Status)
}

func TestCovalentFetch(t *testing.T) {
	client, cfg := serve(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/eth-mainnet/tokens/"+uniAddress+"/token_holders/", r.URL.Path)
		w.Write([]byte(`{
			"data": {
				"is_spam": false,
				"items": [
					{"balance": "800"}, {"balance": "100"}, {"balance": "50"},
					{"balance": "25"}, {"balance": "15"}, {"balance": "10"}
				],
				"pagination": {"total_count": 370000}
			},
			"error": false
		}`))
	})

	outcome := NewCovalent(client, cfg).Fetch(context.Background(), uniAddress, mustChain(t, "1"))

	require.Equal(t, StatusSuccess, outcome.Status)
	distribution := outcome.Data.Distribution
	require.NotNil(t, distribution)
	// the six sampled holders are the top holders, so the top-10 share is 1
	require.Equal(t, "high", *distribution.ConcentrationBucket)
	require.EqualValues(t, 370000, *distribution.TotalHolders)
	require.False(t, *distribution.Spam)
	require.True(t, distribution.Gini.IsPositive())
	require.True(t, distribution.Gini.LessThanOrEqual(decimal.NewFromInt(1)))
}

func TestGeckoTerminalFetch(t *testing.T) {
	client, cfg := serve(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/networks/ethereum/tokens/"+uniAddress+"/pools", r.URL.Path)
		w.Write([]byte(`{
			"data": [
				{
					"attributes": {"name": "UNI / WETH 0.3%", "reserve_in_usd": "41000000", "lock_info": "locked for 6 months"},
					"relationships": {"dex": {"data": {"id": "uniswap_v3"}}}
				},
				{
					"attributes": {"name": "UNI / USDC", "reserve_in_usd": "9000000", "lock_info": ""},
					"relationships": {"dex": {"data": {"id": "sushiswap"}}}
				}
			]
		}`))
	})

	outcome := NewGeckoTerminal(client, cfg).Fetch(context.Background(), uniAddress, mustChain(t, "1"))

	require.Equal(t, StatusSuccess, outcome.Status)
	liquidity := outcome.Data.Liquidity
	require.NotNil(t, liquidity)
	require.Equal(t, "50000000", liquidity.TotalLiquidityUSD.String())
	require.Len(t, liquidity.MajorPairs, 2)
	require.Equal(t, "uniswap_v3", liquidity.MajorPairs[0].Dex)
	require.EqualValues(t, 180, *liquidity.LockDays)
}

func TestParseLockDuration(t *testing.T) {
	for text, want := range map[string]int64{
		"locked for 6 months": 180,
		"Locked 1 year":       365,
		"90 days":             90,
		"1 day":               1,
		"LP locked: 2 Years":  730,
	} {
		got := ParseLockDuration(text)
		require.NotNil(t, got, text)
		require.Equal(t, want, *got, text)
	}

	for _, text := range []string{"", "locked forever", "burned"} {
		require.Nil(t, ParseLockDuration(text), text)
	}
}

func TestDefiLlamaFetch(t *testing.T) {
	var calls int32
	client, cfg := serve(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		require.Equal(t, "/tvl/pendle", r.URL.Path)
		w.Write([]byte(`4520000000.5`))
	})

	llama := NewDefiLlama(client, cfg)
	pendle := "0x808507121b80c02388fad14726482e061b8da827"

	outcome := llama.Fetch(context.Background(), pendle, mustChain(t, "1"))
	require.Equal(t, StatusSuccess, outcome.Status)
	require.Equal(t, "4520000000.5", outcome.Data.TVLUSD.String())

	// second lookup is served from the memoized value
	outcome = llama.Fetch(context.Background(), pendle, mustChain(t, "1"))
	require.Equal(t, StatusSuccess, outcome.Status)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestDefiLlamaUnknownToken(t *testing.T) {
	client, cfg := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for a token without a protocol")
	})

	outcome := NewDefiLlama(client, cfg).Fetch(context.Background(), "0x00000000000000000000000000000000000000aa", mustChain(t, "1"))
	require.Equal(t, StatusNoData, outcome.Status)
}

func TestTwitterCounterMirrorFallback(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(dead.Close)

	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Uniswap", r.URL.Path)
		w.Write([]byte(`{"user": {"followers": 1200000}}`))
	}))
	t.Cleanup(alive.Close)

	counter := NewTwitterCounter(NewClient(time.Second*5), []DataSource{
		{URL: dead.URL},
		{URL: alive.URL},
	})

	outcome := counter.Count(context.Background(), "@Uniswap")
	require.Equal(t, StatusSuccess, outcome.Status)
	require.EqualValues(t, 1200000, *outcome.Count)
}

func TestTwitterCounterNoMirrors(t *testing.T) {
	counter := NewTwitterCounter(NewClient(time.Second), nil)
	outcome := counter.Count(context.Background(), "Uniswap")
	require.Equal(t, StatusError, outcome.Status)
	require.ErrorIs(t, outcome.Err, ErrNoDataSource)
}

func TestDiscordCounter(t *testing.T) {
	client, cfg := serve(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v10/invites/uniswap", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("with_counts"))
		w.Write([]byte(`{"approximate_member_count": 78000}`))
	})

	outcome := NewDiscordCounter(client, cfg).Count(context.Background(), "https://discord.gg/uniswap")
	require.Equal(t, StatusSuccess, outcome.Status)
	require.EqualValues(t, 78000, *outcome.Count)
}

func TestInviteCode(t *testing.T) {
	for link, want := range map[string]string{
		"https://discord.gg/uniswap":         "uniswap",
		"https://discord.com/invite/uniswap": "uniswap",
		"https://discord.gg/abc123/":         "abc123",
	} {
		require.Equal(t, want, inviteCode(link), link)
	}
}

func TestTelegramCounter(t *testing.T) {
	client, cfg := serve(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/botsecret/getChatMemberCount", r.URL.Path)
		require.Equal(t, "@uniswap", r.URL.Query().Get("chat_id"))
		w.Write([]byte(`{"ok": true, "result": 52000}`))
	})
	cfg.Key = "secret"

	outcome := NewTelegramCounter(client, cfg).Count(context.Background(), "https://t.me/uniswap")
	require.Equal(t, StatusSuccess, outcome.Status)
	require.EqualValues(t, 52000, *outcome.Count)
}

func TestGitHubRepository(t *testing.T) {
	client, cfg := serve(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/Uniswap/v3-core":
			w.Write([]byte(`{"stargazers_count": 4200, "forks_count": 2700, "pushed_at": "2026-08-20T10:00:00Z"}`))
		case "/repos/Uniswap/v3-core/contributors":
			w.Write([]byte(`[{"login": "a"}, {"login": "b"}, {"login": "c"}]`))
		case "/repos/Uniswap/v3-core/commits":
			w.Write([]byte(`[{"sha": "1"}, {"sha": "2"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	development, status, err := NewGitHub(client, cfg).Repository(context.Background(), "https://github.com/Uniswap/v3-core")

	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)
	require.EqualValues(t, 4200, *development.Stars)
	require.EqualValues(t, 2700, *development.Forks)
	require.EqualValues(t, 3, *development.Contributors)
	require.EqualValues(t, 2, *development.Commits30d)
	require.NotNil(t, development.LastPush)
}

func TestGitHubRepositoryMissing(t *testing.T) {
	client, cfg := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, status, err := NewGitHub(client, cfg).Repository(context.Background(), "https://github.com/nobody/nothing")
	require.NoError(t, err)
	require.Equal(t, StatusNoData, status)
}

func TestRepoFullName(t *testing.T) {
	for link, want := range map[string]string{
		"https://github.com/Uniswap/v3-core":       "Uniswap/v3-core",
		"https://github.com/Uniswap/v3-core.git":   "Uniswap/v3-core",
		"https://github.com/Uniswap/v3-core/tree/": "Uniswap/v3-core",
		"https://gitlab.com/some/repo":             "",
		"https://github.com/onlyowner":             "",
	} {
		require.Equal(t, want, repoFullName(link), link)
	}
}

func TestValidateURL(t *testing.T) {
	for _, link := range []string{
		"https://api.example.com/v1",
		"https://8.8.8.8/status",
	} {
		parsed, err := url.Parse(link)
		require.NoError(t, err)
		require.NoError(t, ValidateURL(parsed), link)
	}

	for _, link := range []string{
		"http://localhost/admin",
		"http://127.0.0.1:8080/",
		"http://10.0.0.5/metadata",
		"http://192.168.1.1/",
		"http://169.254.169.254/latest/meta-data",
	} {
		parsed, err := url.Parse(link)
		require.NoError(t, err)
		require.Error(t, ValidateURL(parsed), link)
	}
}
