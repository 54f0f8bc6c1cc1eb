package chains

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsupportedChain -
var ErrUnsupportedChain = errors.New("unsupported chain")

// Descriptor - canonical description of a supported chain with
// per-provider vocabulary used to key external lookups.
type Descriptor struct {
	ID          string
	Name        string
	IsEVM       bool
	ProviderIDs map[string]string
}

// provider vocabulary keys
const (
	VocabularyGoPlus      = "goplus"
	VocabularyHoneypot    = "honeypot"
	VocabularyCoinGecko   = "coingecko"
	VocabularyDexScreener = "dexscreener"
	VocabularyCovalent    = "covalent"
	VocabularyDefiLlama   = "defillama"
)

var registry = map[string]Descriptor{
	"1": {
		ID:    "1",
		Name:  "Ethereum",
		IsEVM: true,
		ProviderIDs: map[string]string{
			VocabularyGoPlus:      "1",
			VocabularyHoneypot:    "eth",
			VocabularyCoinGecko:   "ethereum",
			VocabularyDexScreener: "ethereum",
			VocabularyCovalent:    "eth-mainnet",
			VocabularyDefiLlama:   "ethereum",
		},
	},
	"56": {
		ID:    "56",
		Name:  "BNB Smart Chain",
		IsEVM: true,
		ProviderIDs: map[string]string{
			VocabularyGoPlus:      "56",
			VocabularyHoneypot:    "bsc",
			VocabularyCoinGecko:   "binance-smart-chain",
			VocabularyDexScreener: "bsc",
			VocabularyCovalent:    "bsc-mainnet",
			VocabularyDefiLlama:   "bsc",
		},
	},
	"137": {
		ID:    "137",
		Name:  "Polygon",
		IsEVM: true,
		ProviderIDs: map[string]string{
			VocabularyGoPlus:      "137",
			VocabularyCoinGecko:   "polygon-pos",
			VocabularyDexScreener: "polygon",
			VocabularyCovalent:    "matic-mainnet",
			VocabularyDefiLlama:   "polygon",
		},
	},
	"42161": {
		ID:    "42161",
		Name:  "Arbitrum One",
		IsEVM: true,
		ProviderIDs: map[string]string{
			VocabularyGoPlus:      "42161",
			VocabularyCoinGecko:   "arbitrum-one",
			VocabularyDexScreener: "arbitrum",
			VocabularyCovalent:    "arbitrum-mainnet",
			VocabularyDefiLlama:   "arbitrum",
		},
	},
	"8453": {
		ID:    "8453",
		Name:  "Base",
		IsEVM: true,
		ProviderIDs: map[string]string{
			VocabularyGoPlus:      "8453",
			VocabularyCoinGecko:   "base",
			VocabularyDexScreener: "base",
			VocabularyCovalent:    "base-mainnet",
			VocabularyDefiLlama:   "base",
		},
	},
	"solana": {
		ID:    "solana",
		Name:  "Solana",
		IsEVM: false,
		ProviderIDs: map[string]string{
			VocabularyCoinGecko:   "solana",
			VocabularyDexScreener: "solana",
			VocabularyCovalent:    "solana-mainnet",
			VocabularyDefiLlama:   "solana",
		},
	},
}

var aliases = map[string]string{
	"eth":       "1",
	"ethereum":  "1",
	"mainnet":   "1",
	"bsc":       "56",
	"bnb":       "56",
	"binance":   "56",
	"polygon":   "137",
	"matic":     "137",
	"arbitrum":  "42161",
	"base":      "8453",
	"sol":       "solana",
	"solana":    "solana",
}

// Normalize - reduces a chain identifier to its canonical form. Hex
// ids and numeric strings collapse to the decimal chain id, known
// aliases resolve by name. Unknown input passes through unchanged so
// the caller can detect an unsupported chain.
func Normalize(id string) string {
	s := strings.ToLower(strings.TrimSpace(id))
	if s == "" {
		return id
	}

	if strings.HasPrefix(s, "0x") {
		if n, err := strconv.ParseUint(s[2:], 16, 64); err == nil {
			return strconv.FormatUint(n, 10)
		}
		return s
	}

	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return strconv.FormatUint(n, 10)
	}

	if canonical, ok := aliases[s]; ok {
		return canonical
	}

	return s
}

// Resolve - returns the descriptor for a canonical chain id.
func Resolve(canonicalID string) (Descriptor, error) {
	descriptor, ok := registry[canonicalID]
	if !ok {
		return Descriptor{}, errors.Wrap(ErrUnsupportedChain, canonicalID)
	}
	return descriptor, nil
}

// ProviderID - maps the chain to one provider's vocabulary. The second
// value is false when the provider does not cover this chain.
func (d Descriptor) ProviderID(vocabulary string) (string, bool) {
	id, ok := d.ProviderIDs[vocabulary]
	return id, ok
}
