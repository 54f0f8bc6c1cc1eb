package resolver

import (
	"github.com/chainscope/tokenscan/internal/token"
	"github.com/shopspring/decimal"
)

// Candidate - one provider's answer, in fallback priority order
type Candidate struct {
	Provider string
	Fields   map[token.Field]struct{}
	Data     *token.Partial
}

// NewCandidate -
func NewCandidate(provider string, fields []token.Field, data *token.Partial) Candidate {
	set := make(map[token.Field]struct{}, len(fields))
	for i := range fields {
		set[fields[i]] = struct{}{}
	}
	return Candidate{Provider: provider, Fields: set, Data: data}
}

type stringField struct {
	field token.Field
	get   func(*token.Partial) *string
	set   func(*token.Merged, *string)
	gate  func(string) bool
}

type numericField struct {
	field token.Field
	get   func(*token.Partial) *decimal.Decimal
	set   func(*token.Merged, *decimal.Decimal)
	// whether a provider-reported zero is plausible and therefore
	// authoritative for this field
	zeroPlausible bool
}

var stringFields = []stringField{
	{
		field: token.FieldName,
		get:   func(p *token.Partial) *string { return p.Name },
		set:   func(m *token.Merged, v *string) { m.Name = v },
	},
	{
		field: token.FieldSymbol,
		get:   func(p *token.Partial) *string { return p.Symbol },
		set:   func(m *token.Merged, v *string) { m.Symbol = v },
	},
	{
		field: token.FieldDescription,
		get:   func(p *token.Partial) *string { return p.Description },
		set:   func(m *token.Merged, v *string) { m.Description = v },
		gate:  GoodDescription,
	},
	{
		field: token.FieldLogo,
		get:   func(p *token.Partial) *string { return p.LogoURL },
		set:   func(m *token.Merged, v *string) { m.LogoURL = v },
		gate:  GoodWebURL,
	},
	{
		field: token.FieldWebsite,
		get:   func(p *token.Partial) *string { return p.Website },
		set:   func(m *token.Merged, v *string) { m.Website = v },
		gate:  GoodWebURL,
	},
	{
		field: token.FieldTwitter,
		get:   func(p *token.Partial) *string { return p.Twitter },
		set:   func(m *token.Merged, v *string) { m.Twitter = v },
		gate:  GoodTwitterHandle,
	},
	{
		field: token.FieldGithub,
		get:   func(p *token.Partial) *string { return p.GithubURL },
		set:   func(m *token.Merged, v *string) { m.GithubURL = v },
		gate:  GoodGithubURL,
	},
	{
		field: token.FieldDiscord,
		get:   func(p *token.Partial) *string { return p.DiscordURL },
		set:   func(m *token.Merged, v *string) { m.DiscordURL = v },
		gate:  GoodDiscordURL,
	},
	{
		field: token.FieldTelegram,
		get:   func(p *token.Partial) *string { return p.TelegramURL },
		set:   func(m *token.Merged, v *string) { m.TelegramURL = v },
		gate:  GoodTelegramURL,
	},
}

var numericFields = []numericField{
	{
		field: token.FieldPrice,
		get:   func(p *token.Partial) *decimal.Decimal { return p.Price },
		set:   func(m *token.Merged, v *decimal.Decimal) { m.Price = v },
	},
	{
		field:         token.FieldChange24h,
		get:           func(p *token.Partial) *decimal.Decimal { return p.Change24h },
		set:           func(m *token.Merged, v *decimal.Decimal) { m.Change24h = v },
		zeroPlausible: true,
	},
	{
		field: token.FieldMarketCap,
		get:   func(p *token.Partial) *decimal.Decimal { return p.MarketCap },
		set:   func(m *token.Merged, v *decimal.Decimal) { m.MarketCap = v },
	},
	{
		field:         token.FieldVolume24h,
		get:           func(p *token.Partial) *decimal.Decimal { return p.Volume24h },
		set:           func(m *token.Merged, v *decimal.Decimal) { m.Volume24h = v },
		zeroPlausible: true,
	},
	{
		field: token.FieldTotalSupply,
		get:   func(p *token.Partial) *decimal.Decimal { return p.TotalSupply },
		set:   func(m *token.Merged, v *decimal.Decimal) { m.TotalSupply = v },
	},
}

// Resolve - fills the merged record from candidates in priority
// order. For every logical field the first value passing the field's
// gate wins; fields resolve independently of each other. When no
// provider yields an acceptable description one is synthesized from
// the structured fields already resolved.
func Resolve(merged *token.Merged, candidates []Candidate) {
	for _, f := range stringFields {
		for i := range candidates {
			if _, declared := candidates[i].Fields[f.field]; !declared {
				continue
			}
			if candidates[i].Data == nil {
				continue
			}
			value := f.get(candidates[i].Data)
			if value == nil || *value == "" {
				continue
			}
			if f.gate != nil && !f.gate(*value) {
				continue
			}
			f.set(merged, value)
			merged.Provenance[f.field] = candidates[i].Provider
			break
		}
	}

	for _, f := range numericFields {
		for i := range candidates {
			if _, declared := candidates[i].Fields[f.field]; !declared {
				continue
			}
			if candidates[i].Data == nil {
				continue
			}
			value := f.get(candidates[i].Data)
			if value == nil {
				continue
			}
			if value.IsZero() && !f.zeroPlausible {
				continue
			}
			f.set(merged, value)
			merged.Provenance[f.field] = candidates[i].Provider
			break
		}
	}

	if merged.Description == nil {
		synthesized := SynthesizeDescription(merged)
		merged.Description = &synthesized
		merged.Provenance[token.FieldDescription] = "synthesized"
	}
}
