package token

// Field - logical field resolved through the provider fallback chain
type Field string

// logical fields
const (
	FieldName        Field = "name"
	FieldSymbol      Field = "symbol"
	FieldDescription Field = "description"
	FieldLogo        Field = "logo"
	FieldWebsite     Field = "website"
	FieldTwitter     Field = "twitter"
	FieldGithub      Field = "github"
	FieldDiscord     Field = "discord"
	FieldTelegram    Field = "telegram"
	FieldPrice       Field = "price"
	FieldChange24h   Field = "change_24h"
	FieldMarketCap   Field = "market_cap"
	FieldVolume24h   Field = "volume_24h"
	FieldTotalSupply Field = "total_supply"
)

// Fields - fixed resolution order of all logical fields
var Fields = []Field{
	FieldName,
	FieldSymbol,
	FieldDescription,
	FieldLogo,
	FieldWebsite,
	FieldTwitter,
	FieldGithub,
	FieldDiscord,
	FieldTelegram,
	FieldPrice,
	FieldChange24h,
	FieldMarketCap,
	FieldVolume24h,
	FieldTotalSupply,
}
