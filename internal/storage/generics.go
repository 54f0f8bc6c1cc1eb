package storage

// Models - list all models
var Models = []any{
	&Token{},
	&SecuritySnapshot{},
	&TokenomicsSnapshot{},
	&LiquiditySnapshot{},
	&CommunitySnapshot{},
	&DevelopmentSnapshot{},
	&ScanEvent{},
}
