package hero

// Routes of the hero HTTP API.
const (
	PathHero              = "/api/v1/hero"
	PathHeroWithVouchers  = "/api/v1/hero/vouchers"
	PathHeroOwesMoney     = "/api/v1/hero/owe-money"
	PathVoucherStatistics = "/api/v1/voucher/by-person-and-type"

	// QueryNatID is the query parameter of PathHeroOwesMoney.
	QueryNatID = "natid"
)
