package domain

// TickLog is the complete, immutable record of one simulation tick:
// every order buffered that tick (including ones dropped at
// re-validation, kept for audit), every executed trade, the closing
// price per security, and a deep snapshot of every portfolio.
type TickLog struct {
	Tick       int64                 `json:"tick"`
	Orders     []Order               `json:"orders"`
	Trades     []Trade               `json:"trades"`
	LastPrices map[string]float64    `json:"last_prices"`
	Portfolios map[string]*Portfolio `json:"portfolios"`
}
