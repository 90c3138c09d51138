package model

// -----------------------------------------------------------------------------
// Feed Types
// -----------------------------------------------------------------------------

// TradeTick is a single aggregate trade as reported by the exchange feed.
// Immutable once received. Identity is AggregateID, unique per token only.
type TradeTick struct {
	AggregateID int64  `json:"a"` // Aggregate trade ID (monotonic per token)
	Price       string `json:"p"` // Price as decimal string
	Quantity    string `json:"q"` // Quantity as decimal string
	TradeTimeMs int64  `json:"T"` // Trade time (ms since epoch)
	BuyerMaker  bool   `json:"m"` // true = buyer was the maker
}

// Token configures one polled feed column.
type Token struct {
	ID           string  `json:"id,omitempty"`
	Name         string  `json:"name"`
	APIURL       string  `json:"apiUrl"`
	StaggerDelay int64   `json:"staggerDelay"` // First-fetch offset (ms)
	Multiplier   float64 `json:"multiplier"`   // Display-only volume scaling
}

// -----------------------------------------------------------------------------
// Admin Record Types
// -----------------------------------------------------------------------------

// Airdrop mirrors a backend airdrop listing. The backend owns the record;
// this process only holds transient copies for rendering and editing.
// Either EventDate+EventTime or TimeISO locates the event; absence of both
// means the time is TBA.
type Airdrop struct {
	ID         string   `json:"id,omitempty"`
	Project    string   `json:"project"`
	Alias      string   `json:"alias"`
	Points     *float64 `json:"points"`
	Amount     *float64 `json:"amount"`
	EventDate  string   `json:"event_date,omitempty"`
	EventTime  string   `json:"event_time,omitempty"`
	TimeISO    string   `json:"time_iso,omitempty"`
	Timezone   string   `json:"timezone"`
	Phase      string   `json:"phase"`
	X          string   `json:"x"` // Profile link
	Raised     string   `json:"raised"`
	SourceLink string   `json:"source_link"`
	ImageURL   string   `json:"image_url"`
	News       string   `json:"news,omitempty"`
	Deleted    bool     `json:"deleted,omitempty"`
}

// AlphaInsight is a research article reference.
type AlphaInsight struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Token       string `json:"token"`
	Platform    string `json:"platform"`
	Sector      string `json:"sector"`
	Raised      string `json:"raised"`
	Description string `json:"description"`
	Date        string `json:"date"`
	ImageURL    string `json:"imageUrl"`
	URL         string `json:"url"`
}

// -----------------------------------------------------------------------------
// Derived Types
// -----------------------------------------------------------------------------

// Summary aggregates all token windows into dashboard-level statistics.
type Summary struct {
	TotalVolume    float64 `json:"total_volume"`     // Σ price·quantity·multiplier
	TotalTrades    int     `json:"total_trades"`     // Entries across all windows
	AveragePrice   float64 `json:"average_price"`    // Mean price across all entries
	PriceChangePct float64 `json:"price_change_pct"` // Mean per-token newest/oldest change
	GeneratedAtMs  int64   `json:"generated_at_ms"`
}

// TokenStats describes one token's current window for consumers.
type TokenStats struct {
	Token     string   `json:"token"`
	Trades    int      `json:"trades"`
	SpreadBps *float64 `json:"spread_bps,omitempty"`
	Stability string   `json:"stability,omitempty"`
	Error     string   `json:"error,omitempty"`
}
