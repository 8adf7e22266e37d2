package models

// Quote is a best-effort price snapshot for a single instrument. Any side
// may be missing; Mid is derived from whatever is present.
type Quote struct {
	Instrument string   `json:"instrument"`
	Bid        *float64 `json:"bid,omitempty"`
	Ask        *float64 `json:"ask,omitempty"`
	Mid        *float64 `json:"mid,omitempty"`
}

// NewQuote builds a quote and derives the mid price: the average when both
// sides are present, else whichever side exists, else nil.
func NewQuote(instrument string, bid, ask *float64) Quote {
	q := Quote{Instrument: instrument, Bid: bid, Ask: ask}
	switch {
	case bid != nil && ask != nil:
		mid := (*bid + *ask) / 2
		q.Mid = &mid
	case bid != nil:
		q.Mid = bid
	case ask != nil:
		q.Mid = ask
	}
	return q
}
