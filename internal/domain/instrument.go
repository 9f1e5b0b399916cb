package domain

// Instrument is one tradable security. Instruments are created once at
// market seeding and never deleted during a session. ReferencePrice is
// updated only by the matching engine (last trade price) or by a
// sentiment-driven news adjustment; the instrument store guards it.
type Instrument struct {
	ID             string // ticker, e.g. "SS011"
	Name           string
	Sector         string
	ReferencePrice int64 // credits per share, always > 0
	TotalShares    int64
}
