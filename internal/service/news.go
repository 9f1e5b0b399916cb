package service

import (
	"github.com/jaeminoh/marketsim/internal/domain"
	"github.com/jaeminoh/marketsim/internal/engine"
)

// NewsService translates published news events into reference-price
// adjustments via the price impact adapter.
type NewsService struct {
	impact *engine.ImpactAdapter
}

// NewNewsService creates a new NewsService.
func NewNewsService(impact *engine.ImpactAdapter) *NewsService {
	return &NewsService{impact: impact}
}

// ApplyImpact validates the sentiment and applies the impact to the
// instrument's reference price, returning the new price. Negative
// magnitudes are treated by their absolute value; direction comes only
// from the sentiment.
func (s *NewsService) ApplyImpact(instrumentID, sentimentRaw string, magnitude float64) (int64, error) {
	sentiment, err := domain.ParseSentiment(sentimentRaw)
	if err != nil {
		return 0, err
	}
	return s.impact.Apply(instrumentID, sentiment, magnitude)
}
