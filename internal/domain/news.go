package domain

import "fmt"

// Sentiment is the direction of a published news event.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Direction maps a sentiment to its price direction: +1, -1, or 0.
func (s Sentiment) Direction() int {
	switch s {
	case SentimentPositive:
		return 1
	case SentimentNegative:
		return -1
	default:
		return 0
	}
}

// ParseSentiment validates a raw sentiment string.
func ParseSentiment(raw string) (Sentiment, error) {
	switch Sentiment(raw) {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return Sentiment(raw), nil
	}
	return "", &ValidationError{
		Message: fmt.Sprintf("unknown sentiment %q, must be one of: positive, negative, neutral", raw),
	}
}
