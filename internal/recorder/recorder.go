package recorder

import "YieldRadar/internal/model"

// RecommendationSnapshot holds all data for one recommendation request.
type RecommendationSnapshot struct {
	RequestID       string
	Profile         model.RiskProfile
	Amount          float64
	MarketSentiment string
	FallbackUsed    bool
	RLPowered       bool
	Suggestions     []model.ScoredPool
	Positions       []model.SizedPosition
}

// FeedbackEvent records one applied feedback reward.
type FeedbackEvent struct {
	PositionID string
	PoolID     string
	Kind       string // "unrealized" or "realized"
	Rating     int
	Reward     float64
	Epsilon    float64
}

// Recorder persists historical data for analysis. The pipeline works
// identically with the no-op implementation; recording is audit only.
type Recorder interface {
	RecordRecommendation(snap *RecommendationSnapshot) error
	RecordFeedback(evt *FeedbackEvent) error
	Close() error
}
