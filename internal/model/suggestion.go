package model

// RiskProfile determines scoring weights and position concentration.
type RiskProfile string

const (
	ProfileConservative RiskProfile = "conservative"
	ProfileModerate     RiskProfile = "moderate"
	ProfileAggressive   RiskProfile = "aggressive"
)

// Valid reports whether p is one of the three known profiles.
func (p RiskProfile) Valid() bool {
	switch p {
	case ProfileConservative, ProfileModerate, ProfileAggressive:
		return true
	}
	return false
}

// TimingBand classifies a candidate's entry-timing quality.
type TimingBand string

const (
	TimingOptimal    TimingBand = "optimal"
	TimingGood       TimingBand = "good"
	TimingNeutral    TimingBand = "neutral"
	TimingSuboptimal TimingBand = "suboptimal"
)

// ScoredPool is a candidate pool with its scoring output. TimingScore and
// TimingBand are filled in by the timing stage.
type ScoredPool struct {
	Pool        PoolRecord    `json:"pool"`
	Features    FeatureVector `json:"features"`
	RawScore    float64       `json:"raw_score"`
	Confidence  float64       `json:"confidence"`
	Reasons     []string      `json:"reasons"`
	TimingScore float64       `json:"timing_score"`
	TimingBand  TimingBand    `json:"timing_band,omitempty"`
}

// SizedPosition is a concrete allocation for a single pool. When
// ManualSizing is set no amount was requested and Amount/Weight are zero.
type SizedPosition struct {
	Pool         PoolRecord `json:"pool"`
	Amount       float64    `json:"amount"`
	Weight       float64    `json:"weight"`
	ManualSizing bool       `json:"manual_sizing,omitempty"`
}

// Request describes one recommendation call.
type Request struct {
	RiskProfile    RiskProfile
	Amount         float64 // 0 means unspecified, positions come back unsized
	PreferredAsset string
	Holdings       []string // pool IDs the caller already holds
}

// Result is the top-level recommendation outcome. Expected failure modes
// never surface as errors; FallbackUsed signals reduced confidence instead.
type Result struct {
	Status          string          `json:"status"`
	Suggestions     []ScoredPool    `json:"suggestions"`
	Positions       []SizedPosition `json:"positions,omitempty"`
	MarketSentiment string          `json:"market_sentiment"`
	Explanation     string          `json:"explanation"`
	FallbackUsed    bool            `json:"fallback_used"`
	RLPowered       bool            `json:"rl_powered"`
}
