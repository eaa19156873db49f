package model

// Experience is one (state, action, reward, next state) transition recorded
// by the feedback loop. State and NextState always have FeatureCount
// elements.
type Experience struct {
	State     []float64 `json:"state"`
	Action    int       `json:"action"`
	Reward    float64   `json:"reward"`
	NextState []float64 `json:"next_state"`
	Terminal  bool      `json:"terminal"`
}
