package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRecommendation(_ *RecommendationSnapshot) error { return nil }
func (n *NoopRecorder) RecordFeedback(_ *FeedbackEvent) error                { return nil }
func (n *NoopRecorder) Close() error                                         { return nil }
