package outbound

// MetricsRecorder receives the counters the personalization core emits
type MetricsRecorder interface {
	StaleResponse(kind string)
	ResolutionGap(kind string, count int)
	LikeNotification(outcome string)
	PersistenceError(op, key string)
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) StaleResponse(string)            {}
func (NopMetrics) ResolutionGap(string, int)       {}
func (NopMetrics) LikeNotification(string)         {}
func (NopMetrics) PersistenceError(string, string) {}
