package provider

// Metrics records vendor call volume and failures. Implemented by
// pkg/metrics; adapters accept the interface so tests can pass nil-safe
// stubs.
type Metrics interface {
	RecordProviderRequest(provider, call string)
	RecordProviderError(provider, kind string)
}

// NopMetrics discards all recordings.
type NopMetrics struct{}

func (NopMetrics) RecordProviderRequest(string, string) {}
func (NopMetrics) RecordProviderError(string, string)   {}
