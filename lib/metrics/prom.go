package metrics

import "sync"

var promOnce sync.Once

// InitPrometheusMetrics replaces the nop metrics with prometheus ones. The
// collectors are registered once in the default registry.
func InitPrometheusMetrics() {
	promOnce.Do(func() {
		Version = PromVersion()
		Ballot = PromBallotMetrics()
		API = PromAPIMetrics()
	})
}
