package metrics

import (
	"strconv"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type BallotMetrics struct {
	Operations metrics.Counter
	Records    metrics.Gauge
	Voters     metrics.Gauge
	VoteCount  metrics.Gauge
}

// AddOperation counts submitted operation by type and status.
func (b *BallotMetrics) AddOperation(oType, status string) {
	b.Operations.With("type", oType, "status", status).Add(1)
}

func (b *BallotMetrics) SetRecords(seq uint64) {
	b.Records.Set(float64(seq))
}

func (b *BallotMetrics) SetVoters(n int) {
	b.Voters.Set(float64(n))
}

func (b *BallotMetrics) SetVoteCount(proposal int, count uint64) {
	b.VoteCount.With("proposal", strconv.Itoa(proposal)).Set(float64(count))
}

func PromBallotMetrics() *BallotMetrics {
	return &BallotMetrics{
		Operations: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "operations_total",
			Help:      "Total number of submitted operations.",
		}, []string{"type", "status"}),
		Records: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "records",
			Help:      "Sequence of the last journal record.",
		}, []string{}),
		Voters: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "voters",
			Help:      "Number of known voters.",
		}, []string{}),
		VoteCount: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "vote_count",
			Help:      "Vote count of proposal.",
		}, []string{"proposal"}),
	}
}

func NopBallotMetrics() *BallotMetrics {
	return &BallotMetrics{
		Operations: discard.NewCounter(),
		Records:    discard.NewGauge(),
		Voters:     discard.NewGauge(),
		VoteCount:  discard.NewGauge(),
	}
}
