package metrics

var (
	Ballot = NopBallotMetrics()
	API    = NopAPIMetrics()
)
