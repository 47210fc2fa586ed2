package metrics

const (
	Namespace       = "ballot"
	BallotSubsystem = "ballot"
	APISubsystem    = "api"
)

const (
	StatusApplied  = "applied"
	StatusRejected = "rejected"
)
