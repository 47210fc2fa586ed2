package resource

const (
	APIVersionV1 = "/v1"
	APIPrefix    = "/api"

	URLBallot     = APIPrefix + APIVersionV1
	URLProposals  = APIPrefix + APIVersionV1 + "/proposals"
	URLProposal   = APIPrefix + APIVersionV1 + "/proposals/{id}"
	URLWinner     = APIPrefix + APIVersionV1 + "/winner"
	URLVoter      = APIPrefix + APIVersionV1 + "/voters/{id}"
	URLOperations = APIPrefix + APIVersionV1 + "/operations"
	URLOperation  = APIPrefix + APIVersionV1 + "/operations/{id}"
	URLSubscribe  = APIPrefix + APIVersionV1 + "/subscribe"
)
