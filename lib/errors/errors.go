package errors

// ballot rules
var (
	Unauthorized        = NewError(100, "only the chairperson can give right to vote")
	AlreadyVoted        = NewError(101, "The voter already voted.")
	AlreadyEnrolled     = NewError(102, "the voter already has right to vote")
	SelfDelegation      = NewError(103, "Self-delegation is disallowed.")
	DelegationLoop      = NewError(104, "found loop in delegation")
	InvalidProposal     = NewError(105, "proposal index is out of range")
	NoRightToVote       = NewError(106, "has no right to vote")
	EmptyProposals      = NewError(107, "at least one proposal must be given")
	ProposalNameTooLong = NewError(108, "proposal name is longer than 32 bytes")
	InvalidChairperson  = NewError(109, "chairperson address is empty")
)

// operations
var (
	UnknownOperationType      = NewError(120, "unknown operation type")
	InvalidOperation          = NewError(121, "invalid operation")
	OperationBodyInvalid      = NewError(122, "operation body is not well formed")
	HashDoesNotMatch          = NewError(123, "`Hash` does not match")
	SignatureVerificationFail = NewError(124, "signature verification failed")
	BadPublicAddress          = NewError(125, "failed to parse public address")
	OperationAlreadyProcessed = NewError(126, "operation was already processed")
)

// storage and journal
var (
	StorageRecordDoesNotExist  = NewError(140, "record does not exist")
	StorageRecordAlreadyExists = NewError(141, "record already exists")
	StorageCoreError           = NewError(142, "storage error")
	GenesisDoesNotExist        = NewError(143, "genesis record does not exist")
	GenesisAlreadyExists       = NewError(144, "genesis record already exists")
	JournalCorrupted           = NewError(145, "journal record failed to replay")
)

// api
var (
	BadRequestParameter     = NewError(160, "bad request parameter")
	PageQueryLimitMaxExceed = NewError(161, "limit is too big")
	ContentTypeNotJSON      = NewError(162, "`Content-Type` must be 'application/json'")
)
