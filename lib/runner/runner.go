// Package runner hosts one ballot: it verifies signed operations, applies
// them one at a time and journals them.
package runner

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	logging "github.com/inconshreveable/log15"

	"boscoin.io/ballot/lib/ballot"
	"boscoin.io/ballot/lib/common/observer"
	"boscoin.io/ballot/lib/errors"
	"boscoin.io/ballot/lib/journal"
	"boscoin.io/ballot/lib/metrics"
	"boscoin.io/ballot/lib/operation"
	"boscoin.io/ballot/lib/storage"
)

const DefaultAppliedCacheSize int = 10000

type Winner struct {
	Index     uint64 `json:"index"`
	Name      string `json:"name"`
	VoteCount uint64 `json:"vote_count"`
}

type Info struct {
	Chairperson string `json:"chairperson"`
	NetworkID   string `json:"network_id"`
	Created     string `json:"created"`
	Proposals   int    `json:"proposals"`
	Voters      int    `json:"voters"`
	Records     uint64 `json:"records"`
	Winner      Winner `json:"winner"`
}

type BallotRunner struct {
	sync.RWMutex

	// events keeps the triggered events in journal order.
	events sync.Mutex

	networkID []byte
	storage   *storage.LevelDBBackend
	journal   *journal.Journal
	state     *ballot.BallotState
	applied   *lru.Cache

	log logging.Logger
}

// NewBallotRunner loads the ballot from storage; the genesis must be saved
// before and its network id must be networkID.
func NewBallotRunner(networkID []byte, st *storage.LevelDBBackend) (*BallotRunner, error) {
	j, state, err := journal.Load(st)
	if err != nil {
		return nil, err
	}

	if j.Genesis().NetworkID != string(networkID) {
		return nil, errors.BadRequestParameter.Clone().
			SetData("network_id", string(networkID)).
			SetData("genesis", j.Genesis().NetworkID)
	}

	applied, err := lru.New(DefaultAppliedCacheSize)
	if err != nil {
		return nil, err
	}

	r := &BallotRunner{
		networkID: networkID,
		storage:   st,
		journal:   j,
		state:     state,
		applied:   applied,
		log:       log.New("chairperson", j.Genesis().Chairperson),
	}

	r.updateMetrics()
	r.log.Debug("ballot runner loaded", "records", j.LastSeq())

	return r, nil
}

func (r *BallotRunner) NetworkID() []byte {
	return r.networkID
}

func (r *BallotRunner) Storage() *storage.LevelDBBackend {
	return r.storage
}

// Submit verifies op and applies it to the ballot. The operation is
// journaled before Submit returns; if journaling fails the ballot is rebuilt
// from the journal.
func (r *BallotRunner) Submit(op operation.Operation) (record journal.Record, err error) {
	defer func() {
		status := metrics.StatusApplied
		if err != nil {
			status = metrics.StatusRejected
		}
		metrics.Ballot.AddOperation(string(op.B.Type), status)
	}()

	if err = op.IsWellFormed(r.networkID); err != nil {
		r.log.Debug("operation is not well formed", "hash", op.GetHash(), "error", err)
		return
	}

	r.Lock()
	record, err = r.apply(op)
	if err != nil {
		r.Unlock()
		return
	}
	winner := r.winner()

	r.events.Lock()
	r.Unlock()
	defer r.events.Unlock()

	r.triggerEvents(record, winner)

	return
}

// apply runs op on the ballot first, so a resubmitted operation gets the
// error of the ballot, like AlreadyVoted. The applied hashes only guard the
// journal.
func (r *BallotRunner) apply(op operation.Operation) (record journal.Record, err error) {
	if err = op.Apply(r.state); err != nil {
		r.log.Debug("operation rejected", "hash", op.GetHash(), "type", op.B.Type, "error", err)
		return
	}

	if err = r.checkApplied(op.GetHash()); err != nil {
		r.log.Error("operation was applied again; reload ballot", "hash", op.GetHash(), "error", err)
		r.reload()
		return
	}

	if record, err = r.journal.Append(op); err != nil {
		r.log.Error("failed to journal operation; reload ballot", "hash", op.GetHash(), "error", err)
		r.reload()
		return
	}

	r.applied.Add(op.GetHash(), record.Seq)
	r.updateMetrics()

	r.log.Debug(
		"operation applied",
		"seq", record.Seq,
		"hash", op.GetHash(),
		"type", op.B.Type,
		"source", op.B.Source,
	)

	return
}

func (r *BallotRunner) reload() {
	state, err := r.journal.Replay()
	if err != nil {
		r.log.Crit("failed to reload ballot", "error", err)
		return
	}

	r.state = state
}

func (r *BallotRunner) checkApplied(hash string) error {
	if r.applied.Contains(hash) {
		return errors.OperationAlreadyProcessed.Clone().SetData("hash", hash)
	}

	found, err := r.journal.HasOperation(hash)
	if err != nil {
		return err
	} else if found {
		return errors.OperationAlreadyProcessed.Clone().SetData("hash", hash)
	}

	return nil
}

func (r *BallotRunner) updateMetrics() {
	metrics.Ballot.SetRecords(r.journal.LastSeq())
	metrics.Ballot.SetVoters(r.state.VotersCount())
	for i, p := range r.state.Proposals() {
		metrics.Ballot.SetVoteCount(i, p.VoteCount)
	}
}

// triggerEvents is called without the lock, so observers can read the
// runner; the events lock must be held.
func (r *BallotRunner) triggerEvents(record journal.Record, winner Winner) {
	var (
		t    = observer.OperationObserver.Trigger
		cond = observer.NewEvent
		op   = record.Operation
	)

	t(cond(observer.ResourceOperation, observer.ConditionAll, "").String(), &record)
	t(cond(observer.ResourceOperation, observer.ConditionSource, op.B.Source).String(), &record)
	t(cond(observer.ResourceOperation, observer.ConditionType, string(op.B.Type)).String(), &record)
	t(cond(observer.ResourceOperation, observer.ConditionOpHash, op.GetHash()).String(), &record)
	if len(op.B.Target) > 0 {
		t(cond(observer.ResourceOperation, observer.ConditionTarget, op.B.Target).String(), &record)
	}

	t(cond(observer.ResourceWinner, observer.ConditionAll, "").String(), &winner)
}

func (r *BallotRunner) winner() Winner {
	index := r.state.WinningProposal()
	p, _ := r.state.Proposal(index)

	return Winner{Index: index, Name: p.Name.String(), VoteCount: p.VoteCount}
}

func (r *BallotRunner) Info() Info {
	r.RLock()
	defer r.RUnlock()

	genesis := r.journal.Genesis()
	return Info{
		Chairperson: r.state.Chairperson(),
		NetworkID:   genesis.NetworkID,
		Created:     genesis.Created,
		Proposals:   len(r.state.Proposals()),
		Voters:      r.state.VotersCount(),
		Records:     r.journal.LastSeq(),
		Winner:      r.winner(),
	}
}

func (r *BallotRunner) Winner() Winner {
	r.RLock()
	defer r.RUnlock()

	return r.winner()
}

func (r *BallotRunner) Proposals() []ballot.Proposal {
	r.RLock()
	defer r.RUnlock()

	return r.state.Proposals()
}

func (r *BallotRunner) Proposal(index uint64) (ballot.Proposal, error) {
	r.RLock()
	defer r.RUnlock()

	return r.state.Proposal(index)
}

func (r *BallotRunner) Voter(address string) (ballot.Voter, bool) {
	r.RLock()
	defer r.RUnlock()

	return r.state.Voter(address)
}

func (r *BallotRunner) Records(cursor, limit uint64, reverse bool) ([]journal.Record, error) {
	r.RLock()
	defer r.RUnlock()

	return r.journal.Records(cursor, limit, reverse)
}

func (r *BallotRunner) Record(seq uint64) (journal.Record, error) {
	r.RLock()
	defer r.RUnlock()

	return r.journal.Get(seq)
}
