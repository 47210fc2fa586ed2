// Package journal keeps the applied operations of a ballot in storage, in
// the order they were applied, so the ballot state can be rebuilt by replay.
package journal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack"

	"boscoin.io/ballot/lib/ballot"
	"boscoin.io/ballot/lib/common"
	"boscoin.io/ballot/lib/errors"
	"boscoin.io/ballot/lib/operation"
	"boscoin.io/ballot/lib/storage"
)

const (
	RecordPrefix    string = "op-"
	OperationPrefix string = "hash-"
)

type Record struct {
	Seq       uint64              `json:"seq" msgpack:"seq"`
	Operation operation.Operation `json:"operation" msgpack:"operation"`
	Applied   string              `json:"applied" msgpack:"applied"`
}

func RecordKey(seq uint64) string {
	return fmt.Sprintf("%s%020d", RecordPrefix, seq)
}

func OperationKey(hash string) string {
	return OperationPrefix + hash
}

func (r Record) Serialize() ([]byte, error) {
	return msgpack.Marshal(r)
}

func NewRecordFromBytes(b []byte) (r Record, err error) {
	if err = msgpack.Unmarshal(b, &r); err != nil {
		err = errors.JournalCorrupted.Clone().SetData("error", err.Error())
		return
	}

	return
}

type Journal struct {
	st      *storage.LevelDBBackend
	genesis Genesis
	last    uint64
}

// Open loads the genesis and finds the last record.
func Open(st *storage.LevelDBBackend) (*Journal, error) {
	genesis, err := GetGenesis(st)
	if err != nil {
		return nil, err
	}

	j := &Journal{st: st, genesis: genesis}

	err = st.Walk(RecordPrefix, storage.NewDefaultListOptions(true, "", 1), func(key, value []byte) (bool, error) {
		seq, err := strconv.ParseUint(strings.TrimPrefix(string(key), RecordPrefix), 10, 64)
		if err != nil {
			return false, errors.JournalCorrupted.Clone().SetData("key", string(key))
		}
		j.last = seq
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	return j, nil
}

// Load opens the journal in st and rebuilds the ballot state by applying
// every record in order.
func Load(st *storage.LevelDBBackend) (*Journal, *ballot.BallotState, error) {
	j, err := Open(st)
	if err != nil {
		return nil, nil, err
	}

	state, err := j.Replay()
	if err != nil {
		return nil, nil, err
	}

	return j, state, nil
}

func (j *Journal) Genesis() Genesis {
	return j.genesis
}

func (j *Journal) LastSeq() uint64 {
	return j.last
}

func (j *Journal) Replay() (*ballot.BallotState, error) {
	state, err := j.genesis.NewState()
	if err != nil {
		return nil, err
	}

	var expected uint64 = 1
	err = j.st.Walk(RecordPrefix, nil, func(key, value []byte) (bool, error) {
		r, err := NewRecordFromBytes(value)
		if err != nil {
			return false, err
		}
		if r.Seq != expected {
			return false, errors.JournalCorrupted.Clone().SetData("seq", r.Seq)
		}
		if err := r.Operation.Apply(state); err != nil {
			return false, errors.JournalCorrupted.Clone().
				SetData("seq", r.Seq).
				SetData("error", err.Error())
		}
		expected++

		return true, nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("journal replayed", "records", expected-1)

	return state, nil
}

// Append writes op as the next record. The record and the operation hash
// index are written in one transaction.
func (j *Journal) Append(op operation.Operation) (r Record, err error) {
	r = Record{
		Seq:       j.last + 1,
		Operation: op,
		Applied:   common.NowISO8601(),
	}

	var encoded []byte
	if encoded, err = r.Serialize(); err != nil {
		return
	}

	var ts *storage.LevelDBBackend
	if ts, err = j.st.OpenTransaction(); err != nil {
		return
	}

	if err = ts.NewRaw(RecordKey(r.Seq), encoded); err != nil {
		ts.Discard()
		return
	}
	if err = ts.New(OperationKey(op.GetHash()), r.Seq); err != nil {
		ts.Discard()
		return
	}
	if err = ts.Commit(); err != nil {
		return
	}

	j.last = r.Seq

	return
}

// HasOperation checks the operation of hash was already journaled.
func (j *Journal) HasOperation(hash string) (bool, error) {
	return j.st.Has(OperationKey(hash))
}

func (j *Journal) Get(seq uint64) (Record, error) {
	b, err := j.st.GetRaw(RecordKey(seq))
	if err != nil {
		return Record{}, err
	}

	return NewRecordFromBytes(b)
}

// Records lists records after cursor; a zero cursor starts from the first
// record, or from the last one in reverse.
func (j *Journal) Records(cursor, limit uint64, reverse bool) (records []Record, err error) {
	var key string
	if cursor > 0 {
		key = RecordKey(cursor)
	}

	err = j.st.Walk(
		RecordPrefix,
		storage.NewDefaultListOptions(reverse, key, limit),
		func(key, value []byte) (bool, error) {
			r, err := NewRecordFromBytes(value)
			if err != nil {
				return false, err
			}
			records = append(records, r)
			return true, nil
		},
	)

	return
}
