package storage

import (
	"encoding/json"

	pkgerrors "github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	leveldbIterator "github.com/syndtr/goleveldb/leveldb/iterator"
	leveldbOpt "github.com/syndtr/goleveldb/leveldb/opt"
	leveldbStorage "github.com/syndtr/goleveldb/leveldb/storage"
	leveldbUtil "github.com/syndtr/goleveldb/leveldb/util"

	"boscoin.io/ballot/lib/common"
	"boscoin.io/ballot/lib/errors"
)

type LevelDBCore interface {
	Has([]byte, *leveldbOpt.ReadOptions) (bool, error)
	Get([]byte, *leveldbOpt.ReadOptions) ([]byte, error)
	NewIterator(*leveldbUtil.Range, *leveldbOpt.ReadOptions) leveldbIterator.Iterator
	Put([]byte, []byte, *leveldbOpt.WriteOptions) error
	Write(*leveldb.Batch, *leveldbOpt.WriteOptions) error
	Delete([]byte, *leveldbOpt.WriteOptions) error
}

type LevelDBBackend struct {
	DB *leveldb.DB

	Core LevelDBCore
}

func setLevelDBCoreError(err error) error {
	if err == nil {
		return nil
	}

	return errors.StorageCoreError.Clone().SetData("error", err.Error())
}

func (st *LevelDBBackend) Init(config *Config) (err error) {
	var db *leveldb.DB

	switch config.Scheme {
	case "file":
		if db, err = leveldb.OpenFile(config.Path, nil); err != nil {
			err = setLevelDBCoreError(pkgerrors.Wrapf(err, "failed to open %q", config.Path))
			return
		}
	case "memory":
		if db, err = leveldb.Open(leveldbStorage.NewMemStorage(), nil); err != nil {
			err = setLevelDBCoreError(err)
			return
		}
	default:
		err = setLevelDBCoreError(pkgerrors.Errorf("unsupported storage scheme, %q", config.Scheme))
		return
	}

	st.DB = db
	st.Core = db

	return
}

func NewStorage(config *Config) (*LevelDBBackend, error) {
	st := &LevelDBBackend{}
	if err := st.Init(config); err != nil {
		return nil, err
	}

	return st, nil
}

func (st *LevelDBBackend) Close() error {
	return st.DB.Close()
}

func (st *LevelDBBackend) IsTransaction() bool {
	_, ok := st.Core.(*leveldb.Transaction)
	return ok
}

// OpenTransaction returns new LevelDBBackend which writes into one leveldb
// transaction; `Commit()` or `Discard()` must be called.
func (st *LevelDBBackend) OpenTransaction() (*LevelDBBackend, error) {
	if st.IsTransaction() {
		return nil, setLevelDBCoreError(pkgerrors.New("this is already *leveldb.Transaction"))
	}

	transaction, err := st.DB.OpenTransaction()
	if err != nil {
		return nil, setLevelDBCoreError(err)
	}

	return &LevelDBBackend{
		DB:   st.DB,
		Core: transaction,
	}, nil
}

func (st *LevelDBBackend) Discard() error {
	ts, ok := st.Core.(*leveldb.Transaction)
	if !ok {
		return setLevelDBCoreError(pkgerrors.New("this is not *leveldb.Transaction"))
	}

	ts.Discard()
	return nil
}

func (st *LevelDBBackend) Commit() error {
	ts, ok := st.Core.(*leveldb.Transaction)
	if !ok {
		return setLevelDBCoreError(pkgerrors.New("this is not *leveldb.Transaction"))
	}

	return setLevelDBCoreError(ts.Commit())
}

func (st *LevelDBBackend) makeKey(key string) []byte {
	return []byte(key)
}

func (st *LevelDBBackend) Has(k string) (bool, error) {
	ok, err := st.Core.Has(st.makeKey(k), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return false, nil
		}
		return false, setLevelDBCoreError(err)
	}

	return ok, nil
}

func (st *LevelDBBackend) GetRaw(k string) (b []byte, err error) {
	b, err = st.Core.Get(st.makeKey(k), nil)
	if err == leveldb.ErrNotFound {
		err = errors.StorageRecordDoesNotExist.Clone().SetData("key", k)
		return
	}
	err = setLevelDBCoreError(err)

	return
}

// Get decodes the json value of k into i.
func (st *LevelDBBackend) Get(k string, i interface{}) (err error) {
	var b []byte
	if b, err = st.GetRaw(k); err != nil {
		return
	}

	if err = json.Unmarshal(b, i); err != nil {
		err = setLevelDBCoreError(pkgerrors.Wrapf(err, "failed to decode %q", k))
		return
	}

	return
}

func encodeValue(v interface{}) (encoded []byte, err error) {
	if serializable, ok := v.(common.Serializable); ok {
		encoded, err = serializable.Serialize()
	} else {
		encoded, err = common.EncodeJSONValue(v)
	}
	if err != nil {
		err = setLevelDBCoreError(err)
	}

	return
}

// New stores v under k; k must not exist.
func (st *LevelDBBackend) New(k string, v interface{}) (err error) {
	var encoded []byte
	if encoded, err = encodeValue(v); err != nil {
		return
	}

	return st.NewRaw(k, encoded)
}

// NewRaw stores already encoded value under k; k must not exist.
func (st *LevelDBBackend) NewRaw(k string, encoded []byte) (err error) {
	var exists bool
	if exists, err = st.Has(k); err != nil {
		return
	} else if exists {
		err = errors.StorageRecordAlreadyExists.Clone().SetData("key", k)
		return
	}

	err = setLevelDBCoreError(st.Core.Put(st.makeKey(k), encoded, nil))

	return
}

// Set overwrites the existing value of k.
func (st *LevelDBBackend) Set(k string, v interface{}) (err error) {
	var encoded []byte
	if encoded, err = encodeValue(v); err != nil {
		return
	}

	var exists bool
	if exists, err = st.Has(k); err != nil {
		return
	} else if !exists {
		err = errors.StorageRecordDoesNotExist.Clone().SetData("key", k)
		return
	}

	err = setLevelDBCoreError(st.Core.Put(st.makeKey(k), encoded, nil))

	return
}

func (st *LevelDBBackend) Remove(k string) (err error) {
	var exists bool
	if exists, err = st.Has(k); err != nil {
		return
	} else if !exists {
		err = errors.StorageRecordDoesNotExist.Clone().SetData("key", k)
		return
	}

	err = setLevelDBCoreError(st.Core.Delete(st.makeKey(k), nil))

	return
}

// WalkFunc is called for each record; returning false stops the walk.
type WalkFunc func(key, value []byte) (bool, error)

// Walk iterates the records under prefix in key order. The cursor of option
// is exclusive; a zero limit means no limit.
func (st *LevelDBBackend) Walk(prefix string, option ListOptions, walkFunc WalkFunc) (err error) {
	if option == nil {
		option = NewDefaultListOptions(false, "", 0)
	}

	var dbRange *leveldbUtil.Range
	if len(prefix) > 0 {
		dbRange = leveldbUtil.BytesPrefix(st.makeKey(prefix))
	}

	iter := st.Core.NewIterator(dbRange, nil)
	defer iter.Release()

	cursor := st.makeKey(option.Cursor())

	var ok bool
	var next func() bool
	if option.Reverse() {
		next = iter.Prev
		if len(cursor) < 1 {
			ok = iter.Last()
		} else if iter.Seek(cursor) {
			ok = iter.Prev()
		} else {
			ok = iter.Last()
		}
	} else {
		next = iter.Next
		if len(cursor) < 1 {
			ok = iter.First()
		} else if ok = iter.Seek(cursor); ok && string(iter.Key()) == string(cursor) {
			ok = iter.Next()
		}
	}

	var n uint64
	for ; ok; ok = next() {
		if option.Limit() > 0 && n >= option.Limit() {
			break
		}

		var goOn bool
		if goOn, err = walkFunc(iter.Key(), iter.Value()); err != nil {
			return
		} else if !goOn {
			break
		}
		n++
	}

	return setLevelDBCoreError(iter.Error())
}
