package storage

import "os"

func CleanDB(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}

	os.RemoveAll(path)
}

// NewTestStorage returns memory leveldb for tests.
func NewTestStorage() *LevelDBBackend {
	config, _ := NewConfigFromString("memory://")
	st, err := NewStorage(config)
	if err != nil {
		panic(err)
	}

	return st
}
