package checkpoint

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/zhengshuai-xiao/XferS/internal"
)

// BadgerStore is an embedded checkpoint store for single-host use. Writes
// are synced before Save returns.
type BadgerStore struct {
	db  *badger.DB
	dir string
}

func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil).WithSyncWrites(true)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, unavailable("open", dir, err)
	}
	logger.Infof("Opened badger checkpoint store at %s", dir)
	return &BadgerStore{db: db, dir: dir}, nil
}

func (s *BadgerStore) Name() string { return "badger" }

func (s *BadgerStore) Save(ctx context.Context, key string, offset uint64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), internal.EncodeOffset(offset))
	})
	if err != nil {
		return unavailable("save", key, err)
	}
	return nil
}

func (s *BadgerStore) Load(ctx context.Context, key string) (uint64, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("load", key, err)
	}
	offset, ok := internal.DecodeOffset(val)
	if !ok {
		logger.Warnf("checkpoint %s holds %d bytes instead of an offset, starting from 0", key, len(val))
		return 0, nil
	}
	return offset, nil
}

func (s *BadgerStore) Clear(ctx context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return unavailable("clear", key, err)
	}
	return nil
}

func (s *BadgerStore) Seen(ctx context.Context, fingerprint string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(dedupKey(fingerprint)))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, unavailable("exists", dedupKey(fingerprint), err)
	}
	return true, nil
}

func (s *BadgerStore) Mark(ctx context.Context, fingerprint string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(dedupKey(fingerprint)), []byte{1})
	})
	if err != nil {
		return unavailable("mark", dedupKey(fingerprint), err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger store %s: %w", s.dir, err)
	}
	return nil
}
