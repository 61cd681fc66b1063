package lockout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/dmitrijs2005/ventas/internal/common"
	"github.com/dmitrijs2005/ventas/internal/filex"
	"github.com/dmitrijs2005/ventas/internal/server/models"
)

var lockoutBucket = []byte("lockouts")

// BoltStore keeps lockout state in a local bolt file. Bolt serializes
// writers, which makes Increment atomic for a single process.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the bolt file at path. Bolt holds an
// exclusive file lock, so a second process gets common.ErrLockoutStoreInUse
// until the first one closes the store.
func OpenBoltStore(path string) (*BoltStore, error) {
	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if errors.Is(err, bolt.ErrTimeout) {
		return nil, fmt.Errorf("open bolt %s: %w", path, common.ErrLockoutStoreInUse)
	}
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(lockoutBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func readState(b *bolt.Bucket, seller string) (models.LockoutState, error) {
	st := models.LockoutState{SalespersonID: seller}
	raw := b.Get([]byte(seller))
	if raw == nil {
		return st, nil
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return models.LockoutState{}, fmt.Errorf("decode lockout: %w", err)
	}
	return st, nil
}

func writeState(b *bolt.Bucket, st models.LockoutState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return b.Put([]byte(st.SalespersonID), raw)
}

func (s *BoltStore) Increment(ctx context.Context, seller string, threshold int, at time.Time) (models.LockoutState, error) {
	if err := ctx.Err(); err != nil {
		return models.LockoutState{}, err
	}
	var out models.LockoutState
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(lockoutBucket)
		st, err := readState(b, seller)
		if err != nil {
			return err
		}
		st.FailedAttempts++
		st.IsBlocked = st.FailedAttempts >= threshold
		last := at.UTC()
		st.LastFailureAt = &last
		out = st
		return writeState(b, st)
	})
	if err != nil {
		return models.LockoutState{}, fmt.Errorf("bolt error: %w", err)
	}
	return out, nil
}

func (s *BoltStore) Reset(ctx context.Context, seller string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(lockoutBucket)
		st, err := readState(b, seller)
		if err != nil {
			return err
		}
		if st.IsBlocked || st.FailedAttempts == 0 {
			return nil
		}
		st.FailedAttempts = 0
		return writeState(b, st)
	})
	if err != nil {
		return fmt.Errorf("bolt error: %w", err)
	}
	return nil
}

func (s *BoltStore) Get(ctx context.Context, seller string) (models.LockoutState, error) {
	if err := ctx.Err(); err != nil {
		return models.LockoutState{}, err
	}
	var out models.LockoutState
	err := s.db.View(func(tx *bolt.Tx) error {
		st, err := readState(tx.Bucket(lockoutBucket), seller)
		out = st
		return err
	})
	if err != nil {
		return models.LockoutState{}, fmt.Errorf("bolt error: %w", err)
	}
	return out, nil
}

func (s *BoltStore) Clear(ctx context.Context, seller string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(lockoutBucket).Delete([]byte(seller))
	})
	if err != nil {
		return fmt.Errorf("bolt error: %w", err)
	}
	return nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
