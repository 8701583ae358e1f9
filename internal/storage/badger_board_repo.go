package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/battleship3d/internal/board"
	"github.com/annel0/battleship3d/internal/logging"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
)

// BadgerBoardRepo хранит снимки полей в BadgerDB
type BadgerBoardRepo struct {
	db     *badger.DB
	prefix string
}

// NewBadgerBoardRepo открывает (или создаёт) базу в каталоге path
func NewBadgerBoardRepo(path string) (*BadgerBoardRepo, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	logging.GetStorageLogger().Info("🦡 BadgerDB открыта: %s", path)
	return &BadgerBoardRepo{db: db, prefix: DefaultKeyPrefix}, nil
}

func (r *BadgerBoardRepo) Save(ctx context.Context, snap board.Snapshot) error {
	if err := validate(snap); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(boardKey(r.prefix, snap.BoardID)), data)
	})
}

func (r *BadgerBoardRepo) Load(ctx context.Context, id uuid.UUID) (board.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return board.Snapshot{}, false, err
	}

	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(boardKey(r.prefix, id)))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return board.Snapshot{}, false, nil
	}
	if err != nil {
		return board.Snapshot{}, false, fmt.Errorf("load board %s: %w", id, err)
	}

	snap, err := DecodeSnapshot(data)
	if err != nil {
		return board.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (r *BadgerBoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(boardKey(r.prefix, id))
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

func (r *BadgerBoardRepo) List(ctx context.Context) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(r.prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			id, err := uuid.Parse(key[len(r.prefix):])
			if err != nil {
				logging.GetStorageLogger().Warn("пропущен ключ %q: %v", key, err)
				continue
			}
			ids = append(ids, id)
		}
		return nil
	})
	return ids, err
}

// Close закрывает базу
func (r *BadgerBoardRepo) Close() error {
	return r.db.Close()
}
