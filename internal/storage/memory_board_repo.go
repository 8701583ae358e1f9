package storage

import (
	"context"
	"sync"

	"github.com/annel0/battleship3d/internal/board"
	"github.com/google/uuid"
)

// MemoryBoardRepo реализует BoardRepo в памяти.
// Снимки хранятся закодированными, чтобы загрузка возвращала независимую копию.
// ВНИМАНИЕ: данные теряются при перезапуске!
type MemoryBoardRepo struct {
	mu   sync.RWMutex
	data map[uuid.UUID][]byte
}

// NewMemoryBoardRepo создаёт пустой репозиторий в памяти
func NewMemoryBoardRepo() *MemoryBoardRepo {
	return &MemoryBoardRepo{data: make(map[uuid.UUID][]byte)}
}

func (r *MemoryBoardRepo) Save(ctx context.Context, snap board.Snapshot) error {
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

	r.mu.Lock()
	r.data[snap.BoardID] = data
	r.mu.Unlock()
	return nil
}

func (r *MemoryBoardRepo) Load(ctx context.Context, id uuid.UUID) (board.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return board.Snapshot{}, false, err
	}

	r.mu.RLock()
	data, ok := r.data[id]
	r.mu.RUnlock()
	if !ok {
		return board.Snapshot{}, false, nil
	}

	snap, err := DecodeSnapshot(data)
	if err != nil {
		return board.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (r *MemoryBoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MemoryBoardRepo) List(ctx context.Context) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.data))
	for id := range r.data {
		ids = append(ids, id)
	}
	return ids, nil
}

// Close ничего не делает
func (r *MemoryBoardRepo) Close() error { return nil }
