package storage

import (
	"context"
	"errors"

	"github.com/annel0/battleship3d/internal/board"
	"github.com/google/uuid"
)

// ErrNotFound возвращается при удалении отсутствующего поля
var ErrNotFound = errors.New("storage: board not found")

// DefaultKeyPrefix: префикс ключей снимков в Badger и Redis
const DefaultKeyPrefix = "battleship:board:"

// BoardRepo определяет интерфейс для сохранения и загрузки снимков полей.
type BoardRepo interface {
	// Save сохраняет снимок, перезаписывая предыдущий с тем же BoardID.
	Save(ctx context.Context, snap board.Snapshot) error

	// Load загружает снимок.
	// Возвращает false без ошибки, если поле не сохранялось.
	Load(ctx context.Context, id uuid.UUID) (board.Snapshot, bool, error)

	// Delete удаляет снимок; ErrNotFound, если его нет.
	Delete(ctx context.Context, id uuid.UUID) error

	// List возвращает идентификаторы всех сохранённых полей.
	List(ctx context.Context) ([]uuid.UUID, error)

	Close() error
}

func boardKey(prefix string, id uuid.UUID) string {
	return prefix + id.String()
}

func validate(snap board.Snapshot) error {
	if snap.BoardID == uuid.Nil {
		return errors.New("storage: snapshot without board id")
	}
	return nil
}
