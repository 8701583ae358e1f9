package board

import "github.com/google/uuid"

// Owner: игрок, которому принадлежит поле и флот на нём
type Owner struct {
	ID       uuid.UUID `msgpack:"id"`
	Name     string    `msgpack:"name"`
	MaxShips int       `msgpack:"max_ships"` // 0: без ограничения
}

// NewOwner создаёт владельца с новым UUID
func NewOwner(name string, maxShips int) *Owner {
	return &Owner{
		ID:       uuid.New(),
		Name:     name,
		MaxShips: maxShips,
	}
}
