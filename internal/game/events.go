package game

import (
	"context"

	"github.com/annel0/battleship3d/internal/board"
	"github.com/annel0/battleship3d/internal/eventbus"
	"github.com/annel0/battleship3d/internal/geometry"
	"github.com/annel0/battleship3d/internal/vec"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Source: источник событий сервиса в конверте
const Source = "game"

// Типы событий
const (
	EventShipPlaced        = "ShipPlaced"
	EventPlacementRejected = "PlacementRejected"
	EventShotResolved      = "ShotResolved"
	EventShipSunk          = "ShipSunk"
)

// ShipPlacedPayload публикуется после успешного размещения
type ShipPlacedPayload struct {
	BoardID     uuid.UUID            `msgpack:"board_id"`
	Placement   board.PlacementID    `msgpack:"placement"`
	Origin      vec.Vec3             `msgpack:"origin"`
	Size        int                  `msgpack:"size"`
	Orientation geometry.Orientation `msgpack:"orientation"`
}

// PlacementRejectedPayload публикуется при отказе в размещении
type PlacementRejectedPayload struct {
	BoardID     uuid.UUID            `msgpack:"board_id"`
	Origin      vec.Vec3             `msgpack:"origin"`
	Size        int                  `msgpack:"size"`
	Orientation geometry.Orientation `msgpack:"orientation"`
	Result      string               `msgpack:"result"`
	Error       string               `msgpack:"error"`
}

// ShotResolvedPayload публикуется после каждого выстрела
type ShotResolvedPayload struct {
	BoardID  uuid.UUID       `msgpack:"board_id"`
	Tag      string          `msgpack:"tag"`
	A        int             `msgpack:"a"`
	B        int             `msgpack:"b"`
	Vertical bool            `msgpack:"vertical"`
	Hits     []board.ShipHit `msgpack:"hits"`
}

// ShipSunkPayload публикуется для каждого корабля, потопленного выстрелом
type ShipSunkPayload struct {
	BoardID   uuid.UUID         `msgpack:"board_id"`
	Placement board.PlacementID `msgpack:"placement"`
	Remaining int               `msgpack:"remaining"`
	Defeated  bool              `msgpack:"defeated"`
}

// DecodePayload разбирает полезную нагрузку события в v
func DecodePayload(ev *eventbus.Envelope, v interface{}) error {
	return msgpack.Unmarshal(ev.Payload, v)
}

// publish кодирует payload и отправляет событие; ошибки только логируются
func (s *Service) publish(ctx context.Context, eventType string, boardID uuid.UUID, priority int, payload interface{}) {
	data, err := msgpack.Marshal(payload)
	if err != nil {
		s.logger.Error("❌ Не удалось закодировать %s: %v", eventType, err)
		return
	}

	ev := eventbus.NewEnvelope(Source, eventType, data)
	ev.CorrelationID = boardID.String()
	ev.Priority = priority

	if s.bus != nil {
		err = s.bus.Publish(ctx, ev)
	} else {
		err = eventbus.Publish(ctx, ev)
	}
	if err != nil {
		s.logger.Warn("⚠️ Событие %s не опубликовано: %v", eventType, err)
	}
}
