package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/annel0/battleship3d/internal/geometry"
	"github.com/annel0/battleship3d/internal/vec"
)

var (
	// ErrInvalidArgument: некорректный ввод: размер < 1, неизвестный тег, отсутствующий владелец
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState: попадание в уже уничтоженный корабль
	ErrInvalidState = errors.New("invalid state")
	// ErrOutOfBounds: след корабля выходит за пределы поля
	ErrOutOfBounds = errors.New("placement out of bounds")
	// ErrOverlap: след корабля пересекается с уже размещённым кораблём
	ErrOverlap = errors.New("placement overlaps another ship")
	// ErrFleetFull: владелец уже разместил максимальное число кораблей
	ErrFleetFull = errors.New("fleet limit reached")
)

// Reason: причина отказа в размещении
type Reason uint8

const (
	ReasonOutOfBounds Reason = iota
	ReasonOverlap
)

func (r Reason) String() string {
	switch r {
	case ReasonOutOfBounds:
		return "OutOfBounds"
	case ReasonOverlap:
		return "Overlap"
	default:
		return "Unknown"
	}
}

// Conflict описывает одну ячейку, не прошедшую проверку
type Conflict struct {
	Projection geometry.Projection
	Cell       vec.Vec2
	Reason     Reason
	With       PlacementID // занявший ячейку корабль (только для ReasonOverlap)
}

// PlacementError: типизированный отказ в размещении.
// Reason равен OutOfBounds, если хотя бы одна ячейка вне поля, иначе Overlap.
type PlacementError struct {
	Reason    Reason
	Conflicts []Conflict
}

func (e *PlacementError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("%v%v:%v", c.Projection, c.Cell, c.Reason))
	}
	return fmt.Sprintf("placement rejected (%v): %s", e.Reason, strings.Join(parts, " "))
}

// Is позволяет проверять отказ через errors.Is(err, ErrOutOfBounds|ErrOverlap)
func (e *PlacementError) Is(target error) bool {
	switch target {
	case ErrOutOfBounds:
		return e.Reason == ReasonOutOfBounds
	case ErrOverlap:
		return e.Reason == ReasonOverlap
	default:
		return false
	}
}

// Has сообщает, встречается ли причина среди конфликтов
func (e *PlacementError) Has(r Reason) bool {
	for _, c := range e.Conflicts {
		if c.Reason == r {
			return true
		}
	}
	return false
}
