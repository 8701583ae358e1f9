package main

import (
	"fmt"
	"os"

	"github.com/annel0/battleship3d/internal/geometry"
	"gopkg.in/yaml.v3"
)

// Shot: один выстрел сценария
type Shot struct {
	Target   int    `yaml:"target"` // индекс игрока, по чьему полю стреляют
	Tag      string `yaml:"tag"`
	A        int    `yaml:"a"`
	B        int    `yaml:"b"`
	Vertical bool   `yaml:"vertical"`
}

// Salvo: сценарий выстрелов, воспроизводимый по порядку
type Salvo struct {
	Shots []Shot `yaml:"shots"`
}

// LoadSalvo читает сценарий из YAML файла
func LoadSalvo(path string) (*Salvo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSalvo(data)
}

// ParseSalvo разбирает сценарий и проверяет теги проекций и цели
func ParseSalvo(data []byte) (*Salvo, error) {
	var s Salvo
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse salvo: %w", err)
	}
	for i, shot := range s.Shots {
		if _, err := geometry.ParseTag(shot.Tag); err != nil {
			return nil, fmt.Errorf("shots[%d]: %w", i, err)
		}
		if shot.Target != 0 && shot.Target != 1 {
			return nil, fmt.Errorf("shots[%d]: target %d must be 0 or 1", i, shot.Target)
		}
	}
	return &s, nil
}

// SweepSalvo прочёсывает оба поля вертикальными лучами сверху по каждому X,
// чередуя цели
func SweepSalvo(width int) *Salvo {
	s := &Salvo{Shots: make([]Shot, 0, 2*width)}
	for x := 0; x < width; x++ {
		for target := 0; target < 2; target++ {
			s.Shots = append(s.Shots, Shot{Target: target, Tag: "XZ", A: x, Vertical: true})
		}
	}
	return s
}
