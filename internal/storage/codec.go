package storage

import (
	"fmt"
	"sync"

	"github.com/annel0/battleship3d/internal/board"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// codecVersion: первый байт закодированного снимка
const codecVersion byte = 1

var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

// zstdCodec создаёт общие кодеры при первом обращении
func zstdCodec() (*zstd.Encoder, *zstd.Decoder, error) {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if codecErr != nil {
			codecErr = fmt.Errorf("create zstd encoder: %w", codecErr)
			return
		}
		decoder, codecErr = zstd.NewReader(nil)
		if codecErr != nil {
			codecErr = fmt.Errorf("create zstd decoder: %w", codecErr)
		}
	})
	return encoder, decoder, codecErr
}

// EncodeSnapshot сериализует снимок в msgpack и сжимает zstd
func EncodeSnapshot(snap board.Snapshot) ([]byte, error) {
	enc, _, err := zstdCodec()
	if err != nil {
		return nil, err
	}
	raw, err := msgpack.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	out := make([]byte, 1, len(raw)/2+1)
	out[0] = codecVersion
	return enc.EncodeAll(raw, out), nil
}

// DecodeSnapshot восстанавливает снимок, закодированный EncodeSnapshot
func DecodeSnapshot(data []byte) (board.Snapshot, error) {
	var snap board.Snapshot
	if len(data) == 0 || data[0] != codecVersion {
		return snap, fmt.Errorf("decode snapshot: unsupported format")
	}
	_, dec, err := zstdCodec()
	if err != nil {
		return snap, err
	}
	raw, err := dec.DecodeAll(data[1:], nil)
	if err != nil {
		return snap, fmt.Errorf("decompress snapshot: %w", err)
	}
	if err := msgpack.Unmarshal(raw, &snap); err != nil {
		return snap, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}
