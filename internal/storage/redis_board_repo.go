package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/battleship3d/internal/board"
	"github.com/annel0/battleship3d/internal/logging"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        // Адрес Redis сервера
	Password  string        // Пароль (пустой если не требуется)
	DB        int           // Номер базы данных
	KeyPrefix string        // Префикс для ключей
	TTL       time.Duration // Время жизни снимков; 0: без истечения
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: DefaultKeyPrefix,
	}
}

// RedisBoardRepo хранит снимки полей в Redis
type RedisBoardRepo struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisBoardRepo подключается к Redis и проверяет соединение
func NewRedisBoardRepo(ctx context.Context, config *RedisConfig) (*RedisBoardRepo, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}
	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetStorageLogger().Info("🔴 Connected to Redis at %s", config.Addr)
	return &RedisBoardRepo{client: client, keyPrefix: prefix, ttl: config.TTL}, nil
}

func (r *RedisBoardRepo) Save(ctx context.Context, snap board.Snapshot) error {
	if err := validate(snap); err != nil {
		return err
	}

	data, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, boardKey(r.keyPrefix, snap.BoardID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save board: %w", err)
	}
	return nil
}

func (r *RedisBoardRepo) Load(ctx context.Context, id uuid.UUID) (board.Snapshot, bool, error) {
	data, err := r.client.Get(ctx, boardKey(r.keyPrefix, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return board.Snapshot{}, false, nil
	}
	if err != nil {
		return board.Snapshot{}, false, fmt.Errorf("failed to get board: %w", err)
	}

	snap, err := DecodeSnapshot(data)
	if err != nil {
		return board.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (r *RedisBoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.client.Del(ctx, boardKey(r.keyPrefix, id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisBoardRepo) List(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	iter := r.client.Scan(ctx, 0, r.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, err := uuid.Parse(key[len(r.keyPrefix):])
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan boards: %w", err)
	}
	return ids, nil
}

// Close закрывает соединение с Redis
func (r *RedisBoardRepo) Close() error {
	return r.client.Close()
}
