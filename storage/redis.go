package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alex-pricope/catch-the-mole/logging"
	"github.com/redis/go-redis/v9"
)

const (
	roomKeyPrefix = "room:"
	roomIndexKey  = "rooms"
)

type RedisRoomStorage struct {
	Client *redis.Client
}

func NewRedisRoomStorage(ctx context.Context, client *redis.Client) (*RedisRoomStorage, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisRoomStorage{Client: client}, nil
}

func roomKey(id string) string {
	return roomKeyPrefix + id
}

func (s *RedisRoomStorage) Put(ctx context.Context, room *RoomRecord) error {
	data, err := json.Marshal(room)
	if err != nil {
		logging.Log.Errorf("ROOM: failed to marshal room %s: %v", room.ID, err)
		return err
	}

	pipe := s.Client.TxPipeline()
	pipe.Set(ctx, roomKey(room.ID), data, 0)
	pipe.SAdd(ctx, roomIndexKey, room.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		logging.Log.Errorf("ROOM: failed to save room %s: %v", room.ID, err)
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

func (s *RedisRoomStorage) GetAll(ctx context.Context) ([]*RoomRecord, error) {
	ids, err := s.Client.SMembers(ctx, roomIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list room ids: %w", err)
	}
	rooms := make([]*RoomRecord, 0, len(ids))
	if len(ids) == 0 {
		return rooms, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, roomKey(id))
	}
	values, err := s.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// index entry without a value, left behind by an interrupted delete
			logging.Log.Warnf("ROOM: index lists %s but no value is stored", ids[i])
			continue
		}
		var room RoomRecord
		if err := json.Unmarshal([]byte(raw), &room); err != nil {
			logging.Log.Errorf("ROOM: failed to unmarshal room %s: %v", ids[i], err)
			return nil, fmt.Errorf("failed to unmarshal room %s: %w", ids[i], err)
		}
		rooms = append(rooms, &room)
	}
	return rooms, nil
}

func (s *RedisRoomStorage) Delete(ctx context.Context, id string) error {
	pipe := s.Client.TxPipeline()
	pipe.Del(ctx, roomKey(id))
	pipe.SRem(ctx, roomIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		logging.Log.Errorf("ROOM: failed to delete room %s: %v", id, err)
		return fmt.Errorf("failed to delete room: %w", err)
	}
	logging.Log.Infof("ROOM: deleted room %s", id)
	return nil
}
