package storage

import "context"

// RoomStorage keeps room snapshots so rooms survive a restart.
type RoomStorage interface {
	Put(ctx context.Context, room *RoomRecord) error
	GetAll(ctx context.Context) ([]*RoomRecord, error)
	Delete(ctx context.Context, id string) error
}
