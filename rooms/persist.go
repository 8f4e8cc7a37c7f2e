package rooms

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/alex-pricope/catch-the-mole/logging"
	"github.com/alex-pricope/catch-the-mole/storage"
)

type persistJob struct {
	record   *storage.RoomRecord
	removeID string
}

// Persister mirrors registry changes into a RoomStorage. It is a registry Observer:
// snapshots are queued and written by a single goroutine, so no storage I/O ever
// happens while a room is locked. Versions older than the last one written are skipped.
type Persister struct {
	store   storage.RoomStorage
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan persistJob
	done   chan struct{}

	written map[string]int64
}

func NewPersister(store storage.RoomStorage, buffer int, timeout time.Duration) *Persister {
	if buffer < 1 {
		buffer = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Persister{
		store:   store,
		timeout: timeout,
		queue:   make(chan persistJob, buffer),
		done:    make(chan struct{}),
		written: make(map[string]int64),
	}
}

func (p *Persister) RoomUpdated(room *Room) {
	p.enqueue(persistJob{record: ToRecord(room)})
}

func (p *Persister) RoomRemoved(id string) {
	p.enqueue(persistJob{removeID: id})
}

func (p *Persister) enqueue(job persistJob) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		logging.Log.Warnf("PERSIST: dropped change after shutdown")
		return
	}
	p.queue <- job
}

// Run drains the queue until Close is called. It must run in its own goroutine.
func (p *Persister) Run() {
	defer close(p.done)
	for job := range p.queue {
		p.apply(job)
	}
}

// Close stops accepting changes, waits for queued ones to be written and returns.
func (p *Persister) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	<-p.done
}

func (p *Persister) apply(job persistJob) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if job.removeID != "" {
		// tombstone so late snapshots of a removed room are never written back
		p.written[job.removeID] = math.MaxInt64
		if err := p.store.Delete(ctx, job.removeID); err != nil {
			logging.Log.Errorf("PERSIST: failed to delete room %s: %v", job.removeID, err)
		}
		return
	}

	rec := job.record
	if rec.Version <= p.written[rec.ID] {
		return
	}
	err := p.store.Put(ctx, rec)
	switch {
	case err == nil, errors.Is(err, storage.ErrStaleRecord):
		p.written[rec.ID] = rec.Version
	default:
		logging.Log.Errorf("PERSIST: failed to write room %s version %d: %v", rec.ID, rec.Version, err)
	}
}

// Restore loads every stored room into the registry and returns how many were accepted.
func Restore(ctx context.Context, store storage.RoomStorage, registry *Registry) (int, error) {
	records, err := store.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	rooms := make([]*Room, 0, len(records))
	for _, rec := range records {
		rooms = append(rooms, FromRecord(rec))
	}
	n, err := registry.Restore(rooms...)
	if err != nil {
		logging.Log.Warnf("PERSIST: some rooms could not be restored: %v", err)
	}
	logging.Log.Infof("PERSIST: restored %d of %d rooms", n, len(records))
	return n, nil
}

func ToRecord(room *Room) *storage.RoomRecord {
	rec := &storage.RoomRecord{
		ID:                   room.ID,
		Password:             room.Password,
		MatchID:              room.MatchID,
		Status:               string(room.Status),
		MaxVotes:             room.MaxVotes,
		VotesPerUser:         room.VotesPerUser,
		CreatorUsername:      room.CreatorUsername,
		CreatorFingerprint:   room.CreatorFingerprint,
		Heroes:               make([]storage.HeroRecord, 0, len(room.Heroes)),
		ShowOnlyWinnerVotes:  room.ShowOnlyWinnerVotes,
		VotedUsers:           make(map[string]storage.VoterRecord, len(room.VotedUsers)),
		PlayerOrder:          append([]int(nil), room.PlayerOrder...),
		OrderGenerationCount: room.OrderGenerationCount,
		CreatedAt:            room.CreatedAt,
		UpdatedAt:            room.UpdatedAt,
		Version:              room.Version,
	}
	for _, h := range room.Heroes {
		rec.Heroes = append(rec.Heroes, storage.HeroRecord{
			PlayerSlot: h.PlayerSlot,
			HeroID:     h.HeroID,
			HeroName:   h.HeroName,
			Nickname:   h.Nickname,
		})
	}
	for fp, v := range room.VotedUsers {
		rec.VotedUsers[fp] = storage.VoterRecord{
			Started:      v.Started,
			VotedPlayers: append([]int{}, v.VotedPlayers...),
			Username:     v.Username,
		}
	}
	return rec
}

// FromRecord rebuilds a room; the tally is filled in by Registry.Restore.
func FromRecord(rec *storage.RoomRecord) *Room {
	room := &Room{
		ID:                   rec.ID,
		Password:             rec.Password,
		MatchID:              rec.MatchID,
		Status:               Status(rec.Status),
		MaxVotes:             rec.MaxVotes,
		VotesPerUser:         rec.VotesPerUser,
		CreatorUsername:      rec.CreatorUsername,
		CreatorFingerprint:   rec.CreatorFingerprint,
		Heroes:               make([]Candidate, 0, len(rec.Heroes)),
		ShowOnlyWinnerVotes:  rec.ShowOnlyWinnerVotes,
		VotedUsers:           make(map[string]*Voter, len(rec.VotedUsers)),
		PlayerOrder:          append([]int(nil), rec.PlayerOrder...),
		OrderGenerationCount: rec.OrderGenerationCount,
		CreatedAt:            rec.CreatedAt,
		UpdatedAt:            rec.UpdatedAt,
		Version:              rec.Version,
	}
	if room.Status != StatusFinished {
		room.Status = StatusInit
	}
	for _, h := range rec.Heroes {
		room.Heroes = append(room.Heroes, Candidate{
			PlayerSlot: h.PlayerSlot,
			HeroID:     h.HeroID,
			HeroName:   h.HeroName,
			Nickname:   h.Nickname,
		})
	}
	for fp, v := range rec.VotedUsers {
		room.VotedUsers[fp] = &Voter{
			Started:      v.Started,
			VotedPlayers: append([]int{}, v.VotedPlayers...),
			Username:     v.Username,
		}
	}
	return room
}
