package rooms

import (
	"errors"
	"fmt"
	"sync"

	"github.com/alex-pricope/catch-the-mole/clock"
	"github.com/alex-pricope/catch-the-mole/logging"
)

// Observer is told about every committed change. Calls happen outside any room lock and
// may arrive out of order for the same room; Room.Version orders them.
type Observer interface {
	RoomUpdated(room *Room)
	RoomRemoved(id string)
}

type entry struct {
	mu      sync.Mutex
	room    *Room
	removed bool
}

// Registry is the process-wide store of rooms. The map lock only guards membership;
// each room has its own lock, so mutations of one room are serialised while different
// rooms proceed in parallel.
//
// Lock order is entry.mu before Registry.mu.
type Registry struct {
	mu         sync.RWMutex
	rooms      map[string]*entry
	byPassword map[string]string

	clock clock.Clock

	obsMu     sync.RWMutex
	observers []Observer
}

func NewRegistry(c clock.Clock) *Registry {
	if c == nil {
		c = &clock.DefaultClock{}
	}
	return &Registry{
		rooms:      make(map[string]*entry),
		byPassword: make(map[string]string),
		clock:      c,
	}
}

func (r *Registry) Observe(o Observer) {
	r.obsMu.Lock()
	r.observers = append(r.observers, o)
	r.obsMu.Unlock()
}

// Create inserts a new room. Password and id are checked and reserved in the same
// critical section, so of two racing creations with one password exactly one wins.
func (r *Registry) Create(p CreateParams) (*Room, error) {
	room, err := NewRoom(p, r.clock.Now())
	if err != nil {
		return nil, err
	}
	snapshot := room.Clone()

	r.mu.Lock()
	if _, taken := r.byPassword[room.Password]; taken {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: password %q", ErrDuplicateKey, room.Password)
	}
	if _, taken := r.rooms[room.ID]; taken {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: id %q", ErrDuplicateKey, room.ID)
	}
	r.rooms[room.ID] = &entry{room: room}
	r.byPassword[room.Password] = room.ID
	r.mu.Unlock()

	logging.Log.Infof("ROOMS: created room %s for match %d (max votes %d, votes per user %d)",
		room.ID, room.MatchID, room.MaxVotes, room.VotesPerUser)
	r.notifyUpdated(snapshot)
	return snapshot, nil
}

func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[id]
	return ok
}

func (r *Registry) ExistsByPassword(password string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byPassword[password]
	return ok
}

// IDByPassword resolves the public password to the internal room id.
func (r *Registry) IDByPassword(password string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPassword[password]
	if !ok {
		return "", ErrRoomNotFound
	}
	return id, nil
}

func (r *Registry) Get(id string) (*Room, error) {
	var snapshot *Room
	err := r.inspect(id, func(room *Room) {
		snapshot = room.Clone()
	})
	return snapshot, err
}

func (r *Registry) GetByPassword(password string) (*Room, error) {
	id, err := r.IDByPassword(password)
	if err != nil {
		return nil, err
	}
	return r.Get(id)
}

// Mutate runs fn with exclusive access to one room. When fn fails it must have left the
// room untouched; when it succeeds the version is bumped and the new state is returned.
func (r *Registry) Mutate(id string, fn func(room *Room) error) (*Room, error) {
	e := r.lookup(id)
	if e == nil {
		return nil, ErrRoomNotFound
	}

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	if err := fn(e.room); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.room.Version++
	e.room.UpdatedAt = r.clock.Now()
	snapshot := e.room.Clone()
	e.mu.Unlock()

	r.notifyUpdated(snapshot)
	return snapshot, nil
}

// inspect gives fn read access to the live room under its lock. fn must not keep references.
func (r *Registry) inspect(id string, fn func(room *Room)) error {
	e := r.lookup(id)
	if e == nil {
		return ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return ErrRoomNotFound
	}
	fn(e.room)
	return nil
}

func (r *Registry) Remove(id string) error {
	removed, err := r.RemoveIf(id, func(*Room) bool { return true })
	if err != nil {
		return err
	}
	if !removed {
		return ErrRoomNotFound
	}
	return nil
}

// RemoveIf drops the room when pred holds, deciding under the room lock so a concurrent
// mutation cannot slip in between the check and the removal.
func (r *Registry) RemoveIf(id string, pred func(room *Room) bool) (bool, error) {
	e := r.lookup(id)
	if e == nil {
		return false, ErrRoomNotFound
	}

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return false, ErrRoomNotFound
	}
	if !pred(e.room) {
		e.mu.Unlock()
		return false, nil
	}
	e.removed = true

	r.mu.Lock()
	if current, ok := r.rooms[id]; ok && current == e {
		delete(r.rooms, id)
	}
	if owner, ok := r.byPassword[e.room.Password]; ok && owner == id {
		delete(r.byPassword, e.room.Password)
	}
	r.mu.Unlock()
	e.mu.Unlock()

	logging.Log.Infof("ROOMS: removed room %s", id)
	r.notifyRemoved(id)
	return true, nil
}

// List returns copies of all rooms.
func (r *Registry) List() []*Room {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.rooms))
	for _, e := range r.rooms {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]*Room, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed {
			out = append(out, e.room.Clone())
		}
		e.mu.Unlock()
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Restore loads previously persisted rooms without notifying observers. The tally is
// recomputed from the voter records. Rooms that fail validation or collide are skipped.
func (r *Registry) Restore(rooms ...*Room) (int, error) {
	var errs []error
	restored := 0

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range rooms {
		if err := validateRestored(room); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, taken := r.byPassword[room.Password]; taken {
			errs = append(errs, fmt.Errorf("%w: password %q", ErrDuplicateKey, room.Password))
			continue
		}
		if _, taken := r.rooms[room.ID]; taken {
			errs = append(errs, fmt.Errorf("%w: id %q", ErrDuplicateKey, room.ID))
			continue
		}
		c := room.Clone()
		c.recount()
		r.rooms[c.ID] = &entry{room: c}
		r.byPassword[c.Password] = c.ID
		restored++
	}
	return restored, errors.Join(errs...)
}

func validateRestored(room *Room) error {
	if room == nil {
		return fmt.Errorf("%w: nil room", ErrInvalidRoom)
	}
	p := CreateParams{
		ID:                 room.ID,
		Password:           room.Password,
		MaxVotes:           room.MaxVotes,
		VotesPerUser:       room.VotesPerUser,
		CreatorUsername:    room.CreatorUsername,
		CreatorFingerprint: room.CreatorFingerprint,
		Heroes:             room.Heroes,
	}
	if err := p.validate(); err != nil {
		return fmt.Errorf("room %s: %w", room.ID, err)
	}
	for fp, v := range room.VotedUsers {
		if v == nil || v.VoteCount() > room.VotesPerUser {
			return fmt.Errorf("%w: room %s has a broken record for %s", ErrInvalidRoom, room.ID, fp)
		}
	}
	return nil
}

func (r *Registry) lookup(id string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[id]
}

func (r *Registry) snapshotObservers() []Observer {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	return append([]Observer(nil), r.observers...)
}

func (r *Registry) notifyUpdated(room *Room) {
	for _, o := range r.snapshotObservers() {
		o.RoomUpdated(room.Clone())
	}
}

func (r *Registry) notifyRemoved(id string) {
	for _, o := range r.snapshotObservers() {
		o.RoomRemoved(id)
	}
}
