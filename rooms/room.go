package rooms

import (
	"fmt"
	"strconv"
	"time"
)

// SlotCount is the number of candidates in every room: the five players of the losing team.
const SlotCount = 5

type Status string

const (
	StatusInit     Status = "init"
	StatusFinished Status = "finished"
)

// Candidate is one player of the losing team, fixed when the room is created.
type Candidate struct {
	PlayerSlot int    `json:"player_slot"`
	HeroID     int    `json:"hero_id"`
	HeroName   string `json:"hero_name"`
	Nickname   string `json:"nickname"`
}

// Voter is the voting record of one participant, keyed by fingerprint in Room.VotedUsers.
type Voter struct {
	Started      bool
	VotedPlayers []int
	Username     string
}

func (v *Voter) VoteCount() int {
	return len(v.VotedPlayers)
}

func (v *Voter) hasVotedFor(slot int) bool {
	for _, p := range v.VotedPlayers {
		if p == slot {
			return true
		}
	}
	return false
}

func (v *Voter) clone() *Voter {
	c := *v
	c.VotedPlayers = append(make([]int, 0, len(v.VotedPlayers)), v.VotedPlayers...)
	return &c
}

// Tally counts ballots per candidate slot; index 0 holds slot 1.
type Tally [SlotCount]int

func (t Tally) Get(slot int) int {
	if !ValidSlot(slot) {
		return 0
	}
	return t[slot-1]
}

func (t *Tally) inc(slot int) {
	t[slot-1]++
}

// Map returns the non-zero counters keyed by slot number as text, the wire shape clients expect.
func (t Tally) Map() map[string]int {
	m := make(map[string]int)
	for i, n := range t {
		if n > 0 {
			m[strconv.Itoa(i+1)] = n
		}
	}
	return m
}

func (t Tally) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

func ValidSlot(slot int) bool {
	return slot >= 1 && slot <= SlotCount
}

type Room struct {
	ID                   string
	Password             string
	MatchID              int64
	Status               Status
	MaxVotes             int
	VotesPerUser         int
	CreatorUsername      string
	CreatorFingerprint   string
	Heroes               []Candidate
	ShowOnlyWinnerVotes  bool
	Votes                Tally
	VotedUsers           map[string]*Voter
	PlayerOrder          []int
	OrderGenerationCount int
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Version              int64
}

// CreateParams carries everything the caller decides when opening a room.
type CreateParams struct {
	ID                  string
	Password            string
	MatchID             int64
	MaxVotes            int
	VotesPerUser        int
	CreatorUsername     string
	CreatorFingerprint  string
	Heroes              []Candidate
	ShowOnlyWinnerVotes bool
}

func (p CreateParams) validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: missing room id", ErrInvalidRoom)
	case p.Password == "":
		return fmt.Errorf("%w: missing room password", ErrInvalidRoom)
	case p.CreatorFingerprint == "":
		return fmt.Errorf("%w: missing creator fingerprint", ErrInvalidRoom)
	case p.CreatorUsername == "":
		return fmt.Errorf("%w: missing creator username", ErrInvalidRoom)
	case p.MaxVotes < 1:
		return fmt.Errorf("%w: max votes must be at least 1", ErrInvalidRoom)
	case p.VotesPerUser < 1 || p.VotesPerUser > SlotCount:
		return fmt.Errorf("%w: votes per user must be between 1 and %d", ErrInvalidRoom, SlotCount)
	}
	return validateHeroes(p.Heroes)
}

func validateHeroes(heroes []Candidate) error {
	if len(heroes) != SlotCount {
		return fmt.Errorf("%w: expected %d heroes, got %d", ErrInvalidRoom, SlotCount, len(heroes))
	}
	var seen [SlotCount]bool
	for _, h := range heroes {
		if !ValidSlot(h.PlayerSlot) || seen[h.PlayerSlot-1] {
			return fmt.Errorf("%w: bad or repeated player slot %d", ErrInvalidRoom, h.PlayerSlot)
		}
		seen[h.PlayerSlot-1] = true
	}
	return nil
}

// NewRoom builds a room in the init state with no ballots.
func NewRoom(p CreateParams, now time.Time) (*Room, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Room{
		ID:                  p.ID,
		Password:            p.Password,
		MatchID:             p.MatchID,
		Status:              StatusInit,
		MaxVotes:            p.MaxVotes,
		VotesPerUser:        p.VotesPerUser,
		CreatorUsername:     p.CreatorUsername,
		CreatorFingerprint:  p.CreatorFingerprint,
		Heroes:              append([]Candidate(nil), p.Heroes...),
		ShowOnlyWinnerVotes: p.ShowOnlyWinnerVotes,
		VotedUsers:          make(map[string]*Voter),
		CreatedAt:           now,
		UpdatedAt:           now,
		Version:             1,
	}, nil
}

// CurrentVotes is the number of participants holding a voting record.
func (r *Room) CurrentVotes() int {
	return len(r.VotedUsers)
}

func (r *Room) IsFinished() bool {
	return r.Status == StatusFinished
}

func (r *Room) IsOwner(fingerprint string) bool {
	return fingerprint != "" && fingerprint == r.CreatorFingerprint
}

// complete reports whether enough participants exist and each one used the whole quota.
func (r *Room) complete() bool {
	if r.CurrentVotes() < r.MaxVotes {
		return false
	}
	for _, v := range r.VotedUsers {
		if v.VoteCount() != r.VotesPerUser {
			return false
		}
	}
	return true
}

// recount rebuilds the tally from the voter records.
func (r *Room) recount() {
	r.Votes = Tally{}
	for _, v := range r.VotedUsers {
		for _, slot := range v.VotedPlayers {
			if ValidSlot(slot) {
				r.Votes.inc(slot)
			}
		}
	}
}

// Clone returns a deep copy that shares nothing with r.
func (r *Room) Clone() *Room {
	c := *r
	c.Heroes = append([]Candidate(nil), r.Heroes...)
	c.PlayerOrder = append([]int(nil), r.PlayerOrder...)
	c.VotedUsers = make(map[string]*Voter, len(r.VotedUsers))
	for fp, v := range r.VotedUsers {
		c.VotedUsers[fp] = v.clone()
	}
	return &c
}
