package rooms

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/alex-pricope/catch-the-mole/logging"
)

// Outcome tells apart the three kinds of successful ballots.
type Outcome int

const (
	// OutcomeRemaining means the voter still has ballots left.
	OutcomeRemaining Outcome = iota
	// OutcomeComplete means the voter used the whole quota but the room is still open.
	OutcomeComplete
	// OutcomeFinished means this ballot closed the room.
	OutcomeFinished
)

type VoteResult struct {
	Outcome        Outcome
	Finished       bool
	CurrentVotes   int
	MaxVotes       int
	VotedPlayers   []int
	RemainingVotes int
}

func (r *VoteResult) Message() string {
	switch r.Outcome {
	case OutcomeFinished:
		return "vote accepted, voting has finished"
	case OutcomeRemaining:
		return fmt.Sprintf("vote accepted, %d vote(s) left", r.RemainingVotes)
	default:
		return "vote accepted"
	}
}

// Engine applies the voting rules on top of the registry. Every state change goes
// through Registry.Mutate, so each operation is atomic for its room.
type Engine struct {
	registry *Registry
	shuffle  func(order []int)
}

func NewEngine(registry *Registry) *Engine {
	return &Engine{
		registry: registry,
		shuffle: func(order []int) {
			rand.Shuffle(len(order), func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
		},
	}
}

// StartUserVoting marks the caller as started. Calling it again keeps earlier ballots.
func (e *Engine) StartUserVoting(id, fingerprint string) (*Room, error) {
	return e.registry.Mutate(id, func(room *Room) error {
		if room.IsFinished() {
			return ErrRoomFinished
		}
		if voter, ok := room.VotedUsers[fingerprint]; ok {
			voter.Started = true
			return nil
		}
		room.VotedUsers[fingerprint] = &Voter{Started: true, VotedPlayers: []int{}}
		return nil
	})
}

// Vote casts one ballot for playerIndex. The quota check precedes the duplicate check,
// so an exhausted voter always gets ErrAlreadyVoted. A failed call changes nothing.
func (e *Engine) Vote(id, fingerprint string, playerIndex int, username string) (*VoteResult, error) {
	if !ValidSlot(playerIndex) {
		return nil, ErrInvalidPlayerIndex
	}

	var result *VoteResult
	_, err := e.registry.Mutate(id, func(room *Room) error {
		voter, ok := room.VotedUsers[fingerprint]
		if !ok || !voter.Started {
			return ErrVotingNotStarted
		}
		if voter.VoteCount() >= room.VotesPerUser {
			return ErrAlreadyVoted
		}
		if voter.hasVotedFor(playerIndex) {
			return ErrDuplicateVote
		}
		if room.IsFinished() {
			return ErrRoomFinished
		}

		room.Votes.inc(playerIndex)
		voter.VotedPlayers = append(voter.VotedPlayers, playerIndex)
		if voter.Username == "" && username != "" {
			voter.Username = username
		}

		if room.complete() {
			room.Status = StatusFinished
			logging.Log.Infof("ENGINE: room %s finished with %d voters", room.ID, room.CurrentVotes())
		}

		result = &VoteResult{
			Finished:       room.IsFinished(),
			CurrentVotes:   room.CurrentVotes(),
			MaxVotes:       room.MaxVotes,
			VotedPlayers:   append([]int(nil), voter.VotedPlayers...),
			RemainingVotes: room.VotesPerUser - voter.VoteCount(),
		}
		switch {
		case result.Finished:
			result.Outcome = OutcomeFinished
		case result.RemainingVotes > 0:
			result.Outcome = OutcomeRemaining
		default:
			result.Outcome = OutcomeComplete
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ResetVoting wipes every ballot and voter and reopens the room. Owner only.
func (e *Engine) ResetVoting(id, fingerprint string) (*Room, error) {
	return e.registry.Mutate(id, func(room *Room) error {
		if !room.IsOwner(fingerprint) {
			return ErrNotOwner
		}
		room.Status = StatusInit
		room.Votes = Tally{}
		room.VotedUsers = make(map[string]*Voter)
		logging.Log.Infof("ENGINE: room %s reset by its creator", room.ID)
		return nil
	})
}

// GeneratePlayerOrder stores a fresh random permutation of the candidate slots and
// returns it with the number of times an order has been generated. Owner only.
func (e *Engine) GeneratePlayerOrder(id, fingerprint string) ([]int, int, error) {
	var order []int
	var count int
	_, err := e.registry.Mutate(id, func(room *Room) error {
		if !room.IsOwner(fingerprint) {
			return ErrNotOwner
		}
		order = make([]int, 0, len(room.Heroes))
		for _, h := range room.Heroes {
			order = append(order, h.PlayerSlot)
		}
		e.shuffle(order)
		room.PlayerOrder = append([]int(nil), order...)
		room.OrderGenerationCount++
		count = room.OrderGenerationCount
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return order, count, nil
}

// UserVotedPlayers returns the caller's ballots in casting order; empty when they never voted.
func (e *Engine) UserVotedPlayers(id, fingerprint string) ([]int, error) {
	var players []int
	err := e.registry.inspect(id, func(room *Room) {
		players = room.UserVotedPlayers(fingerprint)
	})
	if err != nil {
		return nil, err
	}
	return players, nil
}

func (e *Engine) HasUserStartedVoting(id, fingerprint string) (bool, error) {
	started := false
	err := e.registry.inspect(id, func(room *Room) {
		started = room.HasUserStartedVoting(fingerprint)
	})
	return started, err
}

// VotedUsernames lists the names voters attached to their ballots, never their choices.
func (e *Engine) VotedUsernames(id string) ([]string, error) {
	var names []string
	err := e.registry.inspect(id, func(room *Room) {
		names = room.VotedUsernames()
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func votedUsernames(room *Room) []string {
	names := []string{}
	for _, v := range room.VotedUsers {
		if v.Username != "" {
			names = append(names, v.Username)
		}
	}
	sort.Strings(names)
	return names
}

// The projections below work on a room the caller already holds, either under the
// room lock or as a snapshot. The Engine queries wrap them for callers holding an id.

// UserVotedPlayers copies the fingerprint's ballots; never nil.
func (r *Room) UserVotedPlayers(fingerprint string) []int {
	players := []int{}
	if voter, ok := r.VotedUsers[fingerprint]; ok {
		players = append(players, voter.VotedPlayers...)
	}
	return players
}

func (r *Room) HasUserStartedVoting(fingerprint string) bool {
	voter, ok := r.VotedUsers[fingerprint]
	return ok && voter.Started
}

func (r *Room) VotedUsernames() []string {
	return votedUsernames(r)
}
