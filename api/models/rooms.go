package models

import (
	"github.com/alex-pricope/catch-the-mole/matchdata"
	"github.com/alex-pricope/catch-the-mole/rooms"
	"time"
)

type CreateRoomRequest struct {
	MatchID             int64  `json:"match_id" binding:"required,gt=0"`
	RoomPassword        string `json:"room_password" binding:"omitempty,min=3,max=32,alphanum"`
	MaxVotes            *int   `json:"max_votes" binding:"omitempty,min=1"`
	VotesPerUser        *int   `json:"votes_per_user" binding:"omitempty,min=1,max=5"`
	Username            string `json:"username" binding:"required,max=64"`
	ShowOnlyWinnerVotes *bool  `json:"show_only_winner_votes"`
}

type VoteRequest struct {
	PlayerIndex int    `json:"player_index" binding:"required"`
	Username    string `json:"username" binding:"max=64"`
}

// RoomView is what a caller sees of a room. Ballot counts are only revealed once the
// room is finished; before that the caller gets their own progress instead. The nil
// pointers are omitted, a set pointer is always sent even when its list is empty.
type RoomView struct {
	RoomID               string            `json:"room_id"`
	RoomPassword         string            `json:"room_password"`
	MatchID              int64             `json:"match_id"`
	Status               string            `json:"status"`
	MaxVotes             int               `json:"max_votes"`
	VotesPerUser         int               `json:"votes_per_user"`
	CurrentVotes         int               `json:"current_votes"`
	CreatorUsername      string            `json:"creator_username"`
	IsCreator            bool              `json:"is_creator"`
	Heroes               []rooms.Candidate `json:"heroes"`
	ShowOnlyWinnerVotes  bool              `json:"show_only_winner_votes"`
	PlayerOrder          []int             `json:"player_order"`
	OrderGenerationCount int               `json:"order_generation_count"`
	CreatedAt            time.Time         `json:"created_at"`

	Votes              map[string]int `json:"votes,omitempty"`
	UserStarted        *bool          `json:"user_started,omitempty"`
	UserVotedPlayers   *[]int         `json:"user_voted_players,omitempty"`
	UserRemainingVotes *int           `json:"user_remaining_votes,omitempty"`
	VotedUsernames     *[]string      `json:"voted_usernames,omitempty"`
}

type VoteResponse struct {
	Finished           bool  `json:"finished"`
	CurrentVotes       int   `json:"current_votes"`
	MaxVotes           int   `json:"max_votes"`
	UserVotedPlayers   []int `json:"user_voted_players"`
	UserRemainingVotes int   `json:"user_remaining_votes"`
}

type OrderResponse struct {
	PlayerOrder          []int `json:"player_order"`
	OrderGenerationCount int   `json:"order_generation_count"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}

func TransformRoomView(room *rooms.Room, fingerprint string) RoomView {
	view := RoomView{
		RoomID:               room.ID,
		RoomPassword:         room.Password,
		MatchID:              room.MatchID,
		Status:               string(room.Status),
		MaxVotes:             room.MaxVotes,
		VotesPerUser:         room.VotesPerUser,
		CurrentVotes:         room.CurrentVotes(),
		CreatorUsername:      room.CreatorUsername,
		IsCreator:            room.IsOwner(fingerprint),
		Heroes:               append([]rooms.Candidate{}, room.Heroes...),
		ShowOnlyWinnerVotes:  room.ShowOnlyWinnerVotes,
		PlayerOrder:          append([]int{}, room.PlayerOrder...),
		OrderGenerationCount: room.OrderGenerationCount,
		CreatedAt:            room.CreatedAt,
	}

	if room.IsFinished() {
		view.Votes = room.Votes.Map()
		return view
	}

	names := room.VotedUsernames()
	view.VotedUsernames = &names
	if fingerprint == "" {
		return view
	}

	started := room.HasUserStartedVoting(fingerprint)
	voted := room.UserVotedPlayers(fingerprint)
	remaining := room.VotesPerUser - len(voted)
	view.UserStarted = &started
	view.UserVotedPlayers = &voted
	view.UserRemainingVotes = &remaining
	return view
}

func TransformVoteResult(result *rooms.VoteResult) VoteResponse {
	return VoteResponse{
		Finished:           result.Finished,
		CurrentVotes:       result.CurrentVotes,
		MaxVotes:           result.MaxVotes,
		UserVotedPlayers:   result.VotedPlayers,
		UserRemainingVotes: result.RemainingVotes,
	}
}

func TransformPlayersToCandidates(players []matchdata.Player) []rooms.Candidate {
	heroes := make([]rooms.Candidate, 0, len(players))
	for _, p := range players {
		heroes = append(heroes, rooms.Candidate{
			PlayerSlot: p.Slot,
			HeroID:     p.HeroID,
			HeroName:   p.HeroName,
			Nickname:   p.Nickname,
		})
	}
	return heroes
}
