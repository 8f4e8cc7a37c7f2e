package storage

import "time"

// RoomRecord is the durable form of a room. The per-slot tally is not stored; it is
// recomputed from the voter records when a room is loaded back.
type RoomRecord struct {
	ID                   string                 `dynamodbav:"PK" json:"id"`
	Password             string                 `dynamodbav:"Password" json:"password"`
	MatchID              int64                  `dynamodbav:"MatchID" json:"match_id"`
	Status               string                 `dynamodbav:"Status" json:"status"`
	MaxVotes             int                    `dynamodbav:"MaxVotes" json:"max_votes"`
	VotesPerUser         int                    `dynamodbav:"VotesPerUser" json:"votes_per_user"`
	CreatorUsername      string                 `dynamodbav:"CreatorUsername" json:"creator_username"`
	CreatorFingerprint   string                 `dynamodbav:"CreatorFingerprint" json:"creator_fingerprint"`
	Heroes               []HeroRecord           `dynamodbav:"Heroes" json:"heroes"`
	ShowOnlyWinnerVotes  bool                   `dynamodbav:"ShowOnlyWinnerVotes" json:"show_only_winner_votes"`
	VotedUsers           map[string]VoterRecord `dynamodbav:"VotedUsers" json:"voted_users"`
	PlayerOrder          []int                  `dynamodbav:"PlayerOrder" json:"player_order"`
	OrderGenerationCount int                    `dynamodbav:"OrderGenerationCount" json:"order_generation_count"`
	CreatedAt            time.Time              `dynamodbav:"CreatedAt" json:"created_at"`
	UpdatedAt            time.Time              `dynamodbav:"UpdatedAt" json:"updated_at"`
	Version              int64                  `dynamodbav:"Version" json:"version"`
}

type HeroRecord struct {
	PlayerSlot int    `dynamodbav:"PlayerSlot" json:"player_slot"`
	HeroID     int    `dynamodbav:"HeroID" json:"hero_id"`
	HeroName   string `dynamodbav:"HeroName" json:"hero_name"`
	Nickname   string `dynamodbav:"Nickname" json:"nickname"`
}

type VoterRecord struct {
	Started      bool   `dynamodbav:"Started" json:"started"`
	VotedPlayers []int  `dynamodbav:"VotedPlayers" json:"voted_players"`
	Username     string `dynamodbav:"Username,omitempty" json:"username,omitempty"`
}
