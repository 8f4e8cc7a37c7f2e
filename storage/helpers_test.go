package storage

import (
	"time"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testRecord(id string, version int64) *RoomRecord {
	heroes := make([]HeroRecord, 0, 5)
	for slot := 1; slot <= 5; slot++ {
		heroes = append(heroes, HeroRecord{PlayerSlot: slot, HeroID: slot * 10, HeroName: "Hero", Nickname: "player"})
	}
	return &RoomRecord{
		ID:                  id,
		Password:            "PW" + id,
		MatchID:             7_000_000_001,
		Status:              "init",
		MaxVotes:            3,
		VotesPerUser:        2,
		CreatorUsername:     "host",
		CreatorFingerprint:  "owner",
		Heroes:              heroes,
		ShowOnlyWinnerVotes: true,
		VotedUsers: map[string]VoterRecord{
			"user-a": {Started: true, VotedPlayers: []int{2, 4}, Username: "alice"},
			"user-b": {Started: true, VotedPlayers: []int{}},
		},
		PlayerOrder:          []int{3, 1, 5, 2, 4},
		OrderGenerationCount: 1,
		CreatedAt:            testNow,
		UpdatedAt:            testNow.Add(time.Minute),
		Version:              version,
	}
}
