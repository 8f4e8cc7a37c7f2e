package matchdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alex-pricope/catch-the-mole/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const radiantWinMatch = `{
  "match_id": 7000000001,
  "radiant_win": true,
  "players": [
    {"player_slot": 0,   "hero_id": 1,  "personaname": "r0", "isRadiant": true},
    {"player_slot": 1,   "hero_id": 2,  "personaname": "r1", "isRadiant": true},
    {"player_slot": 2,   "hero_id": 3,  "personaname": "r2", "isRadiant": true},
    {"player_slot": 3,   "hero_id": 4,  "personaname": "r3", "isRadiant": true},
    {"player_slot": 4,   "hero_id": 5,  "personaname": "r4", "isRadiant": true},
    {"player_slot": 132, "hero_id": 14, "personaname": "d4", "isRadiant": false},
    {"player_slot": 128, "hero_id": 10, "personaname": "d0", "isRadiant": false},
    {"player_slot": 130, "hero_id": 12, "isRadiant": false},
    {"player_slot": 129, "hero_id": 11, "personaname": "", "isRadiant": false},
    {"player_slot": 131, "hero_id": 13, "personaname": "d3", "isRadiant": false}
  ]
}`

func setupOpenDota(t *testing.T, status int, body string) (*OpenDotaClient, *string) {
	t.Helper()
	logging.Log = logrus.New()
	var requested string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	heroes := NewHeroCatalog([]Hero{{ID: 10, NameEN: "Bristleback"}, {ID: 12, NameCN: "幻影刺客"}})
	return NewOpenDotaClient(server.URL+"/api/", time.Second, heroes), &requested
}

func TestLosingTeam(t *testing.T) {
	t.Run("Happy path - dire lost", func(t *testing.T) {
		client, requested := setupOpenDota(t, http.StatusOK, radiantWinMatch)

		players, err := client.LosingTeam(context.Background(), 7000000001)
		require.NoError(t, err)
		assert.Equal(t, "/api/matches/7000000001", *requested)

		assert.Equal(t, []Player{
			{Slot: 1, HeroID: 10, HeroName: "Bristleback", Nickname: "d0"},
			{Slot: 2, HeroID: 11, HeroName: "Hero 11", Nickname: "Unknown"},
			{Slot: 3, HeroID: 12, HeroName: "幻影刺客", Nickname: "Unknown"},
			{Slot: 4, HeroID: 13, HeroName: "Hero 13", Nickname: "d3"},
			{Slot: 5, HeroID: 14, HeroName: "Hero 14", Nickname: "d4"},
		}, players)
	})

	t.Run("Happy path - radiant lost, side taken from the slot", func(t *testing.T) {
		body := `{"radiant_win": false, "players": [
			{"player_slot": 4, "hero_id": 5}, {"player_slot": 3, "hero_id": 4},
			{"player_slot": 2, "hero_id": 3}, {"player_slot": 1, "hero_id": 2},
			{"player_slot": 0, "hero_id": 1}, {"player_slot": 128, "hero_id": 10}
		]}`
		client, _ := setupOpenDota(t, http.StatusOK, body)

		players, err := client.LosingTeam(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, players, 5)
		for i, p := range players {
			assert.Equal(t, i+1, p.Slot)
			assert.Equal(t, i+1, p.HeroID)
		}
	})

	t.Run("Unhappy path - match not found", func(t *testing.T) {
		client, _ := setupOpenDota(t, http.StatusNotFound, `{"error": "Not Found"}`)
		_, err := client.LosingTeam(context.Background(), 42)
		assert.ErrorIs(t, err, ErrMatchUnavailable)
	})

	t.Run("Unhappy path - match without a result", func(t *testing.T) {
		client, _ := setupOpenDota(t, http.StatusOK, `{"players": []}`)
		_, err := client.LosingTeam(context.Background(), 42)
		assert.ErrorIs(t, err, ErrMatchUnavailable)
	})

	t.Run("Unhappy path - garbage body", func(t *testing.T) {
		client, _ := setupOpenDota(t, http.StatusOK, `<html>`)
		_, err := client.LosingTeam(context.Background(), 42)
		assert.ErrorIs(t, err, ErrMatchUnavailable)
	})

	t.Run("Unhappy path - short losing team", func(t *testing.T) {
		body := `{"radiant_win": true, "players": [
			{"player_slot": 0, "hero_id": 1, "isRadiant": true},
			{"player_slot": 128, "hero_id": 10, "isRadiant": false},
			{"player_slot": 129, "hero_id": 11, "isRadiant": false}
		]}`
		client, _ := setupOpenDota(t, http.StatusOK, body)
		_, err := client.LosingTeam(context.Background(), 42)
		assert.ErrorIs(t, err, ErrUnexpectedTeamSize)
	})

	t.Run("Unhappy path - upstream too slow", func(t *testing.T) {
		logging.Log = logrus.New()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client := NewOpenDotaClient(server.URL, 50*time.Millisecond, nil)
		_, err := client.LosingTeam(context.Background(), 42)
		assert.ErrorIs(t, err, ErrMatchUnavailable)
	})
}
