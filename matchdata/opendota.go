package matchdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alex-pricope/catch-the-mole/logging"
)

const DefaultBaseURL = "https://api.opendota.com/api"

// Player is one member of the losing side, renumbered 1..5 by in-game slot.
type Player struct {
	Slot     int
	HeroID   int
	HeroName string
	Nickname string
}

// Provider resolves the five losing-side players of a match.
type Provider interface {
	LosingTeam(ctx context.Context, matchID int64) ([]Player, error)
}

type OpenDotaClient struct {
	baseURL string
	http    *http.Client
	heroes  *HeroCatalog
}

func NewOpenDotaClient(baseURL string, timeout time.Duration, heroes *HeroCatalog) *OpenDotaClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenDotaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		heroes:  heroes,
	}
}

type matchResponse struct {
	RadiantWin *bool            `json:"radiant_win"`
	Players    []playerResponse `json:"players"`
}

type playerResponse struct {
	PlayerSlot  int     `json:"player_slot"`
	HeroID      int     `json:"hero_id"`
	PersonaName *string `json:"personaname"`
	IsRadiant   *bool   `json:"isRadiant"`
}

// radiant falls back to the slot encoding when isRadiant is absent: Dire slots start at 128.
func (p playerResponse) radiant() bool {
	if p.IsRadiant != nil {
		return *p.IsRadiant
	}
	return p.PlayerSlot < 128
}

func (c *OpenDotaClient) LosingTeam(ctx context.Context, matchID int64) ([]Player, error) {
	match, err := c.fetchMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.RadiantWin == nil {
		return nil, fmt.Errorf("%w: match %d has no result yet", ErrMatchUnavailable, matchID)
	}

	losers := make([]playerResponse, 0, 5)
	for _, p := range match.Players {
		if p.radiant() != *match.RadiantWin {
			losers = append(losers, p)
		}
	}
	if len(losers) != 5 {
		return nil, fmt.Errorf("%w: match %d has %d", ErrUnexpectedTeamSize, matchID, len(losers))
	}

	sort.SliceStable(losers, func(i, j int) bool {
		return losers[i].PlayerSlot < losers[j].PlayerSlot
	})

	players := make([]Player, 0, len(losers))
	for i, p := range losers {
		nickname := "Unknown"
		if p.PersonaName != nil && *p.PersonaName != "" {
			nickname = *p.PersonaName
		}
		players = append(players, Player{
			Slot:     i + 1,
			HeroID:   p.HeroID,
			HeroName: c.heroes.Name(p.HeroID),
			Nickname: nickname,
		})
	}
	return players, nil
}

func (c *OpenDotaClient) fetchMatch(ctx context.Context, matchID int64) (*matchResponse, error) {
	url := c.baseURL + "/matches/" + strconv.FormatInt(matchID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		logging.Log.Errorf("OPENDOTA: request for match %d failed: %v", matchID, err)
		return nil, fmt.Errorf("%w: %v", ErrMatchUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		logging.Log.Warnf("OPENDOTA: match %d returned status %d", matchID, res.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrMatchUnavailable, res.StatusCode)
	}

	var match matchResponse
	if err := json.NewDecoder(res.Body).Decode(&match); err != nil {
		logging.Log.Errorf("OPENDOTA: failed to decode match %d: %v", matchID, err)
		return nil, fmt.Errorf("%w: %v", ErrMatchUnavailable, err)
	}
	return &match, nil
}
