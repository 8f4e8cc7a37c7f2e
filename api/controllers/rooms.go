package controllers

import (
	"encoding/json"
	"errors"
	"github.com/alex-pricope/catch-the-mole/api/models"
	"github.com/alex-pricope/catch-the-mole/api/transport"
	"github.com/alex-pricope/catch-the-mole/logging"
	"github.com/alex-pricope/catch-the-mole/matchdata"
	"github.com/alex-pricope/catch-the-mole/rooms"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/matoous/go-nanoid/v2"
	"net/http"
	"strings"
)

const passwordAttempts = 5

// RoomSettings are the creation defaults and limits.
type RoomSettings struct {
	DefaultMaxVotes     int
	MaxVotesLimit       int
	DefaultVotesPerUser int
	PasswordLength      int
}

type RoomController struct {
	registry *rooms.Registry
	engine   *rooms.Engine
	provider matchdata.Provider
	settings RoomSettings

	newID       func() string
	newPassword func(length int) (string, error)
}

func NewRoomController(registry *rooms.Registry, engine *rooms.Engine, provider matchdata.Provider, settings RoomSettings) *RoomController {
	if settings.DefaultMaxVotes < 1 {
		settings.DefaultMaxVotes = 5
	}
	if settings.DefaultVotesPerUser < 1 {
		settings.DefaultVotesPerUser = 1
	}
	if settings.PasswordLength < 3 {
		settings.PasswordLength = 6
	}
	return &RoomController{
		registry:    registry,
		engine:      engine,
		provider:    provider,
		settings:    settings,
		newID:       uuid.NewString,
		newPassword: generatePassword,
	}
}

// RegisterRoutes wires the room endpoints. guards run on every state changing route
// after the caller has been identified.
func (c *RoomController) RegisterRoutes(engine *gin.Engine, guards ...gin.HandlerFunc) {
	group := engine.Group("/api/rooms")
	group.GET("/:password", c.getRoom)

	write := group.Group("", append([]gin.HandlerFunc{transport.RequireFingerprint()}, guards...)...)
	write.POST("", c.createRoom)
	write.POST("/:password/start", c.startVoting)
	write.POST("/:password/vote", c.vote)
	write.POST("/:password/reset", c.resetVoting)
	write.POST("/:password/order", c.generateOrder)
	write.POST("/:password/generate-order", c.generateOrder)
}

// createRoom godoc
// @Summary Create a room
// @Description Resolves the losing team of the match and opens a voting room for it
// @Tags rooms
// @Accept json
// @Produce json
// @Param X-User-Fingerprint header string true "Caller fingerprint"
// @Param room body models.CreateRoomRequest true "Room settings"
// @Success 200 {object} models.Envelope{data=models.RoomView}
// @Failure 400 {object} models.Envelope "Invalid input, unknown match or password taken"
// @Failure 401 {object} models.Envelope "Missing fingerprint"
// @Failure 500 {object} models.Envelope "Room could not be created"
// @Router /api/rooms [post]
func (c *RoomController) createRoom(g *gin.Context) {
	var req models.CreateRoomRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		logging.Log.Warnf("ROOMS: invalid create request: %v", err)
		g.JSON(http.StatusBadRequest, models.Fail(models.ErrValidation, "invalid request: "+err.Error()))
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		g.JSON(http.StatusBadRequest, models.Fail(models.ErrValidation, "username is required"))
		return
	}
	maxVotes := c.settings.DefaultMaxVotes
	if req.MaxVotes != nil {
		maxVotes = *req.MaxVotes
	}
	if c.settings.MaxVotesLimit > 0 && maxVotes > c.settings.MaxVotesLimit {
		g.JSON(http.StatusBadRequest, models.Fail(models.ErrValidation, "max_votes is above the allowed limit"))
		return
	}
	votesPerUser := c.settings.DefaultVotesPerUser
	if req.VotesPerUser != nil {
		votesPerUser = *req.VotesPerUser
	}
	showOnlyWinner := true
	if req.ShowOnlyWinnerVotes != nil {
		showOnlyWinner = *req.ShowOnlyWinnerVotes
	}

	// cheap early answer; Registry.Create still settles races
	if req.RoomPassword != "" && c.registry.ExistsByPassword(req.RoomPassword) {
		g.JSON(http.StatusBadRequest, models.Fail(models.ErrRoomPasswordExists, "room password already exists"))
		return
	}

	players, err := c.provider.LosingTeam(g.Request.Context(), req.MatchID)
	if err != nil {
		logging.Log.Warnf("ROOMS: could not resolve match %d: %v", req.MatchID, err)
		g.JSON(http.StatusBadRequest, models.Fail(models.ErrInvalidMatchID, "could not load the match, check the match id"))
		return
	}

	params := rooms.CreateParams{
		MatchID:             req.MatchID,
		MaxVotes:            maxVotes,
		VotesPerUser:        votesPerUser,
		CreatorUsername:     username,
		CreatorFingerprint:  transport.Fingerprint(g),
		Heroes:              models.TransformPlayersToCandidates(players),
		ShowOnlyWinnerVotes: showOnlyWinner,
	}

	room, err := c.create(params, req.RoomPassword)
	if err != nil {
		switch {
		case errors.Is(err, rooms.ErrDuplicateKey):
			g.JSON(http.StatusBadRequest, models.Fail(models.ErrRoomPasswordExists, "room password already exists"))
		default:
			logging.Log.Errorf("ROOMS: failed to create room for match %d: %v", req.MatchID, err)
			g.JSON(http.StatusInternalServerError, models.Fail(models.ErrCreateRoom, "could not create room"))
		}
		return
	}

	g.JSON(http.StatusOK, models.Ok(models.TransformRoomView(room, params.CreatorFingerprint), "room created"))
}

// create inserts the room. Without a requested password a few generated ones are tried.
func (c *RoomController) create(params rooms.CreateParams, password string) (*rooms.Room, error) {
	params.ID = c.newID()
	if password != "" {
		params.Password = password
		return c.registry.Create(params)
	}

	var lastErr error
	for i := 0; i < passwordAttempts; i++ {
		generated, err := c.newPassword(c.settings.PasswordLength)
		if err != nil {
			return nil, err
		}
		params.Password = generated
		room, err := c.registry.Create(params)
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, rooms.ErrDuplicateKey) {
			return nil, err
		}
		lastErr = err
	}
	logging.Log.Warnf("ROOMS: no free password after %d attempts", passwordAttempts)
	return nil, lastErr
}

// getRoom godoc
// @Summary Get a room
// @Description Returns the room as seen by the caller. Ballot counts are hidden until voting finishes
// @Tags rooms
// @Produce json
// @Param password path string true "Room password"
// @Param X-User-Fingerprint header string false "Caller fingerprint"
// @Success 200 {object} models.Envelope{data=models.RoomView}
// @Failure 404 {object} models.Envelope "Room not found"
// @Router /api/rooms/{password} [get]
func (c *RoomController) getRoom(g *gin.Context) {
	room, err := c.registry.GetByPassword(g.Param("password"))
	if err != nil {
		respondError(g, err)
		return
	}
	g.JSON(http.StatusOK, models.Ok(models.TransformRoomView(room, transport.Fingerprint(g)), ""))
}

// startVoting godoc
// @Summary Start voting
// @Description Marks the caller as a participant. Calling it again keeps earlier votes
// @Tags rooms
// @Produce json
// @Param password path string true "Room password"
// @Param X-User-Fingerprint header string true "Caller fingerprint"
// @Success 200 {object} models.Envelope{data=models.RoomView}
// @Failure 400 {object} models.Envelope "Room already finished"
// @Failure 401 {object} models.Envelope "Missing fingerprint"
// @Failure 404 {object} models.Envelope "Room not found"
// @Router /api/rooms/{password}/start [post]
func (c *RoomController) startVoting(g *gin.Context) {
	fingerprint := transport.Fingerprint(g)
	id, err := c.registry.IDByPassword(g.Param("password"))
	if err != nil {
		respondError(g, err)
		return
	}
	room, err := c.engine.StartUserVoting(id, fingerprint)
	if err != nil {
		respondError(g, err)
		return
	}
	g.JSON(http.StatusOK, models.Ok(models.TransformRoomView(room, fingerprint), "voting started"))
}

// vote godoc
// @Summary Cast a vote
// @Description Casts one ballot for a candidate slot between 1 and 5
// @Tags rooms
// @Accept json
// @Produce json
// @Param password path string true "Room password"
// @Param X-User-Fingerprint header string true "Caller fingerprint"
// @Param vote body models.VoteRequest true "Ballot"
// @Success 200 {object} models.Envelope{data=models.VoteResponse}
// @Failure 400 {object} models.Envelope "Vote rejected"
// @Failure 401 {object} models.Envelope "Missing fingerprint"
// @Failure 404 {object} models.Envelope "Room not found"
// @Router /api/rooms/{password}/vote [post]
func (c *RoomController) vote(g *gin.Context) {
	var req models.VoteRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr) && typeErr.Field == "player_index":
			g.JSON(http.StatusBadRequest, models.Fail(models.ErrInvalidPlayerIndex, "player_index must be an integer between 1 and 5"))
		case req.PlayerIndex == 0:
			g.JSON(http.StatusBadRequest, models.Fail(models.ErrValidation, "player_index is required"))
		default:
			g.JSON(http.StatusBadRequest, models.Fail(models.ErrValidation, "invalid request: "+err.Error()))
		}
		return
	}
	id, err := c.registry.IDByPassword(g.Param("password"))
	if err != nil {
		respondError(g, err)
		return
	}
	result, err := c.engine.Vote(id, transport.Fingerprint(g), req.PlayerIndex, strings.TrimSpace(req.Username))
	if err != nil {
		respondError(g, err)
		return
	}
	g.JSON(http.StatusOK, models.Ok(models.TransformVoteResult(result), result.Message()))
}

// resetVoting godoc
// @Summary Reset voting
// @Description Clears every ballot and participant and reopens the room. Creator only
// @Tags rooms
// @Produce json
// @Param password path string true "Room password"
// @Param X-User-Fingerprint header string true "Caller fingerprint"
// @Success 200 {object} models.Envelope{data=models.RoomView}
// @Failure 401 {object} models.Envelope "Missing fingerprint"
// @Failure 403 {object} models.Envelope "Caller is not the creator"
// @Failure 404 {object} models.Envelope "Room not found"
// @Router /api/rooms/{password}/reset [post]
func (c *RoomController) resetVoting(g *gin.Context) {
	fingerprint := transport.Fingerprint(g)
	id, err := c.registry.IDByPassword(g.Param("password"))
	if err != nil {
		respondError(g, err)
		return
	}
	room, err := c.engine.ResetVoting(id, fingerprint)
	if err != nil {
		respondError(g, err)
		return
	}
	g.JSON(http.StatusOK, models.Ok(models.TransformRoomView(room, fingerprint), "voting reset"))
}

// generateOrder godoc
// @Summary Generate a speaking order
// @Description Stores a fresh random order of the five candidates. Creator only
// @Tags rooms
// @Produce json
// @Param password path string true "Room password"
// @Param X-User-Fingerprint header string true "Caller fingerprint"
// @Success 200 {object} models.Envelope{data=models.OrderResponse}
// @Failure 401 {object} models.Envelope "Missing fingerprint"
// @Failure 403 {object} models.Envelope "Caller is not the creator"
// @Failure 404 {object} models.Envelope "Room not found"
// @Router /api/rooms/{password}/order [post]
func (c *RoomController) generateOrder(g *gin.Context) {
	id, err := c.registry.IDByPassword(g.Param("password"))
	if err != nil {
		respondError(g, err)
		return
	}
	order, count, err := c.engine.GeneratePlayerOrder(id, transport.Fingerprint(g))
	if err != nil {
		respondError(g, err)
		return
	}
	g.JSON(http.StatusOK, models.Ok(models.OrderResponse{PlayerOrder: order, OrderGenerationCount: count}, "order generated"))
}

func generatePassword(length int) (string, error) {
	return gonanoid.Generate(models.Alphabet, length)
}
