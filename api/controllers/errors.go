package controllers

import (
	"errors"
	"github.com/alex-pricope/catch-the-mole/api/models"
	"github.com/alex-pricope/catch-the-mole/logging"
	"github.com/alex-pricope/catch-the-mole/matchdata"
	"github.com/alex-pricope/catch-the-mole/rooms"
	"github.com/gin-gonic/gin"
	"net/http"
)

// classify maps a domain error to its status, kind and client message.
func classify(err error) (int, models.ErrorKind, string) {
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		return http.StatusNotFound, models.ErrRoomNotFound, "room not found"
	case errors.Is(err, rooms.ErrNotOwner):
		return http.StatusForbidden, models.ErrPermissionDenied, "only the room creator can do this"
	case errors.Is(err, rooms.ErrVotingNotStarted):
		return http.StatusBadRequest, models.ErrVotingNotStarted, "start voting before casting a vote"
	case errors.Is(err, rooms.ErrAlreadyVoted):
		return http.StatusBadRequest, models.ErrAlreadyVoted, "you have used all your votes"
	case errors.Is(err, rooms.ErrDuplicateVote):
		return http.StatusBadRequest, models.ErrDuplicateVote, "you already voted for this player"
	case errors.Is(err, rooms.ErrInvalidPlayerIndex):
		return http.StatusBadRequest, models.ErrInvalidPlayerIndex, "player_index must be between 1 and 5"
	case errors.Is(err, rooms.ErrRoomFinished):
		return http.StatusBadRequest, models.ErrRoomFinished, "voting has already finished"
	case errors.Is(err, rooms.ErrDuplicateKey):
		return http.StatusBadRequest, models.ErrRoomPasswordExists, "room password already exists"
	case errors.Is(err, matchdata.ErrMatchUnavailable), errors.Is(err, matchdata.ErrUnexpectedTeamSize):
		return http.StatusBadRequest, models.ErrInvalidMatchID, "could not load the match, check the match id"
	case errors.Is(err, rooms.ErrInvalidRoom):
		return http.StatusInternalServerError, models.ErrCreateRoom, "could not create room"
	default:
		return http.StatusInternalServerError, models.ErrServer, "internal server error"
	}
}

func respondError(g *gin.Context, err error) {
	status, kind, message := classify(err)
	if status >= http.StatusInternalServerError {
		logging.Log.Errorf("%s %s failed: %v", g.Request.Method, g.Request.URL.Path, err)
	}
	g.JSON(status, models.Fail(kind, message))
}
