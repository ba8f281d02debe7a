package game

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/coupsurcoup/internal/auth"
	"github.com/gokatarajesh/coupsurcoup/internal/auth/jwt"
	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
	"github.com/gokatarajesh/coupsurcoup/internal/question"
	httperrors "github.com/gokatarajesh/coupsurcoup/pkg/http/errors"
)

// SessionIssuer signs room-scoped session tokens.
type SessionIssuer interface {
	GenerateSessionToken(s jwt.Session) (string, error)
}

// HTTPHandlers provides REST endpoints for rooms.
type HTTPHandlers struct {
	service  *Service
	tokens   SessionIssuer
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for room endpoints.
func NewHTTPHandlers(service *Service, tokens SessionIssuer, logger zerolog.Logger) *HTTPHandlers {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &HTTPHandlers{
		service:  service,
		tokens:   tokens,
		validate: validate,
		logger:   logger.With().Str("component", "game_http").Logger(),
	}
}

// Register mounts the room routes.
func (h *HTTPHandlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/rooms", h.CreateRoom)
	mux.HandleFunc("POST /v1/rooms/{code}/join", h.JoinRoom)
	mux.Handle("POST /v1/rooms/{code}/bots", auth.RequireSession(http.HandlerFunc(h.AddBots)))
	mux.Handle("POST /v1/rooms/{code}/start", auth.RequireSession(http.HandlerFunc(h.StartGame)))
	mux.HandleFunc("GET /v1/rooms/{code}/state", h.GetState)
}

type CreateRoomRequest struct {
	HostName   string `json:"host_name" validate:"required,max=32"`
	Avatar     string `json:"avatar" validate:"omitempty,max=64"`
	MaxPlayers int    `json:"max_players" validate:"omitempty,min=2,max=8"`
}

type JoinRoomRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=32"`
	Avatar      string `json:"avatar" validate:"omitempty,max=64"`
}

type AddBotsRequest struct {
	Count int `json:"count" validate:"required,min=1,max=7"`
}

// SeatResponse is returned to whoever takes a seat in a room.
type SeatResponse struct {
	RoomCode   string         `json:"room_code"`
	GameID     uuid.UUID      `json:"game_id"`
	MaxPlayers int            `json:"max_players"`
	Player     tracker.Player `json:"player"`
	Token      string         `json:"token"`
	State      ViewState      `json:"state"`
}

// CreateRoom handles POST /v1/rooms
func (h *HTTPHandlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if !h.decode(w, r, &req) {
		return
	}

	room, host, err := h.service.CreateRoom(r.Context(), req.HostName, req.Avatar, req.MaxPlayers)
	if err != nil {
		var thin *question.InsufficientBankError
		if errors.As(err, &thin) {
			h.logger.Warn().Err(err).Msg("question bank too small for a new room")
			httperrors.RespondErrorWithDetails(w, http.StatusConflict, httperrors.ErrCodeInsufficientQuestionBank, err.Error(), map[string]interface{}{
				"type": thin.Type,
				"need": thin.Need,
				"have": thin.Have,
			})
			return
		}
		h.logger.Error().Err(err).Msg("failed to create room")
		httperrors.RespondInternalError(w, "Could not create room")
		return
	}

	h.respondSeat(w, r, http.StatusCreated, room, host)
}

// JoinRoom handles POST /v1/rooms/{code}/join
func (h *HTTPHandlers) JoinRoom(w http.ResponseWriter, r *http.Request) {
	code, ok := h.roomCode(w, r)
	if !ok {
		return
	}
	var req JoinRoomRequest
	if !h.decode(w, r, &req) {
		return
	}

	player, err := h.service.JoinRoom(r.Context(), code, req.DisplayName, req.Avatar)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	room, err := h.service.Room(code)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondSeat(w, r, http.StatusOK, room, player)
}

// AddBots handles POST /v1/rooms/{code}/bots
func (h *HTTPHandlers) AddBots(w http.ResponseWriter, r *http.Request) {
	claims, code, ok := h.sessionFor(w, r)
	if !ok {
		return
	}
	var req AddBotsRequest
	if !h.decode(w, r, &req) {
		return
	}

	bots, err := h.service.AddBots(r.Context(), code, claims.PlayerID, req.Count)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"room_code": code,
		"bots":      bots,
	})
}

// StartGame handles POST /v1/rooms/{code}/start
func (h *HTTPHandlers) StartGame(w http.ResponseWriter, r *http.Request) {
	claims, code, ok := h.sessionFor(w, r)
	if !ok {
		return
	}

	if err := h.service.StartGame(r.Context(), code, claims.PlayerID); err != nil {
		h.respondDomainError(w, err)
		return
	}
	view, err := h.service.State(r.Context(), code)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, view)
}

// GetState handles GET /v1/rooms/{code}/state
func (h *HTTPHandlers) GetState(w http.ResponseWriter, r *http.Request) {
	code, ok := h.roomCode(w, r)
	if !ok {
		return
	}
	view, err := h.service.State(r.Context(), code)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, view)
}

func (h *HTTPHandlers) respondSeat(w http.ResponseWriter, r *http.Request, status int, room *Room, player tracker.Player) {
	token, err := h.tokens.GenerateSessionToken(jwt.Session{
		PlayerID:    player.ID,
		RoomCode:    room.Code,
		DisplayName: player.Name,
		IsHost:      player.IsHost,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("room_code", room.Code).Msg("failed to sign session token")
		httperrors.RespondInternalError(w, "Could not issue session token")
		return
	}
	view, err := h.service.State(r.Context(), room.Code)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httperrors.RespondJSON(w, status, SeatResponse{
		RoomCode:   room.Code,
		GameID:     room.GameID,
		MaxPlayers: room.MaxPlayers,
		Player:     player,
		Token:      token,
		State:      view,
	})
}

func (h *HTTPHandlers) roomCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := r.PathValue("code")
	if err := h.validate.Var(code, "len=6,numeric"); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRoomCode, "Room code must be 6 digits")
		return "", false
	}
	return code, true
}

// sessionFor returns the caller's claims when their token belongs to the
// room in the path.
func (h *HTTPHandlers) sessionFor(w http.ResponseWriter, r *http.Request) (*jwt.Claims, string, bool) {
	code, ok := h.roomCode(w, r)
	if !ok {
		return nil, "", false
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return nil, "", false
	}
	if claims.RoomCode != code {
		httperrors.RespondForbidden(w, httperrors.ErrCodeForbidden, "Token does not belong to this room")
		return nil, "", false
	}
	return claims, code, true
}

func (h *HTTPHandlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, fe.Field()+" failed "+fe.Tag(), fe.Field())
			return false
		}
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, err.Error())
		return false
	}
	return true
}

func (h *HTTPHandlers) respondDomainError(w http.ResponseWriter, err error) {
	status, code := httperrors.Classify(err, errorRules)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("room request failed")
		httperrors.RespondInternalError(w, "Internal error")
		return
	}
	httperrors.RespondError(w, status, code, err.Error())
}

var errorRules = []httperrors.Rule{
	{Target: ErrRoomNotFound, Status: http.StatusNotFound, Code: httperrors.ErrCodeRoomNotFound},
	{Target: ErrRoomFull, Status: http.StatusConflict, Code: httperrors.ErrCodeRoomFull},
	{Target: ErrLockHeld, Status: http.StatusConflict, Code: httperrors.ErrCodeStartInProgress},
	{Target: ErrGameStarted, Status: http.StatusConflict, Code: httperrors.ErrCodeGameStarted},
	{Target: ErrGameFinished, Status: http.StatusConflict, Code: httperrors.ErrCodeGameFinished},
	{Target: ErrNotHost, Status: http.StatusForbidden, Code: httperrors.ErrCodeNotHost},
	{Target: ErrNotEnoughPlayers, Status: http.StatusConflict, Code: httperrors.ErrCodeNotEnoughPlayers},
	{Target: ErrNotYourTurn, Status: http.StatusConflict, Code: httperrors.ErrCodeNotYourTurn},
	{Target: ErrAlreadyAnswered, Status: http.StatusConflict, Code: httperrors.ErrCodeAlreadyAnswered},
	{Target: ErrWrongPhase, Status: http.StatusConflict, Code: httperrors.ErrCodeWrongPhase},
	{Target: ErrInvalidOption, Status: http.StatusBadRequest, Code: httperrors.ErrCodeInvalidOption},
	{Target: ErrInvalidOpponent, Status: http.StatusBadRequest, Code: httperrors.ErrCodeInvalidOpponent},
	{Target: ErrUnknownPlayer, Status: http.StatusNotFound, Code: httperrors.ErrCodeUnknownPlayer},
	{Target: ErrUnknownChallenge, Status: http.StatusNotFound, Code: httperrors.ErrCodeUnknownChallenge},
	{Target: ErrChallengeLocked, Status: http.StatusConflict, Code: httperrors.ErrCodeChallengeLocked},
	{Target: ErrChallengeClaimed, Status: http.StatusConflict, Code: httperrors.ErrCodeChallengeClaimed},
}
