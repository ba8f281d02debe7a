package game

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/coupsurcoup/internal/auth"
	"github.com/gokatarajesh/coupsurcoup/internal/auth/jwt"
	httperrors "github.com/gokatarajesh/coupsurcoup/pkg/http/errors"
	ws "github.com/gokatarajesh/coupsurcoup/pkg/http/ws"
)

// Handler manages WebSocket connections and routes player actions.
type Handler struct {
	service *Service
	hub     *ws.Hub
	tokens  auth.TokenValidator
	logger  zerolog.Logger
}

// NewHandler creates a game WebSocket handler and subscribes it to the
// service's reconciled views.
func NewHandler(service *Service, hub *ws.Hub, tokens auth.TokenValidator, logger zerolog.Logger) *Handler {
	h := &Handler{
		service: service,
		hub:     hub,
		tokens:  tokens,
		logger:  logger.With().Str("component", "game_ws").Logger(),
	}
	service.OnView(h.Broadcast)
	return h
}

// Register mounts the socket route.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/games", h.HandleWebSocket)
}

// Broadcast pushes a view to every socket connected to the room.
func (h *Handler) Broadcast(code string, view ViewState) {
	msg, err := ws.NewMessage(ws.TypeGameState, view)
	if err != nil {
		h.logger.Error().Err(err).Str("room_code", code).Msg("failed to encode view")
		return
	}
	_ = h.hub.BroadcastToRoom(code, msg)
}

// HandleConnection processes a new WebSocket connection for an
// authenticated seat.
func (h *Handler) HandleConnection(conn *websocket.Conn, claims *jwt.Claims) {
	logger := h.logger.With().
		Str("room_code", claims.RoomCode).
		Str("player_id", claims.PlayerID.String()).
		Logger()
	wsConn := ws.NewConnection(conn, logger)
	h.hub.Register(claims.RoomCode, claims.PlayerID, wsConn)

	go wsConn.WritePump()

	h.sendState(context.Background(), claims, "")

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(context.Background(), claims, msg)
	})

	h.hub.Unregister(claims.RoomCode, claims.PlayerID, wsConn)
}

// handleMessage routes incoming WebSocket messages.
func (h *Handler) handleMessage(ctx context.Context, claims *jwt.Claims, msg ws.Message) error {
	switch msg.Type {
	case ws.TypePing:
		return h.hub.SendToPlayer(claims.PlayerID, ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
	case ws.TypeRequestState:
		h.sendState(ctx, claims, msg.RequestID)
		return nil
	}

	action, err := decodeAction(msg)
	if err != nil {
		return h.sendError(claims, msg.RequestID, err.code, err.message)
	}

	if err := h.service.Act(ctx, claims.RoomCode, claims.PlayerID, action); err != nil {
		_, code := httperrors.Classify(err, errorRules)
		if code == httperrors.ErrCodeInternalError {
			h.logger.Error().Err(err).Str("action", msg.Type).Msg("action failed")
			code = httperrors.ErrCodeActionFailed
		}
		return h.sendError(claims, msg.RequestID, code, err.Error())
	}

	ack := ws.ActionAckPayload{Action: msg.Type}
	if view, err := h.service.State(ctx, claims.RoomCode); err == nil {
		ack.Version = view.Version
	}
	reply, _ := ws.NewMessage(ws.TypeActionAck, ack)
	reply.RequestID = msg.RequestID
	return h.hub.SendToPlayer(claims.PlayerID, reply)
}

type payloadError struct {
	code    string
	message string
}

func decodeAction(msg ws.Message) (Action, *payloadError) {
	invalid := &payloadError{
		code:    httperrors.ErrCodeInvalidPayload,
		message: fmt.Sprintf("Invalid %s payload", msg.Type),
	}

	switch msg.Type {
	case ws.TypeSelectOption:
		var p ws.SelectOptionPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return Action{}, invalid
		}
		return Action{Kind: ActionSelectOption, Index: p.Index}, nil
	case ws.TypeChooseTheme:
		var p ws.ChooseThemePayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return Action{}, invalid
		}
		return Action{Kind: ActionChooseTheme, Index: p.Index}, nil
	case ws.TypeStartDuel:
		var p ws.StartDuelPayload
		if json.Unmarshal(msg.Payload, &p) != nil || p.PlayerID == "" {
			return Action{}, invalid
		}
		return Action{Kind: ActionStartDuel, OpponentID: p.PlayerID}, nil
	case ws.TypeClaimReward:
		var p ws.ClaimRewardPayload
		if json.Unmarshal(msg.Payload, &p) != nil || p.ChallengeID == "" {
			return Action{}, invalid
		}
		return Action{Kind: ActionClaimReward, ChallengeID: p.ChallengeID}, nil
	case ws.TypeAdvanceRound:
		return Action{Kind: ActionAdvanceRound}, nil
	case ws.TypePass:
		return Action{Kind: ActionPass}, nil
	default:
		return Action{}, &payloadError{
			code:    httperrors.ErrCodeUnknownMessageType,
			message: fmt.Sprintf("Unknown message type: %s", msg.Type),
		}
	}
}

func (h *Handler) sendState(ctx context.Context, claims *jwt.Claims, requestID string) {
	view, err := h.service.State(ctx, claims.RoomCode)
	if err != nil {
		_, code := httperrors.Classify(err, errorRules)
		_ = h.sendError(claims, requestID, code, err.Error())
		return
	}
	msg, err := ws.NewMessage(ws.TypeGameState, view)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode view")
		return
	}
	msg.RequestID = requestID
	_ = h.hub.SendToPlayer(claims.PlayerID, msg)
}

func (h *Handler) sendError(claims *jwt.Claims, requestID, code, message string) error {
	msg, _ := ws.NewMessage(ws.TypeError, ws.ErrorPayload{Code: code, Message: message})
	msg.RequestID = requestID
	return h.hub.SendToPlayer(claims.PlayerID, msg)
}
