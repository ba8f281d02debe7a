package game

import (
	"errors"
	"net/http"

	"github.com/gokatarajesh/coupsurcoup/internal/auth/jwt"
	"github.com/gokatarajesh/coupsurcoup/internal/server"
	httperrors "github.com/gokatarajesh/coupsurcoup/pkg/http/errors"
)

// HandleWebSocket upgrades HTTP connection to WebSocket and authenticates the seat.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Missing token")
		return
	}

	claims, err := h.tokens.ValidateSessionToken(token)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket token validation failed")
		code := httperrors.ErrCodeInvalidToken
		if errors.Is(err, jwt.ErrExpiredToken) {
			code = httperrors.ErrCodeTokenExpired
		}
		httperrors.RespondUnauthorized(w, code, "Invalid token")
		return
	}

	// The room may live on another instance; state resolution covers both.
	if _, err := h.service.State(r.Context(), claims.RoomCode); err != nil {
		status, code := httperrors.Classify(err, errorRules)
		httperrors.RespondError(w, status, code, err.Error())
		return
	}
	if err := h.service.Watch(r.Context(), claims.RoomCode); err != nil {
		h.logger.Error().Err(err).Str("room_code", claims.RoomCode).Msg("realtime subscribe failed")
		httperrors.RespondError(w, http.StatusServiceUnavailable, httperrors.ErrCodeServiceUnavailable, "Realtime unavailable")
		return
	}

	conn, err := server.WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.HandleConnection(conn, claims)
}
