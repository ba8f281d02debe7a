package ws

import "encoding/json"

// MessageType constants for WebSocket protocol.
const (
	// Client -> Server
	TypeSelectOption = "select_option"
	TypeChooseTheme  = "choose_theme"
	TypeStartDuel    = "start_duel"
	TypeAdvanceRound = "advance_round"
	TypeClaimReward  = "claim_reward"
	TypePass         = "pass"
	TypeRequestState = "request_state"
	TypePing         = "ping"

	// Server -> Client
	TypeGameState = "game_state"
	TypeActionAck = "action_ack"
	TypeError     = "error"
	TypePong      = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// Client Messages (incoming)

type SelectOptionPayload struct {
	Index int `json:"index"`
}

type ChooseThemePayload struct {
	Index int `json:"index"`
}

type StartDuelPayload struct {
	PlayerID string `json:"player_id"`
}

type ClaimRewardPayload struct {
	ChallengeID string `json:"challenge_id"`
}

// Server Messages (outgoing)

type ActionAckPayload struct {
	Action  string `json:"action"`
	Version uint64 `json:"version"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage marshals payload into a typed message.
func NewMessage(msgType string, payload any) (Message, error) {
	msg := Message{Type: msgType}
	if payload == nil {
		return msg, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	msg.Payload = raw
	return msg, nil
}
