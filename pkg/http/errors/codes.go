package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeForbidden              = "forbidden"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"

	// Room errors
	ErrCodeRoomCreationFailed       = "room_creation_failed"
	ErrCodeRoomNotFound             = "room_not_found"
	ErrCodeRoomFull                 = "room_full"
	ErrCodeInvalidRoomCode          = "invalid_room_code"
	ErrCodeJoinFailed               = "join_failed"
	ErrCodeRoomStartFailed          = "room_start_failed"
	ErrCodeInsufficientQuestionBank = "insufficient_question_bank"
	ErrCodeStartInProgress          = "start_in_progress"

	// Game action errors
	ErrCodeNotYourTurn      = "not_your_turn"
	ErrCodeAlreadyAnswered  = "already_answered"
	ErrCodeWrongPhase       = "wrong_phase"
	ErrCodeGameFinished     = "game_finished"
	ErrCodeGameStarted      = "game_started"
	ErrCodeInvalidOption    = "invalid_option"
	ErrCodeInvalidOpponent  = "invalid_opponent"
	ErrCodeNotHost          = "not_host"
	ErrCodeNotEnoughPlayers = "not_enough_players"
	ErrCodeUnknownPlayer    = "unknown_player"
	ErrCodeUnknownChallenge = "unknown_challenge"
	ErrCodeChallengeLocked  = "challenge_locked"
	ErrCodeChallengeClaimed = "challenge_claimed"
	ErrCodeActionFailed     = "action_failed"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
)
