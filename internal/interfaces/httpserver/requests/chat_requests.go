package requests

// MaxSessionIDLength matches the session_id columns of the database.
const MaxSessionIDLength = 64

// SendMessageRequest models POST /v1/chat. An empty session_id starts a new session.
type SendMessageRequest struct {
	SessionID string `json:"session_id,omitempty" binding:"omitempty,max=64"`
	Message   string `json:"message" binding:"required,max=8000"`
}

// ConfirmRequest models POST /v1/chat/confirm.
type ConfirmRequest struct {
	SessionID string `json:"session_id" binding:"required,max=64"`
	Token     string `json:"token" binding:"required"`
	Confirmed *bool  `json:"confirmed" binding:"required"`
}
