package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventTick      Event = "tick"
	EventExpired   Event = "expired"
	EventSubmitted Event = "submitted"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// TickResponse pushes the current countdown state once per second.
type TickResponse struct {
	Event            Event  `json:"event"`
	RemainingSeconds int    `json:"remaining_seconds"`
	RemainingDisplay string `json:"remaining_display"`
	Urgent           bool   `json:"urgent"`
}

// TerminalResponse closes out the stream: the timer expired or the
// candidate submitted. No further events follow it.
type TerminalResponse struct {
	Event            Event  `json:"event"`
	Forced           bool   `json:"forced"`
	RemainingDisplay string `json:"remaining_display"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
