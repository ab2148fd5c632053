package websocket

import "github.com/talentprove/assess-backend/internal/service"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing    Action = "ping"
	ActionRefresh Action = "refresh"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventTimer  Event = "timer"
	EventClosed Event = "closed"
	EventError  Event = "error"
	EventPong   Event = "pong"
)

// TimerEvent carries a timer snapshot pushed on each tick or on refresh.
type TimerEvent struct {
	Event    Event                  `json:"event"`
	Snapshot *service.TimerSnapshot `json:"snapshot"`
}

// ClosedEvent tells the client the submission is no longer in progress
// and the stream is about to end.
type ClosedEvent struct {
	Event  Event  `json:"event"`
	Reason string `json:"reason"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
