package api

import (
	"time"

	"github.com/rubiojr/tracesink/pkg/realtime"
	"github.com/rubiojr/tracesink/pkg/storage"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// StatusResponse describes the sink configuration.
type StatusResponse struct {
	Mode        string `json:"mode"`
	ModeValue   uint32 `json:"mode_value"`
	Destination string `json:"destination"` // unset, owned or borrowed
	LineEnding  string `json:"line_ending"`
	Listeners   int    `json:"listeners"`
}

type ModeRequest struct {
	Mode string `json:"mode"`
}

// DestinationRequest switches the destination. An empty path returns the
// sink to the live tap.
type DestinationRequest struct {
	Path   string `json:"path"`
	Append bool   `json:"append"`
}

type EmitRequest struct {
	Prefix  string `json:"prefix"`
	Module  string `json:"module"`
	Message string `json:"message"`
}

type LinesResponse struct {
	Lines []storage.Line `json:"lines"`
	Count int            `json:"count"`
	Query string         `json:"query,omitempty"`
}

// wsMessage is sent over the live tail websocket.
type wsMessage struct {
	Type  string              `json:"type"` // init or line
	Lines []storage.Line      `json:"lines,omitempty"`
	Line  *realtime.LineEvent `json:"line,omitempty"`
}
