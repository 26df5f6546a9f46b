package daemon

import (
	"fmt"
	"slices"
)

// JSON-RPC 2.0 method names.
const (
	MethodPing         = "ping"
	MethodStatus       = "status"
	MethodSearch       = "search"
	MethodShow         = "show"
	MethodHide         = "hide"
	MethodToggle       = "toggle"
	MethodExit         = "exit"
	MethodCheckUpdates = "check_updates"
)

// CommandMethods are the methods forwarded to the command surface.
var CommandMethods = []string{MethodShow, MethodHide, MethodToggle, MethodExit, MethodCheckUpdates}

// IsCommand reports whether method belongs to the command surface.
func IsCommand(method string) bool {
	return slices.Contains(CommandMethods, method)
}

// Standard JSON-RPC 2.0 error codes.
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Application error codes.
const (
	ErrCodeNotReady      = -32001
	ErrCodeSearchFailed  = -32002
	ErrCodeCommandFailed = -32003
)

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      string `json:"id"`
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      string `json:"id"`
}

// Error represents a JSON-RPC 2.0 error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (code: %d)", e.Message, e.Code)
}

// NewSuccessResponse creates a successful response.
func NewSuccessResponse(id string, result any) Response {
	return Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(id string, code int, message string) Response {
	return Response{
		JSONRPC: "2.0",
		Error: &Error{
			Code:    code,
			Message: message,
		},
		ID: id,
	}
}

// SearchParams are the parameters for the search method.
type SearchParams struct {
	// Query is the text as typed (required).
	Query string `json:"query"`

	// Limit caps the number of results; zero uses the configured maximum.
	Limit int `json:"limit,omitempty"`
}

// Validate checks that required fields are present.
func (p *SearchParams) Validate() error {
	if p.Query == "" {
		return fmt.Errorf("query is required")
	}
	if p.Limit < 0 {
		p.Limit = 0
	}
	return nil
}

// SearchResult is one ranked entry.
type SearchResult struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Target string `json:"target"`
	Score  int    `json:"score"`
	Tier   string `json:"tier"`
}

// SourceStatus reports one index source of the current snapshot.
type SourceStatus struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
	Error   string `json:"error,omitempty"`
}

// StatusResult contains resident process status.
type StatusResult struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	Uptime       string         `json:"uptime"`
	State        string         `json:"state"`
	Entries      int            `json:"entries"`
	Generation   uint64         `json:"generation"`
	Hotkey       string         `json:"hotkey,omitempty"`
	HotkeyStatus string         `json:"hotkey_status"` // "registered", "fallback", "degraded"
	TrayStatus   string         `json:"tray_status"`   // "ok", "degraded"
	RestartsUsed int            `json:"restarts_used"`
	Sources      []SourceStatus `json:"sources,omitempty"`
}

// CommandResult is the response to a command-surface method.
type CommandResult struct {
	// State is the lifecycle state after the command was applied.
	State string `json:"state"`

	// Message carries updater output for check_updates.
	Message string `json:"message,omitempty"`
}

// PingResult is the response to a ping request.
type PingResult struct {
	Pong bool `json:"pong"`
}
