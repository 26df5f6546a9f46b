package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
)

// Client talks to the resident process.
type Client struct {
	socketPath string
	timeout    time.Duration
	requestID  atomic.Uint64
}

// NewClient creates a new client.
func NewClient(cfg Config) *Client {
	return &Client{
		socketPath: cfg.SocketPath,
		timeout:    cfg.Timeout,
	}
}

// Connect establishes a connection to the resident process. Failure is
// reported as an IPCUnavailable error.
func (c *Client) Connect() (net.Conn, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, nxerrors.New(nxerrors.ErrCodeIPCUnavailable, "nexus is not running", err).
			WithDetail("socket", c.socketPath).
			WithSuggestion("Start it with 'nexus'")
	}
	return conn, nil
}

// IsRunning checks if the resident process is accepting connections.
func (c *Client) IsRunning() bool {
	conn, err := c.Connect()
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Ping checks if the resident process is responsive.
func (c *Client) Ping(ctx context.Context) error {
	var res PingResult
	return c.call(ctx, MethodPing, nil, &res)
}

// Search runs a query in the resident process.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]SearchResult, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	var results []SearchResult
	if err := c.call(ctx, MethodSearch, params, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Status retrieves resident process status.
func (c *Client) Status(ctx context.Context) (*StatusResult, error) {
	var status StatusResult
	if err := c.call(ctx, MethodStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Show asks the resident process to show its window.
func (c *Client) Show(ctx context.Context) (CommandResult, error) {
	return c.Command(ctx, MethodShow)
}

// Hide asks the resident process to hide its window.
func (c *Client) Hide(ctx context.Context) (CommandResult, error) {
	return c.Command(ctx, MethodHide)
}

// Toggle flips window visibility.
func (c *Client) Toggle(ctx context.Context) (CommandResult, error) {
	return c.Command(ctx, MethodToggle)
}

// Exit terminates the resident process.
func (c *Client) Exit(ctx context.Context) (CommandResult, error) {
	return c.Command(ctx, MethodExit)
}

// CheckForUpdates forwards an update check to the resident process.
func (c *Client) CheckForUpdates(ctx context.Context) (CommandResult, error) {
	return c.Command(ctx, MethodCheckUpdates)
}

// Command invokes one of CommandMethods.
func (c *Client) Command(ctx context.Context, method string) (CommandResult, error) {
	if !IsCommand(method) {
		return CommandResult{}, fmt.Errorf("unknown command %q", method)
	}
	var res CommandResult
	err := c.call(ctx, method, nil, &res)
	return res, err
}

// call sends one request and decodes the result into out.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	conn, err := c.Connect()
	if err != nil {
		return err
	}
	defer conn.Close()

	// Set deadline from context or timeout
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set deadline: %w", err)
	}

	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID(),
	}

	if err := c.send(conn, req); err != nil {
		return err
	}

	resp, err := c.receive(conn)
	if err != nil {
		return err
	}

	if resp.Error != nil {
		return fmt.Errorf("%s failed: %w", method, resp.Error)
	}

	resultData, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := json.Unmarshal(resultData, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}

// send encodes and writes a request to the connection.
func (c *Client) send(conn net.Conn, req Request) error {
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nxerrors.New(nxerrors.ErrCodeIPCTimeout, "failed to send request", err)
	}
	return nil
}

// receive reads and decodes a response from the connection.
func (c *Client) receive(conn net.Conn) (*Response, error) {
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, nxerrors.New(nxerrors.ErrCodeIPCTimeout, "failed to receive response", err)
	}
	return &resp, nil
}

// nextID generates a unique request ID.
func (c *Client) nextID() string {
	id := c.requestID.Add(1)
	return fmt.Sprintf("req-%d", id)
}
