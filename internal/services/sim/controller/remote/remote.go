// Package remote drives robots from a peer over a WebSocket connection.
//
// For every decision the controller sends a Request and waits for a Response
// carrying the same robot ID. A peer that does not answer within the timeout
// yields an error, which the decision port turns into a guard order. Read
// failures leave a gorilla connection unusable, so the controller redials on
// the next decision.
package remote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/action"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/snapshot"
)

// DefaultTimeout bounds how long a peer may take to answer.
const DefaultTimeout = 2 * time.Second

// Request is sent to the peer for each robot.
type Request struct {
	RobotID int               `json:"robot_id"`
	Robot   snapshot.Self     `json:"robot"`
	Game    snapshot.GameInfo `json:"game"`
}

// Response is the peer's answer.
type Response struct {
	RobotID int           `json:"robot_id"`
	Action  action.Action `json:"action"`
}

// Controller asks a remote peer for decisions.
type Controller struct {
	url     string
	timeout time.Duration
	dialer  *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// Dial connects to the peer at url. A zero timeout uses DefaultTimeout.
func Dial(ctx context.Context, url string, timeout time.Duration) (*Controller, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Controller{url: url, timeout: timeout, dialer: websocket.DefaultDialer}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) connect(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(dialCtx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial robot peer %s: %w", c.url, err)
	}
	c.conn = conn
	return nil
}

// Decide sends the robot's view and waits for the peer's order.
func (c *Controller) Decide(ctx context.Context, self snapshot.Self, info snapshot.GameInfo) (action.Action, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.connect(ctx); err != nil {
			return action.Action{}, err
		}
	}

	a, err := c.exchange(ctx, self, info)
	if err != nil {
		_ = c.conn.Close()
		c.conn = nil
		return action.Action{}, err
	}
	return a, nil
}

func (c *Controller) exchange(ctx context.Context, self snapshot.Self, info snapshot.GameInfo) (action.Action, error) {
	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return action.Action{}, fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.conn.WriteJSON(Request{RobotID: self.RobotID, Robot: self, Game: info}); err != nil {
		return action.Action{}, fmt.Errorf("send decision request for robot %d: %w", self.RobotID, err)
	}

	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return action.Action{}, fmt.Errorf("set read deadline: %w", err)
	}
	var resp Response
	if err := c.conn.ReadJSON(&resp); err != nil {
		return action.Action{}, fmt.Errorf("receive decision for robot %d: %w", self.RobotID, err)
	}
	_ = c.conn.SetReadDeadline(time.Time{})

	if resp.RobotID != self.RobotID {
		return action.Action{}, fmt.Errorf("peer answered for robot %d, want %d", resp.RobotID, self.RobotID)
	}
	return resp.Action, nil
}

// Close closes the connection to the peer.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
