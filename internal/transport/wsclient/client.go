// Package wsclient speaks the gateway websocket protocol and exposes the
// session as the world.Sensor / world.Actuator pair the step engine drives.
//
// The gateway pushes OBS every tick; the client keeps the latest one and
// answers sensor reads from that snapshot. Actuations are request/response:
// each ACT carries a fresh id and blocks until the matching RESULT arrives.
package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"voxelpilot.ai/internal/protocol"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second

	// Bound for synchronous QUERY round-trips and control acks.
	replyTimeout = 2 * time.Second
)

var ErrClosed = errors.New("wsclient: connection closed")

type Client struct {
	conn *websocket.Conn
	log  *log.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	agentID string
	obs     protocol.ObsMsg
	hasObs  bool
	results map[string]chan protocol.ResultMsg
	blocks  map[string]chan protocol.BlockMsg

	obsReady chan struct{}
	obsOnce  sync.Once

	closed    chan struct{}
	closeOnce sync.Once
}

// Dial connects, performs the HELLO/WELCOME handshake and starts the read
// loop. The returned client is not ready for sensor reads until the first
// OBS arrives; use WaitReady.
func Dial(ctx context.Context, url, agentName string, logger *log.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Client{
		conn:     conn,
		log:      logger,
		results:  make(map[string]chan protocol.ResultMsg),
		blocks:   make(map[string]chan protocol.BlockMsg),
		obsReady: make(chan struct{}),
		closed:   make(chan struct{}),
	}

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		AgentName:       agentName,
	}
	if err := c.writeJSON(hello); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send HELLO: %w", err)
	}

	welcome, err := c.readWelcome()
	if err != nil {
		conn.Close()
		return nil, err
	}
	c.agentID = welcome.AgentID
	c.log.Printf("WELCOME agent_id=%s tick_rate=%d seed=%d", welcome.AgentID, welcome.WorldParams.TickRateHz, welcome.WorldParams.Seed)

	go c.readLoop()
	return c, nil
}

func (c *Client) AgentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agentID
}

// WaitReady blocks until the first OBS has been cached.
func (c *Client) WaitReady(ctx context.Context) error {
	select {
	case <-c.obsReady:
		return nil
	case <-c.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.conn.Close()
}

func (c *Client) readWelcome() (protocol.WelcomeMsg, error) {
	var welcome protocol.WelcomeMsg
	_ = c.conn.SetReadDeadline(time.Now().Add(writeTimeout))
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return welcome, fmt.Errorf("read WELCOME: %w", err)
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeWelcome {
		return welcome, fmt.Errorf("expected WELCOME, got %q", base.Type)
	}
	if err := json.Unmarshal(msg, &welcome); err != nil {
		return welcome, fmt.Errorf("decode WELCOME: %w", err)
	}
	if welcome.ProtocolVersion != protocol.Version {
		return welcome, fmt.Errorf("protocol_version %q, want %q", welcome.ProtocolVersion, protocol.Version)
	}
	return welcome, nil
}

func (c *Client) readLoop() {
	defer func() {
		c.closeOnce.Do(func() { close(c.closed) })
		c.failPending()
	}()

	for {
		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeObs:
			var obs protocol.ObsMsg
			if err := json.Unmarshal(msg, &obs); err != nil {
				continue
			}
			c.mu.Lock()
			c.obs = obs
			c.hasObs = true
			c.mu.Unlock()
			c.obsOnce.Do(func() { close(c.obsReady) })

		case protocol.TypeResult:
			var res protocol.ResultMsg
			if err := json.Unmarshal(msg, &res); err != nil {
				continue
			}
			c.mu.Lock()
			ch := c.results[res.ID]
			delete(c.results, res.ID)
			c.mu.Unlock()
			if ch != nil {
				ch <- res
			}

		case protocol.TypeBlock:
			var blk protocol.BlockMsg
			if err := json.Unmarshal(msg, &blk); err != nil {
				continue
			}
			c.mu.Lock()
			ch := c.blocks[blk.ID]
			delete(c.blocks, blk.ID)
			c.mu.Unlock()
			if ch != nil {
				ch <- blk
			}
		}
	}
}

// failPending unblocks every in-flight request after the read loop exits.
// The channels are buffered, so pending map entries just get dropped; waiters
// observe the closed channel instead.
func (c *Client) failPending() {
	c.mu.Lock()
	c.results = make(map[string]chan protocol.ResultMsg)
	c.blocks = make(map[string]chan protocol.BlockMsg)
	c.mu.Unlock()
}

func (c *Client) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *Client) snapshot() (protocol.ObsMsg, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.obs, c.hasObs
}

func newID() string { return uuid.NewString() }

// request sends one ACT and waits for the matching RESULT.
func (c *Client) request(ctx context.Context, act protocol.ActMsg) error {
	res, err := c.requestResult(ctx, act)
	if err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("%s %s: %s: %s", act.Kind, act.ID, res.Code, res.Message)
	}
	return nil
}

func (c *Client) requestResult(ctx context.Context, act protocol.ActMsg) (protocol.ResultMsg, error) {
	ch := make(chan protocol.ResultMsg, 1)
	c.mu.Lock()
	c.results[act.ID] = ch
	c.mu.Unlock()

	if err := c.writeJSON(act); err != nil {
		c.dropResult(act.ID)
		return protocol.ResultMsg{}, err
	}

	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		c.dropResult(act.ID)
		return protocol.ResultMsg{}, ctx.Err()
	case <-c.closed:
		return protocol.ResultMsg{}, ErrClosed
	}
}

func (c *Client) dropResult(id string) {
	c.mu.Lock()
	delete(c.results, id)
	c.mu.Unlock()
}

// query sends one QUERY and waits for the matching BLOCK.
func (c *Client) query(kind string, pos [3]int) (protocol.BlockMsg, error) {
	q := protocol.QueryMsg{
		Type:            protocol.TypeQuery,
		ProtocolVersion: protocol.Version,
		ID:              newID(),
		Kind:            kind,
		Pos:             pos,
	}
	ch := make(chan protocol.BlockMsg, 1)
	c.mu.Lock()
	c.blocks[q.ID] = ch
	c.mu.Unlock()

	if err := c.writeJSON(q); err != nil {
		c.mu.Lock()
		delete(c.blocks, q.ID)
		c.mu.Unlock()
		return protocol.BlockMsg{}, err
	}

	t := time.NewTimer(replyTimeout)
	defer t.Stop()
	select {
	case blk := <-ch:
		return blk, nil
	case <-t.C:
		c.mu.Lock()
		delete(c.blocks, q.ID)
		c.mu.Unlock()
		return protocol.BlockMsg{}, fmt.Errorf("query %s: timed out", kind)
	case <-c.closed:
		return protocol.BlockMsg{}, ErrClosed
	}
}
