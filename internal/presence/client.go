package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/genricoloni/ytpresence/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// The desktop client listens on discord-ipc-0 through discord-ipc-9
const maxPipeIndex = 10

const component = "presence"

type handshake struct {
	V        int    `json:"v"`
	ClientID string `json:"client_id"`
}

type command struct {
	Cmd   string          `json:"cmd"`
	Args  setActivityArgs `json:"args"`
	Nonce string          `json:"nonce"`
}

type setActivityArgs struct {
	PID      int       `json:"pid"`
	Activity *activity `json:"activity"`
}

type activity struct {
	Type       int         `json:"type,omitempty"`
	Details    string      `json:"details,omitempty"`
	State      string      `json:"state,omitempty"`
	Assets     *assets     `json:"assets,omitempty"`
	Timestamps *timestamps `json:"timestamps,omitempty"`
	Buttons    []button    `json:"buttons,omitempty"`
}

type assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

type timestamps struct {
	Start int64 `json:"start,omitempty"`
}

type button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type response struct {
	Cmd   string `json:"cmd"`
	Evt   string `json:"evt"`
	Nonce string `json:"nonce"`
	Data  struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"data"`
}

type dialFunc func(ctx context.Context) (net.Conn, error)

// IPCClient speaks the local Discord RPC protocol over a unix socket or named pipe.
// A failed read or write drops the connection; the next Connect dials again.
type IPCClient struct {
	logger   *zap.Logger
	clientID string
	pid      int
	dial     dialFunc

	mu   sync.Mutex
	conn net.Conn
}

func NewIPCClient(logger *zap.Logger, cfg domain.Config) *IPCClient {
	return &IPCClient{
		logger:   logger,
		clientID: cfg.DiscordClientID(),
		pid:      os.Getpid(),
		dial:     dialDiscord,
	}
}

// Connect performs the handshake and waits for the READY dispatch. No-op when already connected.
func (c *IPCClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return domain.Wrap(domain.ErrConnection, component, "dial", err)
	}

	if err := c.handshake(ctx, conn); err != nil {
		_ = conn.Close()
		return domain.Wrap(domain.ErrConnection, component, "handshake", err)
	}

	c.conn = conn
	c.logger.Info("Connected to Discord", zap.String("client_id", c.clientID))
	return nil
}

func (c *IPCClient) handshake(ctx context.Context, conn net.Conn) error {
	stop := bindDeadline(ctx, conn)
	defer stop()

	if err := writeFrame(conn, opHandshake, handshake{V: 1, ClientID: c.clientID}); err != nil {
		return err
	}

	op, body, err := readFrame(conn)
	if err != nil {
		return err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("malformed handshake reply: %w", err)
	}
	if op == opClose {
		return fmt.Errorf("closed by peer: %s", resp.Data.Message)
	}
	if resp.Cmd != "DISPATCH" || resp.Evt != "READY" {
		return fmt.Errorf("unexpected handshake reply %s/%s", resp.Cmd, resp.Evt)
	}
	return nil
}

// Update replaces the displayed activity
func (c *IPCClient) Update(ctx context.Context, payload domain.PresencePayload) error {
	return c.setActivity(ctx, toActivity(payload))
}

// Clear removes the displayed activity
func (c *IPCClient) Clear(ctx context.Context) error {
	return c.setActivity(ctx, nil)
}

func (c *IPCClient) setActivity(ctx context.Context, act *activity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return domain.Wrap(domain.ErrConnection, component, "set activity", fmt.Errorf("not connected"))
	}

	stop := bindDeadline(ctx, c.conn)
	defer stop()

	nonce := uuid.NewString()
	cmd := command{
		Cmd:   "SET_ACTIVITY",
		Args:  setActivityArgs{PID: c.pid, Activity: act},
		Nonce: nonce,
	}
	if err := writeFrame(c.conn, opFrame, cmd); err != nil {
		c.dropLocked()
		return domain.Wrap(domain.ErrConnection, component, "set activity", err)
	}

	for {
		op, body, err := readFrame(c.conn)
		if err != nil {
			c.dropLocked()
			return domain.Wrap(domain.ErrConnection, component, "set activity", err)
		}

		switch op {
		case opPing:
			if err := writeFrame(c.conn, opPong, json.RawMessage(body)); err != nil {
				c.dropLocked()
				return domain.Wrap(domain.ErrConnection, component, "pong", err)
			}
			continue
		case opClose:
			c.dropLocked()
			return domain.Wrap(domain.ErrConnection, component, "set activity", fmt.Errorf("closed by peer"))
		}

		var resp response
		if err := json.Unmarshal(body, &resp); err != nil {
			c.logger.Debug("Ignoring malformed frame", zap.Error(err))
			continue
		}
		if resp.Nonce != nonce {
			continue
		}
		if resp.Evt == "ERROR" {
			return domain.Wrap(domain.ErrPublish, component, "set activity",
				fmt.Errorf("rejected (%d): %s", resp.Data.Code, resp.Data.Message))
		}
		return nil
	}
}

// Close sends a close frame and releases the socket
func (c *IPCClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	_ = writeFrame(c.conn, opClose, struct{}{})
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *IPCClient) dropLocked() {
	if c.conn == nil {
		return
	}
	c.logger.Warn("Discord connection lost")
	_ = c.conn.Close()
	c.conn = nil
}

// bindDeadline applies the context deadline to conn and also unblocks it on cancellation
func bindDeadline(ctx context.Context, conn net.Conn) func() {
	if d, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(d)
	}
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
		close(fired)
	})
	return func() {
		if !stop() {
			<-fired
		}
		_ = conn.SetDeadline(time.Time{})
	}
}

func toActivity(p domain.PresencePayload) *activity {
	act := &activity{
		Type:    int(p.Activity),
		Details: p.Details,
		State:   p.State,
		Assets: &assets{
			LargeImage: p.LargeImage,
			LargeText:  p.LargeText,
			SmallImage: p.SmallImage,
			SmallText:  p.SmallText,
		},
	}
	if !p.Start.IsZero() {
		act.Timestamps = &timestamps{Start: p.Start.Unix()}
	}
	for _, b := range p.Buttons {
		act.Buttons = append(act.Buttons, button{Label: b.Label, URL: b.URL})
	}
	return act
}
