package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"threes/board"
	"threes/communication"
	"threes/game"
	"threes/gamemaster"
)

var ErrMismatchedReply = errors.New("reply does not match request")

// Errors a session may report that keep their identity across the wire.
var remoteErrors = []error{game.ErrIllegalMove, game.ErrGameOver, board.ErrUnknownDirection}

var _ gamemaster.Backend = (*Client)(nil)

// Client is a Backend whose session lives on a server. Requests are sent one
// at a time.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Dial opens a session at url, e.g. ws://localhost:8080/ws.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}

func (c *Client) Board(ctx context.Context) (board.Board, error) {
	reply, err := c.do(ctx, communication.Request{Kind: communication.GetBoard})
	if err != nil {
		return board.Board{}, err
	}
	return board.FromFlat(reply.Board)
}

func (c *Client) NextTile(ctx context.Context) (int, error) {
	reply, err := c.do(ctx, communication.Request{Kind: communication.GetNextTile})
	if err != nil {
		return 0, err
	}
	return reply.Tile, nil
}

func (c *Client) MakeMove(ctx context.Context, d board.Direction) error {
	_, err := c.do(ctx, communication.Request{Kind: communication.MakeMove, Direction: d.String()})
	return err
}

func (c *Client) State(ctx context.Context) (gamemaster.State, error) {
	reply, err := c.do(ctx, communication.Request{Kind: communication.GetState})
	if err != nil {
		return 0, err
	}
	return gamemaster.ParseState(reply.State)
}

func (c *Client) Restart(ctx context.Context) error {
	_, err := c.do(ctx, communication.Request{Kind: communication.Restart})
	return err
}

func (c *Client) do(ctx context.Context, req communication.Request) (communication.Reply, error) {
	if err := ctx.Err(); err != nil {
		return communication.Reply{}, err
	}
	req.ID = uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, _ := ctx.Deadline()
	_ = c.conn.SetWriteDeadline(deadline)
	_ = c.conn.SetReadDeadline(deadline)

	// A cancelled request leaves its reply unread, so the connection cannot be
	// reused and is closed to unblock the read.
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.Close()
	})
	defer stop()

	if err := c.conn.WriteJSON(req); err != nil {
		return communication.Reply{}, c.failed(ctx, "send", req.Kind, err)
	}
	var reply communication.Reply
	if err := c.conn.ReadJSON(&reply); err != nil {
		return communication.Reply{}, c.failed(ctx, "read", req.Kind, err)
	}
	if reply.ID != req.ID {
		return communication.Reply{}, fmt.Errorf("%w: sent %s, got %q", ErrMismatchedReply, req.ID, reply.ID)
	}
	if reply.Error != "" {
		return reply, remoteError(reply.Error)
	}
	return reply, nil
}

func (c *Client) failed(ctx context.Context, op string, kind communication.Kind, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s request interrupted: %w", kind, ctxErr)
	}
	return fmt.Errorf("failed to %s %s request: %w", op, kind, err)
}

func remoteError(msg string) error {
	for _, sentinel := range remoteErrors {
		if rest, ok := strings.CutPrefix(msg, sentinel.Error()); ok {
			return fmt.Errorf("%w%s", sentinel, rest)
		}
	}
	return errors.New(msg)
}
