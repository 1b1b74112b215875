package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"

	"github.com/ivanpozdin/patchsim/patch"
)

const (
	writeWait        = 1 * time.Second
	maxMessageSize   = 8192
	closeGracePeriod = 10 * time.Second

	// pubResolution bounds how often a client is sent a fresh OutputEntry;
	// the feed is idempotent, so updates arriving faster than this are
	// dropped rather than queued.
	pubResolution  = time.Millisecond * 100
	pingResolution = time.Millisecond * 200
	pongWait       = pingResolution * 4
)

var upgrader = websocket.Upgrader{}

// ErrPongDeadlineExceeded indicates the peer stopped answering liveness pings.
var ErrPongDeadlineExceeded = errors.New("client disconnect, pong deadline exceeded")

// client pumps one hub subscription to one websocket connection. gorilla's
// websocket.Conn allows at most one concurrent reader and one concurrent
// writer; rather than guard that with semaphores shared across arbitrary
// callers, readPump and writePump are each the connection's sole owner of
// their direction, the same single-goroutine-owns-the-resource discipline
// hub.run uses for the subscriber map.
type client struct {
	conn    *websocket.Conn
	updates chan patch.OutputEntry
}

func newClient(updates chan patch.OutputEntry, w http.ResponseWriter, r *http.Request) (*client, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, err
	}
	conn.SetReadLimit(maxMessageSize)
	return &client{conn: conn, updates: updates}, nil
}

// sync runs the connection's read and write pumps until the peer
// disconnects, the pong deadline lapses, or ctx is cancelled, then sends a
// close frame and releases the connection.
func (c *client) sync(ctx context.Context) error {
	pumpCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pong := make(chan struct{}, 1)
	c.conn.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	readDone := make(chan struct{})
	go func() {
		c.readPump()
		cancel()
		close(readDone)
	}()

	writeErr := c.writePump(pumpCtx, pong)
	cancel()
	<-readDone

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	c.conn.Close()

	return writeErr
}

// readPump only drains the connection so incoming pong frames reach the
// handler registered in sync; any read error, including the peer's own
// close frame, ends the session. There is no context-based early exit from
// a blocked ReadMessage, so closing the connection is what unblocks it.
func (c *client) readPump() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump owns every write to the connection: liveness pings on
// pingResolution and patch.OutputEntry values off updates, throttled to at
// most one publish per pubResolution.
func (c *client) writePump(ctx context.Context, pong <-chan struct{}) error {
	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	var lastPublish time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			if err := c.ping(); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		case entry, ok := <-c.updates:
			if !ok {
				return nil
			}
			if time.Since(lastPublish) < pubResolution {
				continue
			}
			lastPublish = time.Now()
			if err := c.publish(entry); err != nil {
				return err
			}
		}
	}
}

func (c *client) ping() error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set ping deadline: %w", err)
	}
	if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil && isError(err) {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

func (c *client) publish(entry patch.OutputEntry) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.conn.WriteJSON(entry); err != nil && isError(err) {
		return fmt.Errorf("publish failed: %w", err)
	}
	return nil
}

func isError(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}
