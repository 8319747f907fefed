package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Marcos5333/BotHltv/internal/transport"
	"github.com/charmbracelet/log"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

var _ transport.Source = (*Stream)(nil)

// Stream reads chat events from the bridge WebSocket and reconnects with backoff.
type Stream struct {
	wsURL   string
	session SessionOptions

	maxReconnectAttempts int
	reconnectDelay       time.Duration
	pingInterval         time.Duration
}

func NewStream(wsURL string, session SessionOptions, maxReconnectAttempts int) *Stream {
	return &Stream{
		wsURL:                wsURL,
		session:              session,
		maxReconnectAttempts: maxReconnectAttempts,
		reconnectDelay:       500 * time.Millisecond,
		pingInterval:         30 * time.Second,
	}
}

// Run returns nil when ctx is cancelled, or an error once the bridge stayed
// unreachable for maxReconnectAttempts consecutive dials.
func (s *Stream) Run(ctx context.Context, out chan<- transport.Inbound) error {
	attempt := 0
	for {
		conn, err := s.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			attempt++
			if s.maxReconnectAttempts > 0 && attempt >= s.maxReconnectAttempts {
				return fmt.Errorf("bridge unreachable after %d attempts: %w", attempt, err)
			}
			log.Warn("Bridge dial failed", "attempt", attempt, "error", err)
			if !sleep(ctx, backoffDuration(attempt, s.reconnectDelay, 30*time.Second)) {
				return nil
			}
			continue
		}

		attempt = 0
		log.Info("Connected to bridge", "url", s.wsURL)
		err = s.consume(ctx, conn, out)
		_ = conn.Close(websocket.StatusNormalClosure, "close")
		if ctx.Err() != nil {
			return nil
		}
		log.Warn("Bridge connection lost, reconnecting", "error", err)
	}
}

func (s *Stream) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, s.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      s.headers(),
	})
	return conn, err
}

func (s *Stream) headers() http.Header {
	hdr := http.Header{}
	hdr.Set("X-Headless", strconv.FormatBool(s.session.Headless))
	if s.session.SessionDir != "" {
		hdr.Set("X-Session-Path", s.session.SessionDir)
	}
	return hdr
}

func (s *Stream) consume(ctx context.Context, conn *websocket.Conn, out chan<- transport.Inbound) error {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.pingLoop(connCtx, cancel, conn)

	for {
		var f frame
		if err := wsjson.Read(connCtx, conn, &f); err != nil {
			return err
		}
		if !f.isMessage() {
			continue
		}
		select {
		case out <- f.toInbound():
		case <-connCtx.Done():
			return connCtx.Err()
		}
	}
}

// pingLoop cancels the connection after two consecutive failed pings.
func (s *Stream) pingLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	t := time.NewTicker(s.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, pcancel := context.WithTimeout(ctx, 3*time.Second)
			err := conn.Ping(pctx)
			pcancel()
			if err == nil {
				failures = 0
				continue
			}
			if errors.Is(err, context.Canceled) {
				return
			}
			failures++
			if failures >= 2 {
				log.Warn("Bridge ping failed twice, dropping connection", "error", err)
				cancel()
				return
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
