// Package bridge talks to a WhatsApp Web bridge sidecar: inbound messages
// arrive over a WebSocket, replies go out through its HTTP API.
package bridge

import (
	"time"

	"github.com/Marcos5333/BotHltv/internal/transport"
)

// frame is the JSON payload pushed by the bridge for each chat event.
type frame struct {
	Event      string `json:"event"`
	From       string `json:"from"`
	Body       string `json:"body"`
	FromMe     bool   `json:"fromMe"`
	IsGroupMsg bool   `json:"isGroupMsg"`
	Timestamp  int64  `json:"timestamp"`
}

func (f frame) isMessage() bool {
	return f.Event == "" || f.Event == "message"
}

func (f frame) toInbound() transport.Inbound {
	at := time.Now()
	if f.Timestamp > 0 {
		at = time.Unix(f.Timestamp, 0)
	}
	return transport.Inbound{
		Sender:     f.From,
		Text:       f.Body,
		FromSelf:   f.FromMe,
		IsGroup:    f.IsGroupMsg,
		ReceivedAt: at,
	}
}

type sendRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// SessionOptions are forwarded to the bridge at handshake so it can start its browser.
type SessionOptions struct {
	Headless   bool
	SessionDir string
}

func backoffDuration(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 10 {
		attempt = 10
	}
	d := time.Duration(1<<uint(attempt-1)) * base
	if d > max {
		return max
	}
	return d
}
