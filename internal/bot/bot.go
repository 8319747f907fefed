// Package bot connects a transport's inbound stream to the conversation machine.
package bot

import (
	"context"
	"strings"
	"sync"

	"github.com/Marcos5333/BotHltv/internal/conversation"
	"github.com/Marcos5333/BotHltv/internal/transport"
	"github.com/charmbracelet/log"
)

// Handler runs one conversation turn.
type Handler interface {
	Handle(ctx context.Context, in transport.Inbound) conversation.Action
}

type lane struct {
	pending []transport.Inbound
}

// Bot routes inbound messages to the handler. Messages from one sender are
// handled one at a time in arrival order; different senders run concurrently.
type Bot struct {
	source  transport.Source
	handler Handler

	mu     sync.Mutex
	lanes  map[string]*lane
	closed bool
	wg     sync.WaitGroup
}

func New(source transport.Source, handler Handler) *Bot {
	return &Bot{
		source:  source,
		handler: handler,
		lanes:   make(map[string]*lane),
	}
}

// Run consumes the transport until ctx is cancelled or the transport fails,
// then waits for queued turns to finish.
func (b *Bot) Run(ctx context.Context) error {
	events := make(chan transport.Inbound, 64)
	errCh := make(chan error, 1)
	go func() {
		errCh <- b.source.Run(ctx, events)
	}()

	defer b.Close()
	for {
		select {
		case err := <-errCh:
			for {
				select {
				case in := <-events:
					b.Dispatch(ctx, in)
				default:
					return err
				}
			}
		case in := <-events:
			b.Dispatch(ctx, in)
		}
	}
}

// Dispatch queues one message. Self-authored, group and anonymous messages are dropped.
func (b *Bot) Dispatch(ctx context.Context, in transport.Inbound) bool {
	if in.FromSelf || in.IsGroup || strings.TrimSpace(in.Sender) == "" {
		log.Debug("Ignoring message", "sender", in.Sender, "fromSelf", in.FromSelf, "group", in.IsGroup)
		return false
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}
	l, running := b.lanes[in.Sender]
	if !running {
		l = &lane{}
		b.lanes[in.Sender] = l
		b.wg.Add(1)
	}
	l.pending = append(l.pending, in)
	b.mu.Unlock()

	if !running {
		go b.drain(context.WithoutCancel(ctx), in.Sender, l)
	}
	return true
}

func (b *Bot) drain(ctx context.Context, sender string, l *lane) {
	defer b.wg.Done()
	for {
		b.mu.Lock()
		if len(l.pending) == 0 {
			delete(b.lanes, sender)
			b.mu.Unlock()
			return
		}
		in := l.pending[0]
		l.pending = l.pending[1:]
		b.mu.Unlock()

		b.handler.Handle(ctx, in)
	}
}

// Close stops accepting messages and waits for queued turns.
func (b *Bot) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
}
