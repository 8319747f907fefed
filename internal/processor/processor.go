package processor

import (
	"context"
	"errors"
	"time"

	"github.com/Marcos5333/BotHltv/internal/history"
	"github.com/Marcos5333/BotHltv/internal/match"
	"github.com/Marcos5333/BotHltv/internal/metrics"
	"github.com/Marcos5333/BotHltv/internal/msgcat"
	"github.com/Marcos5333/BotHltv/internal/notifier"
	"github.com/Marcos5333/BotHltv/internal/pandascore"
	"github.com/Marcos5333/BotHltv/internal/pubsub"
	"github.com/Marcos5333/BotHltv/internal/subscription"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const defaultInterval = 60 * time.Second

// New creates a new Processor.
func New(provider pandascore.Provider, registry Registry, notifier notifier.Notifier, journal history.Store, publisher pubsub.Publisher, metrics metrics.Metrics, cfg Config) *Processor {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Messages == nil {
		cfg.Messages = msgcat.MustDefault()
	}
	if cfg.Formatter.Location == nil {
		cfg.Formatter = match.NewFormatter(time.UTC)
	}
	if publisher == nil {
		publisher = pubsub.Noop{}
	}
	return &Processor{
		provider: provider,
		registry: registry,
		notifier: notifier,
		journal:  journal,
		pubsub:   publisher,
		metrics:  metrics,
		cfg:      cfg,
		seen:     make(map[string]match.Match),
		now:      time.Now,
	}
}

// Run ticks every configured interval until ctx is cancelled. A slow tick
// delays the next one; ticks never overlap. A tick already running when ctx is
// cancelled is allowed to finish.
func (p *Processor) Run(ctx context.Context) {
	log.Info("Starting notification loop", "interval", p.cfg.Interval, "staleTicks", p.cfg.StaleTicks)
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("Notification loop stopped")
			return
		case <-ticker.C:
			p.Tick(context.WithoutCancel(ctx), false)
		}
	}
}

// Tick runs one pass, waiting for any tick already in flight.
func (p *Processor) Tick(ctx context.Context, dryRun bool) {
	p.tickMu.Lock()
	defer p.tickMu.Unlock()
	p.tick(ctx, dryRun)
}

// TryTick runs one pass unless another is in flight, and reports whether it ran.
func (p *Processor) TryTick(ctx context.Context, dryRun bool) bool {
	if !p.tickMu.TryLock() {
		return false
	}
	defer p.tickMu.Unlock()
	p.tick(ctx, dryRun)
	return true
}

func (p *Processor) tick(ctx context.Context, dryRun bool) {
	tickID := uuid.NewString()
	start := time.Now()
	p.metrics.IncTicks()
	defer func() {
		p.metrics.ObserveTickDuration(time.Since(start).Seconds())
	}()

	if p.registry.Len() == 0 {
		p.metrics.SetActiveSubscriptions(0)
		log.Debug("No subscriptions, skipping tick", "tick", tickID)
		return
	}

	matches, err := p.provider.ListMatches(ctx)
	if err != nil {
		var epErr *pandascore.EndpointError
		if !errors.As(err, &epErr) || epErr.Has(pandascore.EndpointRunning) {
			p.metrics.IncTicksSkipped()
			log.Warn("Live match listing failed, skipping tick", "tick", tickID, "error", err)
			return
		}
		log.Warn("Match listing incomplete, continuing with live matches", "tick", tickID, "error", err)
	}

	all := make(map[string]match.Match, len(matches))
	for _, m := range matches {
		all[m.ID] = m
	}
	live := make(map[string]match.Match)
	for _, m := range match.Classify(matches, match.BucketLive) {
		live[m.ID] = m
	}

	subs := p.registry.Snapshot()
	log.Info("Starting tick", "tick", tickID, "subscriptions", len(subs), "live", len(live), "dryRun", dryRun)
	notified := 0
	for _, sub := range subs {
		if m, ok := all[sub.MatchID]; ok {
			p.seen[sub.MatchID] = m
		}
		m, ok := live[sub.MatchID]
		if !ok {
			p.missed(ctx, tickID, sub, dryRun)
			continue
		}
		if p.observe(ctx, tickID, sub, m, dryRun) {
			notified++
		}
	}
	p.forgetUnfollowed()
	p.metrics.SetActiveSubscriptions(p.registry.Len())
	log.Info("Tick finished", "tick", tickID, "notified", notified, "duration", time.Since(start))
}

// observe notifies sub when the match moved since the last notification.
func (p *Processor) observe(ctx context.Context, tickID string, sub subscription.Entry, m match.Match, dryRun bool) bool {
	round, err := p.provider.LatestRound(ctx, m.ID)
	if err != nil {
		log.Debug("Round detail unavailable", "tick", tickID, "matchID", m.ID, "error", err)
		round = nil
	}
	fp := Fingerprint(m, round)
	text := p.cfg.Formatter.Update(m, round)

	if dryRun {
		if last, ok := p.registry.LastFingerprint(sub.Recipient); !ok || last != fp {
			log.Info("[Dry Run] Would notify", "tick", tickID, "recipient", sub.Recipient, "matchID", m.ID, "fingerprint", fp)
			return true
		}
		return false
	}

	if !p.registry.Advance(sub.Recipient, m.ID, fp) {
		return false
	}

	d := history.Delivery{
		ID:          uuid.NewString(),
		Recipient:   sub.Recipient,
		MatchID:     m.ID,
		Fingerprint: fp,
		Body:        text,
		Status:      history.StatusSent,
		SentAt:      p.now(),
	}
	if err := p.notifier.SendText(ctx, sub.Recipient, text); err != nil {
		log.Error("Failed to deliver update", "tick", tickID, "recipient", sub.Recipient, "matchID", m.ID, "error", err)
		d.Status = history.StatusFailed
		d.Error = err.Error()
		p.metrics.IncNotificationsFailed()
	} else {
		p.metrics.IncNotificationsSent()
		log.Info("Delivered update", "tick", tickID, "recipient", sub.Recipient, "matchID", m.ID, "fingerprint", fp)
	}
	p.record(ctx, d)

	if d.Status == history.StatusSent {
		update := pubsub.ScoreUpdate{
			Recipient:   sub.Recipient,
			MatchID:     m.ID,
			Home:        m.HomeName(),
			Away:        m.AwayName(),
			HomeScore:   m.HomeScore,
			AwayScore:   m.AwayScore,
			Fingerprint: fp,
			At:          d.SentAt,
		}
		if round != nil {
			update.Map, update.HomeRounds, update.AwayRounds = round.Map, round.Home, round.Away
		}
		if err := p.pubsub.SendMessage(ctx, pubsub.EventScoreUpdated, update); err != nil {
			log.Warn("Failed to publish score update", "matchID", m.ID, "error", err)
		}
	}
	return true
}

// missed counts a tick in which the followed match was not live and evicts the
// subscription once it has been stale for too long.
func (p *Processor) missed(ctx context.Context, tickID string, sub subscription.Entry, dryRun bool) {
	if p.cfg.StaleTicks <= 0 || dryRun {
		return
	}
	misses := p.registry.MarkMissed(sub.Recipient, sub.MatchID)
	if misses < p.cfg.StaleTicks {
		log.Debug("Followed match not live", "tick", tickID, "recipient", sub.Recipient, "matchID", sub.MatchID, "misses", misses)
		return
	}
	if !p.registry.UnsubscribeIf(sub.Recipient, sub.MatchID) {
		return
	}
	p.metrics.IncEvictions()
	log.Info("Evicted stale subscription", "tick", tickID, "recipient", sub.Recipient, "matchID", sub.MatchID, "misses", misses)

	text := p.cfg.Messages.Text(msgcat.WatchClosed, nil)
	if m, ok := p.seen[sub.MatchID]; ok {
		text = p.cfg.Messages.Text(msgcat.WatchEnded, map[string]string{"Home": m.HomeName(), "Away": m.AwayName()})
	}
	if err := p.notifier.SendText(ctx, sub.Recipient, text); err != nil {
		log.Error("Failed to send eviction notice", "recipient", sub.Recipient, "error", err)
	}
	evt := pubsub.SubscriptionEvicted{Recipient: sub.Recipient, MatchID: sub.MatchID, Misses: misses, At: p.now()}
	if err := p.pubsub.SendMessage(ctx, pubsub.EventSubscriptionEvicted, evt); err != nil {
		log.Warn("Failed to publish eviction", "matchID", sub.MatchID, "error", err)
	}
}

// forgetUnfollowed drops remembered matches nobody follows any more.
func (p *Processor) forgetUnfollowed() {
	followed := make(map[string]bool, len(p.seen))
	for _, sub := range p.registry.Snapshot() {
		followed[sub.MatchID] = true
	}
	for id := range p.seen {
		if !followed[id] {
			delete(p.seen, id)
		}
	}
}

func (p *Processor) record(ctx context.Context, d history.Delivery) {
	if p.journal == nil {
		return
	}
	if err := p.journal.Record(ctx, d); err != nil {
		log.Warn("Failed to journal delivery", "id", d.ID, "error", err)
	}
}
