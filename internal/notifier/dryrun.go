package notifier

import (
	"context"

	"github.com/charmbracelet/log"
)

// DryRun logs outbound messages instead of delivering them.
type DryRun struct{}

var _ Notifier = DryRun{}

func (DryRun) SendText(_ context.Context, recipient, text string) error {
	log.Info("[Dry Run] Would send message", "recipient", recipient, "text", text)
	return nil
}
