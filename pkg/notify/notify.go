// Package notify delivers run summaries to operators. Delivery failures
// never fail a run; the pipeline logs them and moves on.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Notifier delivers one run summary.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, subject, body string) error
}

// Manager fans a summary out to every configured notifier.
type Manager struct {
	notifiers []Notifier
}

func NewManager(notifiers ...Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// Broadcast sends to all notifiers and joins every failure into one error.
func (m *Manager) Broadcast(ctx context.Context, subject, body string) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, subject, body); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
