package notifier

import (
	"context"
	"errors"
	"fmt"

	"SignalSentinel/internal/model"
)

// Notifier pushes a cycle's alert batch to an external channel.
type Notifier interface {
	Notify(ctx context.Context, batch []model.AlertRecord) error
	Name() string
}

// Multi fans a batch out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Name() string { return "multi" }

func (m Multi) Notify(ctx context.Context, batch []model.AlertRecord) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, batch); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
