package temporal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
	"github.com/leowmjw/go-countdown-timeline/pkg/store"
)

// Activities is registered with the worker as a struct; each method name is its activity name.
type Activities struct {
	logger *slog.Logger
	store  store.DocumentStore
}

// NewActivities creates the plan activities backed by s.
func NewActivities(logger *slog.Logger, s store.DocumentStore) *Activities {
	return &Activities{
		logger: logger,
		store:  s,
	}
}

// LoadPlanActivity returns the stored plan, or the default plan when none can be read.
func (a *Activities) LoadPlanActivity(ctx context.Context, planID string) (plan.Document, error) {
	a.logger.Info("Loading plan", "planID", planID)
	return store.LoadOrDefault(ctx, a.store, planID, a.logger), nil
}

// SavePlanActivity persists doc under planID.
func (a *Activities) SavePlanActivity(ctx context.Context, planID string, doc plan.Document) error {
	if err := a.store.Save(ctx, planID, doc); err != nil {
		a.logger.Error("Failed to save plan", "planID", planID, "error", err)
		return fmt.Errorf("failed to save plan: %w", err)
	}
	a.logger.Debug("Saved plan", "planID", planID, "streams", len(doc.Streams))
	return nil
}
