package temporal

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
)

const (
	// Workflow IDs
	PlanWorkflowIDPrefix = "plan-"

	// DefaultTaskQueue is polled by the worker in cmd/server
	DefaultTaskQueue = "countdown-plan-task-queue"

	// Signal names
	EditSignalName   = "plan-edit"
	ImportSignalName = "plan-import"
	CloseSignalName  = "plan-close"

	// Query names
	ProjectionQueryName = "projection"
	DocumentQueryName   = "document"

	// Activity names
	LoadPlanActivityName = "LoadPlanActivity"
	SavePlanActivityName = "SavePlanActivity"

	// Default values
	DefaultContinueAsNewThreshold = 500 // applied changes before ContinueAsNew
)

// EditSignal carries field edits, applied in order.
type EditSignal struct {
	Edits []plan.Edit `json:"edits"`
}

// ImportSignal replaces the whole document.
type ImportSignal struct {
	Document plan.Document `json:"document"`
}

// PlanWorkflowState is the workflow's in-memory view of one plan.
type PlanWorkflowState struct {
	PlanID   string        `json:"plan_id"`
	Document plan.Document `json:"document"`
	Changes  int           `json:"changes"`
	Rejected int           `json:"rejected"`
	Dirty    bool          `json:"dirty"`
}

// PlanWorkflow is the single writer for a plan. Every edit and import goes through its
// signals; readers use the projection and document queries.
func PlanWorkflow(ctx workflow.Context, planID string) (*plan.Document, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting plan workflow", "planID", planID)

	ao := workflow.ActivityOptions{
		ScheduleToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	state := PlanWorkflowState{PlanID: planID}
	if err := workflow.ExecuteActivity(ctx, LoadPlanActivityName, planID).Get(ctx, &state.Document); err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	if err := workflow.SetQueryHandler(ctx, ProjectionQueryName, func(zoomIndex int) (plan.Projection, error) {
		return plan.Project(state.Document, zoomIndex, plan.DefaultBaseWidth), nil
	}); err != nil {
		return nil, fmt.Errorf("failed to register projection query: %w", err)
	}
	if err := workflow.SetQueryHandler(ctx, DocumentQueryName, func() (plan.Document, error) {
		return state.Document, nil
	}); err != nil {
		return nil, fmt.Errorf("failed to register document query: %w", err)
	}

	editChan := workflow.GetSignalChannel(ctx, EditSignalName)
	importChan := workflow.GetSignalChannel(ctx, ImportSignalName)
	closeChan := workflow.GetSignalChannel(ctx, CloseSignalName)

	closed := false
	cancelled := false

	selector := workflow.NewSelector(ctx)
	selector.AddReceive(editChan, func(c workflow.ReceiveChannel, more bool) {
		var sig EditSignal
		c.Receive(ctx, &sig)
		applyEdits(ctx, &state, sig.Edits)
	})
	selector.AddReceive(importChan, func(c workflow.ReceiveChannel, more bool) {
		var sig ImportSignal
		c.Receive(ctx, &sig)
		if err := sig.Document.Validate(); err != nil {
			logger.Warn("Rejected import", "planID", planID, "error", err)
			state.Rejected++
			return
		}
		state.Document = sig.Document.Clone()
		state.Changes++
		state.Dirty = true
	})
	selector.AddReceive(closeChan, func(c workflow.ReceiveChannel, more bool) {
		c.Receive(ctx, nil)
		closed = true
	})
	selector.AddReceive(ctx.Done(), func(c workflow.ReceiveChannel, more bool) {
		cancelled = true
	})

	for {
		selector.Select(ctx)

		if cancelled {
			logger.Info("Plan workflow cancelled", "planID", planID)
			return nil, ctx.Err()
		}

		if state.Dirty {
			if err := workflow.ExecuteActivity(ctx, SavePlanActivityName, planID, state.Document).Get(ctx, nil); err != nil {
				// keep serving; the next change retries the save
				logger.Error("Failed to save plan", "planID", planID, "error", err)
			} else {
				state.Dirty = false
			}
		}

		if closed {
			logger.Info("Plan workflow closed", "planID", planID, "changes", state.Changes, "rejected", state.Rejected)
			return &state.Document, nil
		}

		if state.Changes >= DefaultContinueAsNewThreshold && !state.Dirty && !selector.HasPending() {
			logger.Info("Continuing as new", "planID", planID, "changes", state.Changes)
			return nil, workflow.NewContinueAsNewError(ctx, PlanWorkflow, planID)
		}
	}
}

// applyEdits applies each edit on its own. A rejected edit is logged and skipped.
func applyEdits(ctx workflow.Context, state *PlanWorkflowState, edits []plan.Edit) {
	logger := workflow.GetLogger(ctx)

	for i, e := range edits {
		if e.NeedsStreamID() {
			var id string
			err := workflow.SideEffect(ctx, func(workflow.Context) interface{} {
				return plan.NewStreamID()
			}).Get(&id)
			if err != nil {
				logger.Error("Failed to assign stream id", "planID", state.PlanID, "error", err)
				state.Rejected++
				continue
			}
			e = e.WithStreamID(id)
		}

		next, err := plan.ApplyEdit(state.Document, e)
		if err != nil {
			logger.Warn("Rejected edit", "planID", state.PlanID, "index", i, "op", string(e.Op), "error", err)
			state.Rejected++
			continue
		}
		state.Document = next
		state.Changes++
		state.Dirty = true
	}
}

// GeneratePlanWorkflowID creates the workflow ID for a plan. There is one workflow per plan.
func GeneratePlanWorkflowID(planID string) string {
	return PlanWorkflowIDPrefix + planID
}
