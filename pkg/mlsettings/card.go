package mlsettings

import (
	"context"

	"ml-backend-settings/pkg/models"
)

// Dialog describes a blocking confirmation
type Dialog struct {
	Title      string
	Body       string
	ButtonLook string
}

// DeleteDialog is shown before a backend is deleted
var DeleteDialog = Dialog{
	Title:      "Delete ML Backend",
	Body:       "This action cannot be undone. Are you sure?",
	ButtonLook: "destructive",
}

// Confirmer answers a confirmation dialog
type Confirmer interface {
	Confirm(ctx context.Context, dialog Dialog) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, dialog Dialog) bool

// Confirm calls f
func (f ConfirmFunc) Confirm(ctx context.Context, dialog Dialog) bool {
	return f(ctx, dialog)
}

// Card is a single backend as shown in the list
type Card struct {
	backend models.Backend
	list    *List
}

// Backend returns the record the card renders
func (c *Card) Backend() models.Backend {
	return c.backend
}

// Status returns the connection indicator
func (c *Card) Status() Indicator {
	return Status(c.backend.State)
}

// DisplayURL is the backend URL cut to its first 20 and last 10 characters
func (c *Card) DisplayURL() string {
	return TruncateMiddle(c.backend.URL, urlFront, urlBack, urlEllipsis)
}

// DisplayVersion is the formatted version or "unknown"
func (c *Card) DisplayVersion() string {
	return FormatVersion(c.backend.Version, c.list.location)
}

// CanRun reports whether the training and experiment controls are enabled
func (c *Card) CanRun() bool {
	return c.backend.IsConnected()
}

// Edit is always enabled
func (c *Card) Edit() error {
	return c.list.Edit(c.backend)
}

// Delete asks confirm first and deletes only on an explicit yes. It
// reports whether a delete was issued.
func (c *Card) Delete(ctx context.Context, confirm Confirmer) (bool, error) {
	if confirm == nil || !confirm.Confirm(ctx, DeleteDialog) {
		return false, nil
	}
	return true, c.list.Delete(ctx, c.backend)
}

// StartTraining trains the backend
func (c *Card) StartTraining(ctx context.Context) error {
	if !c.CanRun() {
		return ErrActionDisabled
	}
	return c.list.Train(ctx, c.backend)
}

// StartCentralTraining starts a central training job
func (c *Card) StartCentralTraining(ctx context.Context) error {
	if !c.CanRun() {
		return ErrActionDisabled
	}
	return c.list.CentralTrain(ctx, c.backend)
}

// StartExperimenting starts a central experiment
func (c *Card) StartExperimenting(ctx context.Context) error {
	if !c.CanRun() {
		return ErrActionDisabled
	}
	return c.list.Experiment(ctx, c.backend)
}
