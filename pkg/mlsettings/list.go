// Package mlsettings holds the ML backend settings panel: the list of
// configured backends, the per-backend card and the status indicator.
// Rendering lives in the templates package; this package decides what is
// shown and which upstream calls a control issues.
package mlsettings

import (
	"context"
	"errors"
	"time"

	"ml-backend-settings/pkg/models"
)

var (
	// ErrNotFound is returned when an id is not in the current snapshot
	ErrNotFound = errors.New("ml backend not found")
	// ErrActionDisabled is returned when a run control is used on a
	// backend that is not connected
	ErrActionDisabled = errors.New("action disabled: ml backend is not connected")
	// ErrEditUnavailable is returned when there is no page to edit a backend on
	ErrEditUnavailable = errors.New("ml backend editing is not configured")
)

// Actions are the mutating calls the panel can issue for a backend
type Actions interface {
	DeleteMLBackend(ctx context.Context, id int) error
	TrainMLBackend(ctx context.Context, id int) error
	TrainCentral(ctx context.Context, id int) error
	ExperimentCentral(ctx context.Context, id int) error
}

// FetchFunc re-reads the full backend list
type FetchFunc func(ctx context.Context) ([]models.Backend, error)

// EditFunc is invoked when the user asks to edit a backend
type EditFunc func(backend models.Backend) error

// List owns the backend snapshot and wires the card controls to the API
type List struct {
	backends []models.Backend
	fetch    FetchFunc
	onEdit   EditFunc
	actions  Actions
	location *time.Location
}

// NewList creates a List over an initial snapshot
func NewList(backends []models.Backend, fetch FetchFunc, onEdit EditFunc, actions Actions) *List {
	return &List{
		backends: backends,
		fetch:    fetch,
		onEdit:   onEdit,
		actions:  actions,
		location: time.Local,
	}
}

// WithLocation sets the time zone card versions are rendered in
func (l *List) WithLocation(loc *time.Location) *List {
	if loc != nil {
		l.location = loc
	}
	return l
}

// Backends returns the current snapshot
func (l *List) Backends() []models.Backend {
	return l.backends
}

// Find returns the card for id from the current snapshot
func (l *List) Find(id int) (*Card, error) {
	for _, b := range l.backends {
		if b.ID == id {
			return l.card(b), nil
		}
	}
	return nil, ErrNotFound
}

// Cards returns one card per backend, in list order
func (l *List) Cards() []*Card {
	cards := make([]*Card, 0, len(l.backends))
	for _, b := range l.backends {
		cards = append(cards, l.card(b))
	}
	return cards
}

func (l *List) card(b models.Backend) *Card {
	return &Card{backend: b, list: l}
}

// Refresh replaces the snapshot with a fresh read
func (l *List) Refresh(ctx context.Context) error {
	backends, err := l.fetch(ctx)
	if err != nil {
		return err
	}
	l.backends = backends
	return nil
}

// Delete removes the backend, then refreshes
func (l *List) Delete(ctx context.Context, backend models.Backend) error {
	return l.run(ctx, backend, l.actions.DeleteMLBackend)
}

// Train starts training on the backend, then refreshes
func (l *List) Train(ctx context.Context, backend models.Backend) error {
	return l.run(ctx, backend, l.actions.TrainMLBackend)
}

// CentralTrain starts a central training job, then refreshes
func (l *List) CentralTrain(ctx context.Context, backend models.Backend) error {
	return l.run(ctx, backend, l.actions.TrainCentral)
}

// Experiment starts a central experiment, then refreshes
func (l *List) Experiment(ctx context.Context, backend models.Backend) error {
	return l.run(ctx, backend, l.actions.ExperimentCentral)
}

// Edit hands the backend to the edit callback
func (l *List) Edit(backend models.Backend) error {
	if l.onEdit == nil {
		return nil
	}
	return l.onEdit(backend)
}

// run issues one call and, only when it succeeds, one refetch. Failures
// are returned unchanged for the caller's error boundary.
func (l *List) run(ctx context.Context, backend models.Backend, call func(context.Context, int) error) error {
	if err := call(ctx, backend.ID); err != nil {
		return err
	}
	return l.Refresh(ctx)
}
