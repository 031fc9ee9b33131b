package adminclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// State is the lifecycle position of the admin view.
type State int

const (
	StateListing State = iota
	StateEditing
)

func (s State) String() string {
	if s == StateEditing {
		return "editing"
	}
	return "listing"
}

var (
	// ErrSubmitInFlight rejects a submit while a previous one is outstanding.
	ErrSubmitInFlight = errors.New("a submit is already in progress")
	// ErrNotEditing is returned by Submit outside the editing state.
	ErrNotEditing = errors.New("no form is open")
	// ErrRowNotListed is returned when an id is not part of the current listing.
	ErrRowNotListed = errors.New("record is not in the current listing")
)

// Row is one listed record. Raw keeps the full payload for editing.
type Row struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Status    string          `json:"status,omitempty"`
	StartDate string          `json:"start_date,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
	Raw       json.RawMessage `json:"-"`
}

// Snapshot is a consistent copy of the lifecycle state.
type Snapshot struct {
	View       View
	State      State
	Rows       []Row
	ListErr    error
	Form       Form
	Submitting bool
}

// Lifecycle is the admin state machine for one session: a listing of the
// selected view, or a form editing a new or existing record of it.
type Lifecycle struct {
	client *Client
	logger *zap.Logger

	mu         sync.Mutex
	view       View
	state      State
	rows       []Row
	listErr    error
	form       Form
	submitting bool
}

// NewLifecycle starts in the listing state of view. Call Refresh to load it.
func NewLifecycle(client *Client, view View, logger *zap.Logger) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lifecycle{client: client, logger: logger, view: view}
}

// Snapshot returns the current state.
func (l *Lifecycle) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		View:       l.view,
		State:      l.state,
		Rows:       append([]Row(nil), l.rows...),
		ListErr:    l.listErr,
		Form:       l.form,
		Submitting: l.submitting,
	}
}

// Refresh refetches the listing of the selected view. A failure replaces the
// rows with the error, which is also returned.
func (l *Lifecycle) Refresh(ctx context.Context) error {
	l.mu.Lock()
	view := l.view
	l.mu.Unlock()

	rows, err := l.fetch(ctx, view)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.view != view {
		return nil
	}
	if err != nil {
		l.rows, l.listErr = nil, err
		l.logger.Warn("listing failed", zap.String("view", string(view)), zap.Error(err))
		return err
	}
	l.rows, l.listErr = rows, nil
	return nil
}

func (l *Lifecycle) fetch(ctx context.Context, view View) ([]Row, error) {
	raws, err := l.client.listRaw(ctx, view)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(raws))
	for _, raw := range raws {
		var row Row
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", view, err)
		}
		row.Raw = raw
		rows = append(rows, row)
	}
	return rows, nil
}

// SelectView switches to another view and loads it. An open form is
// discarded.
func (l *Lifecycle) SelectView(ctx context.Context, view View) error {
	l.mu.Lock()
	if l.state == StateEditing {
		l.logger.Debug("form discarded by view switch", zap.String("from", string(l.view)), zap.String("to", string(view)))
	}
	l.view = view
	l.state = StateListing
	l.form = nil
	l.rows = nil
	l.listErr = nil
	l.mu.Unlock()
	return l.Refresh(ctx)
}

// New opens an empty form for the selected view.
func (l *Lifecycle) New() Form {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.form = NewForm(l.view)
	l.state = StateEditing
	return l.form
}

// Edit opens the listed record id in a form.
func (l *Lifecycle) Edit(id int64) (Form, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	row, ok := l.findRow(id)
	if !ok {
		return nil, ErrRowNotListed
	}
	form, err := FormFor(l.view, row.Raw)
	if err != nil {
		return nil, err
	}
	l.form = form
	l.state = StateEditing
	return form, nil
}

// Cancel closes the form without saving.
func (l *Lifecycle) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.form = nil
	l.state = StateListing
}

// Delete removes the listed record id once confirm approves it, then
// refetches the listing. It reports whether the record was deleted.
func (l *Lifecycle) Delete(ctx context.Context, id int64, confirm func(Row) bool) (bool, error) {
	l.mu.Lock()
	view := l.view
	row, ok := l.findRow(id)
	l.mu.Unlock()
	if !ok {
		return false, ErrRowNotListed
	}
	if confirm != nil && !confirm(row) {
		return false, nil
	}

	var err error
	switch view {
	case ViewEvents:
		err = l.client.DeleteEvent(ctx, id)
	case ViewGallery:
		err = l.client.DeleteGallery(ctx, id)
	default:
		err = l.client.DeleteContent(ctx, id)
	}
	if err != nil {
		return false, err
	}
	_ = l.Refresh(ctx)
	return true, nil
}

// Submit uploads the pending files of the open form, saves the record and
// returns to the refreshed listing. Uploads run concurrently and the save is
// skipped unless every upload succeeds. On failure the form stays open.
func (l *Lifecycle) Submit(ctx context.Context) error {
	l.mu.Lock()
	if l.submitting {
		l.mu.Unlock()
		return ErrSubmitInFlight
	}
	if l.state != StateEditing || l.form == nil {
		l.mu.Unlock()
		return ErrNotEditing
	}
	form := l.form
	l.submitting = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.submitting = false
		l.mu.Unlock()
	}()

	if err := form.Validate(); err != nil {
		return err
	}

	pending := form.uploads()
	paths := make([]string, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	for i, up := range pending {
		g.Go(func() error {
			path, err := l.upload(gctx, up)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	form.applyUploads(paths)

	if err := form.save(ctx, l.client); err != nil {
		return err
	}

	l.mu.Lock()
	if l.form == form {
		l.form = nil
		l.state = StateListing
	}
	l.mu.Unlock()
	_ = l.Refresh(ctx)
	return nil
}

func (l *Lifecycle) upload(ctx context.Context, up pendingUpload) (string, error) {
	if up.file.Open == nil {
		return "", fmt.Errorf("%s: no content", up.file.Name)
	}
	rc, err := up.file.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	res, err := l.client.Upload(ctx, up.kind, up.file.Name, rc)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", up.file.Name, err)
	}
	return res.FilePath, nil
}

func (l *Lifecycle) findRow(id int64) (Row, bool) {
	for _, row := range l.rows {
		if row.ID == id {
			return row, true
		}
	}
	return Row{}, false
}
