package liststate

import (
	"context"
	"net/url"
	"sync"
	"time"

	"dashboard/internal/domain"
)

// Record is an entity row: RecordID is the row key and delete target,
// RecordLabel names the row in notifications.
type Record interface {
	RecordID() string
	RecordLabel() string
}

// FetchFunc loads one raw list page for the given query parameters.
type FetchFunc func(ctx context.Context, params url.Values) ([]byte, error)

// DeleteFunc removes one record by id.
type DeleteFunc func(ctx context.Context, id string) error

// FetchOutcome describes one finished fetch, stale or not.
type FetchOutcome struct {
	Entity     string
	Generation uint64
	Params     url.Values
	Shape      Shape
	Duration   time.Duration
	Err        error
	Stale      bool
}

// DeleteOutcome describes one finished delete call.
type DeleteOutcome struct {
	Entity   string
	ID       string
	Duration time.Duration
	Err      error
}

// Config wires a List to its collaborators.
type Config[T Record] struct {
	Entity     string
	Defaults   FilterState
	Fetch      FetchFunc
	Delete     DeleteFunc
	Notifier   Notifier
	WindowSize int
	OnFetch    func(FetchOutcome)
	OnDelete   func(DeleteOutcome)
}

// Status is a point-in-time snapshot of a view without its rows.
type Status struct {
	Entity     string       `json:"entity"`
	Filters    FilterState  `json:"filters"`
	Meta       Meta         `json:"meta"`
	Loading    bool         `json:"loading"`
	Error      string       `json:"error,omitempty"`
	Window     []int        `json:"window"`
	Delete     DeleteStatus `json:"delete"`
	Generation uint64       `json:"generation"`
}

// List is the list-state engine of one mounted view. It is safe for
// concurrent use; the latest issued fetch is the only one whose result is
// applied.
type List[T Record] struct {
	cfg      Config[T]
	defaults FilterState

	mu      sync.Mutex
	filters FilterState
	items   []T
	meta    Meta
	loading bool
	err     string
	gen     uint64
	closed  bool

	phase  DeletePhase
	target *T
}

// New creates a list in its default state. It does not fetch; call Refresh.
func New[T Record](cfg Config[T]) *List[T] {
	if cfg.Notifier == nil {
		cfg.Notifier = discardNotifier{}
	}
	if cfg.WindowSize < 1 {
		cfg.WindowSize = DefaultWindowSize
	}
	defaults := cfg.Defaults.Clone()
	return &List[T]{
		cfg:      cfg,
		defaults: defaults,
		filters:  defaults.Clone(),
		items:    []T{},
		meta:     Meta{CurrentPage: 1, TotalPages: 1, TotalItems: 0, ItemsPerPage: defaults.Limit},
		phase:    PhaseIdle,
	}
}

func (l *List[T]) Entity() string { return l.cfg.Entity }

// Refresh fetches the page for the current filters.
func (l *List[T]) Refresh(ctx context.Context) error {
	l.mu.Lock()
	gen, fs, err := l.beginLocked()
	l.mu.Unlock()
	if err != nil {
		return err
	}
	return l.run(ctx, gen, fs)
}

// SetFilter updates one filter key (see FilterState.Update).
func (l *List[T]) SetFilter(ctx context.Context, key string, value any) error {
	return l.apply(ctx, func(s FilterState) FilterState { return s.Update(key, value) })
}

func (l *List[T]) SetPage(ctx context.Context, page int) error {
	return l.SetFilter(ctx, KeyPage, page)
}

func (l *List[T]) SetLimit(ctx context.Context, limit int) error {
	return l.SetFilter(ctx, KeyLimit, limit)
}

func (l *List[T]) ToggleSort(ctx context.Context, field string) error {
	return l.apply(ctx, func(s FilterState) FilterState { return s.ToggleSort(field) })
}

// Apply runs a batch of filter changes and fetches once for the result,
// even when the batch leaves the filters as they were.
func (l *List[T]) Apply(ctx context.Context, mutate func(FilterState) FilterState) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.filters = mutate(l.filters)
	gen, fs, err := l.beginLocked()
	l.mu.Unlock()
	if err != nil {
		return err
	}
	return l.run(ctx, gen, fs)
}

// Reset restores the view defaults.
func (l *List[T]) Reset(ctx context.Context) error {
	return l.apply(ctx, func(FilterState) FilterState { return Reset(l.defaults) })
}

// Close tears the view down; in-flight responses are discarded.
func (l *List[T]) Close() {
	l.mu.Lock()
	l.closed = true
	l.loading = false
	l.mu.Unlock()
}

// Items returns a copy of the current rows.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Rows is Items without the type parameter.
func (l *List[T]) Rows() any {
	return l.Items()
}

// Records returns the current rows as Records.
func (l *List[T]) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, 0, len(l.items))
	for _, it := range l.items {
		out = append(out, it)
	}
	return out
}

func (l *List[T]) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := Status{
		Entity:     l.cfg.Entity,
		Filters:    l.filters.Clone(),
		Meta:       l.meta,
		Loading:    l.loading,
		Error:      l.err,
		Window:     ComputeWindow(l.meta.CurrentPage, l.meta.TotalPages, l.cfg.WindowSize),
		Delete:     DeleteStatus{Phase: l.phase},
		Generation: l.gen,
	}
	if l.target != nil {
		st.Delete.TargetID = (*l.target).RecordID()
		st.Delete.TargetLabel = (*l.target).RecordLabel()
	}
	return st
}

func (l *List[T]) apply(ctx context.Context, mutate func(FilterState) FilterState) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	next := mutate(l.filters)
	if next.Equal(l.filters) {
		l.mu.Unlock()
		return nil
	}
	l.filters = next
	gen, fs, err := l.beginLocked()
	l.mu.Unlock()
	if err != nil {
		return err
	}
	return l.run(ctx, gen, fs)
}

func (l *List[T]) beginLocked() (uint64, FilterState, error) {
	if l.closed {
		return 0, FilterState{}, ErrClosed
	}
	l.gen++
	l.loading = true
	l.err = ""
	return l.gen, l.filters.Clone(), nil
}

func (l *List[T]) run(ctx context.Context, gen uint64, fs FilterState) error {
	params := fs.Query()
	start := time.Now()
	raw, fetchErr := l.cfg.Fetch(ctx, params)

	var res Result[T]
	shape := ShapeBare
	if fetchErr == nil {
		shape = Classify(raw)
		res = Normalize[T](raw, fs.Limit)
	}

	l.mu.Lock()
	closed := l.closed
	stale := closed || gen != l.gen
	if !stale {
		l.loading = false
		if fetchErr != nil {
			l.err = errorMessage(fetchErr, DefaultFetchError)
		} else {
			l.items = res.Items
			l.meta = res.Meta
		}
	}
	l.mu.Unlock()

	if l.cfg.OnFetch != nil {
		l.cfg.OnFetch(FetchOutcome{
			Entity:     l.cfg.Entity,
			Generation: gen,
			Params:     params,
			Shape:      shape,
			Duration:   time.Since(start),
			Err:        fetchErr,
			Stale:      stale,
		})
	}

	switch {
	case closed:
		return ErrClosed
	case stale:
		return ErrStale
	case fetchErr != nil:
		return domain.FetchError{Entity: l.cfg.Entity, Err: fetchErr}
	}
	return nil
}
