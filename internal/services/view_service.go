package services

import (
	"context"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"dashboard/internal/config"
	"dashboard/internal/domain"
	"dashboard/internal/domain/models"
	"dashboard/internal/liststate"
	"dashboard/internal/metrics"
	"dashboard/internal/store"
	"dashboard/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const activityEntity = "activity"

// Controller is the type-erased surface of a mounted liststate.List.
type Controller interface {
	Entity() string
	Refresh(ctx context.Context) error
	SetFilter(ctx context.Context, key string, value any) error
	SetPage(ctx context.Context, page int) error
	ToggleSort(ctx context.Context, field string) error
	Reset(ctx context.Context) error
	Apply(ctx context.Context, mutate func(liststate.FilterState) liststate.FilterState) error
	RequestDelete(id string) error
	CancelDelete() error
	ConfirmDelete(ctx context.Context) error
	Status() liststate.Status
	Rows() any
	Records() []liststate.Record
	Close()
}

// View is one mounted list view.
type View struct {
	Controller

	ID         string
	Definition config.ViewDefinition
	Lookups    map[string][]models.Lookup
	MountedAt  time.Time

	mu       sync.Mutex
	lastUsed time.Time
}

func (v *View) touch(now time.Time) {
	v.mu.Lock()
	v.lastUsed = now
	v.mu.Unlock()
}

func (v *View) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUsed
}

// ViewSnapshot is what the API returns for a view.
type ViewSnapshot struct {
	ID        string                     `json:"id"`
	Title     string                     `json:"title"`
	Status    liststate.Status           `json:"status"`
	Items     any                        `json:"items"`
	Lookups   map[string][]models.Lookup `json:"lookups,omitempty"`
	Deletable bool                       `json:"deletable"`
}

func (v *View) Snapshot() ViewSnapshot {
	return ViewSnapshot{
		ID:        v.ID,
		Title:     v.Definition.Title,
		Status:    v.Status(),
		Items:     v.Rows(),
		Lookups:   v.Lookups,
		Deletable: v.Definition.Deletable,
	}
}

// ViewService owns the mounted views.
type ViewService struct {
	Client      *store.Client
	Definitions func() config.ViewsConfig
	Activity    *ActivityService
	IdleTimeout time.Duration
	Now         func() time.Time

	mu    sync.Mutex
	views map[string]*View
}

func NewViewService(client *store.Client, defs func() config.ViewsConfig, activity *ActivityService, idle time.Duration) *ViewService {
	if activity == nil {
		activity = NewActivityService(nil)
	}
	return &ViewService{
		Client:      client,
		Definitions: defs,
		Activity:    activity,
		IdleTimeout: idle,
		views:       map[string]*View{},
	}
}

func (s *ViewService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ViewService) config() config.ViewsConfig {
	if s.Definitions == nil {
		return config.DefaultViews()
	}
	return s.Definitions()
}

// Entities lists the configured view definitions sorted by entity.
func (s *ViewService) Entities() []config.ViewDefinition {
	defs := append([]config.ViewDefinition(nil), s.config().Views...)
	sort.Slice(defs, func(i, j int) bool { return defs[i].Entity < defs[j].Entity })
	return defs
}

// Mount creates a view in its default state, loads its lookups and runs the
// first fetch. A failed first fetch is reported in the view status, not as
// an error.
func (s *ViewService) Mount(ctx context.Context, entity string) (*View, error) {
	return s.MountWith(ctx, entity, nil)
}

// MountWith is Mount with adjust applied to the defaults before the first
// fetch, so a view opened on a filtered page costs one upstream request.
func (s *ViewService) MountWith(ctx context.Context, entity string, adjust func(liststate.FilterState) liststate.FilterState) (*View, error) {
	cfg := s.config()
	def, ok := cfg.Find(entity)
	if !ok {
		return nil, domain.NotFoundError{Resource: "entity " + strings.TrimSpace(entity)}
	}
	meta := RequestMetaFrom(ctx)

	ctrl := s.newController(def, cfg.PageWindow)
	now := s.now()
	v := &View{
		Controller: ctrl,
		ID:         uuid.NewString(),
		Definition: def,
		Lookups:    s.loadLookups(ctx, def),
		MountedAt:  now,
		lastUsed:   now,
	}

	s.mu.Lock()
	s.views[v.ID] = v
	count := len(s.views)
	s.mu.Unlock()
	metrics.ViewsMounted.Set(float64(count))

	utils.LogEvent(meta.RequestID, "views", "mount", "view mounted",
		zap.String("view_id", v.ID), zap.String("entity", def.Entity))

	var err error
	if adjust != nil {
		err = v.Apply(ctx, adjust)
	} else {
		err = v.Refresh(ctx)
	}
	if err != nil && !domain.IsFetch(err) {
		return v, err
	}
	return v, nil
}

// Get returns a mounted view and marks it as used.
func (s *ViewService) Get(id string) (*View, error) {
	s.mu.Lock()
	v, ok := s.views[strings.TrimSpace(id)]
	s.mu.Unlock()
	if !ok {
		return nil, domain.NotFoundError{Resource: "view"}
	}
	v.touch(s.now())
	return v, nil
}

// Unmount closes a view. In-flight fetches for it are discarded.
func (s *ViewService) Unmount(id string) error {
	s.mu.Lock()
	v, ok := s.views[strings.TrimSpace(id)]
	if ok {
		delete(s.views, v.ID)
	}
	count := len(s.views)
	s.mu.Unlock()
	if !ok {
		return domain.NotFoundError{Resource: "view"}
	}
	v.Close()
	metrics.ViewsMounted.Set(float64(count))
	return nil
}

// Sweep closes views idle for longer than IdleTimeout and returns how many
// were removed.
func (s *ViewService) Sweep() int {
	if s.IdleTimeout <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.IdleTimeout)

	s.mu.Lock()
	var expired []*View
	for id, v := range s.views {
		if v.idleSince().Before(cutoff) {
			expired = append(expired, v)
			delete(s.views, id)
		}
	}
	count := len(s.views)
	s.mu.Unlock()

	for _, v := range expired {
		v.Close()
		utils.LogEvent("", "views", "sweep", "idle view closed",
			zap.String("view_id", v.ID), zap.String("entity", v.Entity()))
	}
	if len(expired) > 0 {
		metrics.ViewsMounted.Set(float64(count))
	}
	return len(expired)
}

// DefinitionsReloaded is subscribed to view definition reloads. Mounted
// views keep the definition they started with; the ones that no longer
// match are counted so the mismatch is visible.
func (s *ViewService) DefinitionsReloaded(cfg config.ViewsConfig) {
	s.mu.Lock()
	mounted := len(s.views)
	outdated := 0
	for _, v := range s.views {
		def, ok := cfg.Find(v.Definition.Entity)
		if !ok || !reflect.DeepEqual(def, v.Definition) {
			outdated++
		}
	}
	s.mu.Unlock()

	metrics.DefinitionReloads.Inc()
	metrics.ViewsOutdated.Set(float64(outdated))
	utils.LogEvent("", "views", "definitions_reloaded", "view definitions changed",
		zap.Int("definitions", len(cfg.Views)), zap.Int("mounted", mounted), zap.Int("outdated", outdated))
}

// Count reports how many views are mounted.
func (s *ViewService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// CloseAll unmounts every view.
func (s *ViewService) CloseAll() {
	s.mu.Lock()
	views := s.views
	s.views = map[string]*View{}
	s.mu.Unlock()
	for _, v := range views {
		v.Close()
	}
	metrics.ViewsMounted.Set(0)
}

func (s *ViewService) client(ctx context.Context) *store.Client {
	return s.Client.WithToken(RequestMetaFrom(ctx).Token)
}

func (s *ViewService) newController(def config.ViewDefinition, window int) Controller {
	fetch := func(ctx context.Context, params url.Values) ([]byte, error) {
		return s.client(ctx).GetAll(ctx, def.Resource, params)
	}
	var del liststate.DeleteFunc
	if def.Deletable {
		del = func(ctx context.Context, id string) error {
			return s.client(ctx).Delete(ctx, def.Resource, id)
		}
	}
	if def.Entity == activityEntity {
		fetch = s.Activity.Page
		del = nil
	}

	h := hooks{entity: def.Entity}
	switch def.Entity {
	case "attributes":
		return newList[models.Attribute](def, window, fetch, del, s.Activity, h)
	case "brands":
		return newList[models.Brand](def, window, fetch, del, s.Activity, h)
	case "categories":
		return newList[models.Category](def, window, fetch, del, s.Activity, h)
	case "customers":
		return newList[models.Customer](def, window, fetch, del, s.Activity, h)
	case "coupons":
		return newList[models.Coupon](def, window, fetch, del, s.Activity, h)
	case "reviews":
		return newList[models.Review](def, window, fetch, del, s.Activity, h)
	case activityEntity:
		return newList[models.Activity](def, window, fetch, del, s.Activity, h)
	default:
		return newList[models.Row](def, window, fetch, del, s.Activity, h)
	}
}

func newList[T liststate.Record](def config.ViewDefinition, window int, fetch liststate.FetchFunc, del liststate.DeleteFunc, n liststate.Notifier, h hooks) *liststate.List[T] {
	return liststate.New(liststate.Config[T]{
		Entity:     def.Entity,
		Defaults:   def.Defaults(),
		Fetch:      fetch,
		Delete:     del,
		Notifier:   n,
		WindowSize: window,
		OnFetch:    h.fetched,
		OnDelete:   h.deleted,
	})
}

// loadLookups fetches the reference lists of a view once. A lookup that
// fails stays empty so the view still mounts.
func (s *ViewService) loadLookups(ctx context.Context, def config.ViewDefinition) map[string][]models.Lookup {
	if len(def.Lookups) == 0 {
		return nil
	}
	requestID := RequestMetaFrom(ctx).RequestID
	out := make(map[string][]models.Lookup, len(def.Lookups))
	for _, name := range def.Lookups {
		raw, err := s.client(ctx).Lookup(ctx, "/"+strings.TrimLeft(name, "/"))
		if err != nil {
			utils.LogError(requestID, "views", "lookup", err, zap.String("entity", def.Entity), zap.String("lookup", name))
			out[name] = []models.Lookup{}
			continue
		}
		out[name] = liststate.Normalize[models.Lookup](raw, 0).Items
	}
	return out
}

type hooks struct {
	entity string
}

func (h hooks) fetched(o liststate.FetchOutcome) {
	metrics.ObserveFetch(o)
	switch {
	case o.Stale:
		utils.L().Debug("stale list response dropped",
			zap.String("entity", o.Entity), zap.Uint64("generation", o.Generation))
	case o.Err != nil:
		utils.LogError("", "views", "fetch", o.Err,
			zap.String("entity", o.Entity), zap.String("query", o.Params.Encode()))
	}
}

func (h hooks) deleted(o liststate.DeleteOutcome) {
	metrics.ObserveDelete(o)
	if o.Err != nil {
		utils.LogError("", "views", "delete", o.Err, zap.String("entity", o.Entity), zap.String("record_id", o.ID))
		return
	}
	utils.LogEvent("", "views", "delete", "record deleted",
		zap.String("entity", h.entity), zap.String("record_id", o.ID), zap.Duration("took", o.Duration))
}
