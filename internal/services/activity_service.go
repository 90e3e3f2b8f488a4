package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"dashboard/internal/domain/models"
	"dashboard/internal/liststate"
	"dashboard/internal/repositories"
	"dashboard/internal/utils"

	"go.uber.org/zap"
)

const (
	defaultMemoryActivity = 500
	defaultActivityLimit  = 20
	maxActivityLimit      = 200
)

// ActivityStore is implemented by repositories.ActivityRepository.
type ActivityStore interface {
	Insert(ctx context.Context, a models.Activity) (int64, error)
	List(ctx context.Context, f repositories.ActivityFilter) ([]models.Activity, int, error)
}

// ActivityService is the dashboard notification log. It implements
// liststate.Notifier. Without a Store it keeps the most recent entries in
// memory.
type ActivityService struct {
	Store     ActivityStore
	MaxMemory int

	mu     sync.Mutex
	mem    []models.Activity
	nextID int64
}

func NewActivityService(store ActivityStore) *ActivityService {
	return &ActivityService{Store: store, MaxMemory: defaultMemoryActivity}
}

// Notify records a notification. Storage failures are logged, never returned.
func (s *ActivityService) Notify(ctx context.Context, n liststate.Notification) {
	meta := RequestMetaFrom(ctx)
	requestID := meta.RequestID
	a := models.Activity{
		Kind:      string(n.Kind),
		Entity:    n.Entity,
		TargetID:  n.RecordID,
		Message:   n.Message,
		RequestID: requestID,
		Actor:     meta.Actor,
	}
	if _, err := s.Record(context.WithoutCancel(ctx), a); err != nil {
		utils.LogError(requestID, "activity", "notify", err, zap.String("entity", n.Entity))
		return
	}
	utils.LogEvent(requestID, "activity", "notify", n.Message,
		zap.String("kind", string(n.Kind)), zap.String("entity", n.Entity), zap.String("record_id", n.RecordID))
}

// Record stores one activity entry and returns it with id and timestamp set.
func (s *ActivityService) Record(ctx context.Context, a models.Activity) (models.Activity, error) {
	a.Kind = strings.TrimSpace(a.Kind)
	if a.Kind == "" {
		a.Kind = string(liststate.KindInfo)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utils.NowUTC()
	}
	if s.Store != nil {
		id, err := s.Store.Insert(ctx, a)
		if err != nil {
			return a, err
		}
		a.ID = id
		return a, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a.ID = s.nextID
	s.mem = append(s.mem, a)
	limit := s.MaxMemory
	if limit < 1 {
		limit = defaultMemoryActivity
	}
	if len(s.mem) > limit {
		s.mem = append([]models.Activity(nil), s.mem[len(s.mem)-limit:]...)
	}
	return a, nil
}

// List returns one page of activity and the matching total.
func (s *ActivityService) List(ctx context.Context, f repositories.ActivityFilter) ([]models.Activity, int, error) {
	if s.Store != nil {
		return s.Store.List(ctx, f)
	}
	return s.listMemory(f)
}

func (s *ActivityService) listMemory(f repositories.ActivityFilter) ([]models.Activity, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	f.Limit = clampActivityLimit(f.Limit)
	kind, entity := memoryFilterValue(f.Kind), memoryFilterValue(f.Entity)

	s.mu.Lock()
	matched := make([]models.Activity, 0, len(s.mem))
	for _, a := range s.mem {
		if kind != "" && a.Kind != kind {
			continue
		}
		if entity != "" && a.Entity != entity {
			continue
		}
		matched = append(matched, a)
	}
	s.mu.Unlock()

	asc := strings.EqualFold(f.SortOrder, string(liststate.Asc))
	sort.SliceStable(matched, func(i, j int) bool {
		if asc {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := (f.Page - 1) * f.Limit
	if start >= total {
		return []models.Activity{}, total, nil
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func memoryFilterValue(v string) string {
	v = strings.TrimSpace(v)
	if v == liststate.All {
		return ""
	}
	return v
}

// ActivityFilterFromQuery reads the list query parameters of the activity log.
func ActivityFilterFromQuery(q url.Values) repositories.ActivityFilter {
	page, _ := strconv.Atoi(q.Get(liststate.KeyPage))
	limit, _ := strconv.Atoi(q.Get(liststate.KeyLimit))
	return repositories.ActivityFilter{
		Kind:      q.Get("kind"),
		Entity:    q.Get("entity"),
		Page:      page,
		Limit:     limit,
		SortBy:    q.Get(liststate.KeySortBy),
		SortOrder: q.Get(liststate.KeySortOrder),
	}
}

type activityPage struct {
	Data []models.Activity `json:"data"`
	Meta liststate.Meta    `json:"meta"`
}

// Page renders one activity page as a nested {data, meta} envelope, the
// same body an upstream list endpoint returns. It doubles as the fetcher of
// the activity view.
func (s *ActivityService) Page(ctx context.Context, params url.Values) ([]byte, error) {
	f := ActivityFilterFromQuery(params)
	items, total, err := s.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	limit := clampActivityLimit(f.Limit)
	page := f.Page
	if page < 1 {
		page = 1
	}
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	return json.Marshal(activityPage{
		Data: items,
		Meta: liststate.Meta{CurrentPage: page, TotalPages: totalPages, TotalItems: total, ItemsPerPage: limit},
	})
}

func clampActivityLimit(n int) int {
	if n < 1 {
		return defaultActivityLimit
	}
	if n > maxActivityLimit {
		return maxActivityLimit
	}
	return n
}
