package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"dashboard/internal/config"
	"dashboard/internal/domain"
	"dashboard/internal/domain/models"
	"dashboard/internal/liststate"
	"dashboard/internal/metrics"
	"dashboard/internal/repositories"
	"dashboard/internal/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves brands as flat envelopes and roles as a bare array.
type fakeStore struct {
	mu     sync.Mutex
	brands []models.Brand
	hits   map[string]int
	auth   []string
}

func newFakeStore(n int) *fakeStore {
	f := &fakeStore{hits: map[string]int{}}
	for i := 1; i <= n; i++ {
		f.brands = append(f.brands, models.Brand{ID: models.FlexID(strconv.Itoa(i)), Name: "Brand " + strconv.Itoa(i)})
	}
	return f
}

func (f *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[r.Method+" "+r.URL.Path]++
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/roles":
		_, _ = w.Write([]byte(`[{"id":1,"name":"admin"},{"id":2,"name":"customer"}]`))
	case r.Method == http.MethodGet && (r.URL.Path == "/brands" || r.URL.Path == "/customers"):
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		start := (page - 1) * limit
		end := start + limit
		if start > len(f.brands) {
			start = len(f.brands)
		}
		if end > len(f.brands) {
			end = len(f.brands)
		}
		totalPages := (len(f.brands) + limit - 1) / limit
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": f.brands[start:end], "total": len(f.brands), "page": page, "limit": limit, "totalPages": totalPages,
		})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/brands/"):
		id := strings.TrimPrefix(r.URL.Path, "/brands/")
		kept := f.brands[:0]
		for _, b := range f.brands {
			if b.ID.String() != id {
				kept = append(kept, b)
			}
		}
		f.brands = kept
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such route"}`))
	}
}

func (f *fakeStore) hitCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func newTestViewService(t *testing.T, fs *fakeStore) *ViewService {
	t.Helper()
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)
	return NewViewService(store.NewClient(srv.URL, "env-token", time.Second), config.DefaultViews, nil, time.Minute)
}

func TestMountRunsFirstFetch(t *testing.T) {
	svc := newTestViewService(t, newFakeStore(25))

	v, err := svc.Mount(context.Background(), "Brands")
	require.NoError(t, err)

	st := v.Status()
	assert.Equal(t, "brands", st.Entity)
	assert.Equal(t, liststate.Meta{CurrentPage: 1, TotalPages: 3, TotalItems: 25, ItemsPerPage: 10}, st.Meta)
	assert.Equal(t, []int{1, 2, 3}, st.Window)
	assert.Len(t, v.Records(), 10)
	assert.Equal(t, 1, svc.Count())
}

func TestMountUnknownEntity(t *testing.T) {
	svc := newTestViewService(t, newFakeStore(1))

	_, err := svc.Mount(context.Background(), "warehouses")
	assert.True(t, domain.IsNotFound(err))
}

func TestMountKeepsViewWhenFirstFetchFails(t *testing.T) {
	svc := newTestViewService(t, newFakeStore(1))

	v, err := svc.Mount(context.Background(), "coupons")
	require.NoError(t, err)
	assert.Equal(t, "no such route", v.Status().Error)
}

func TestLookupsLoadOnceAtMount(t *testing.T) {
	fs := newFakeStore(3)
	svc := newTestViewService(t, fs)
	ctx := context.Background()

	v, err := svc.Mount(ctx, "customers")
	require.NoError(t, err)
	require.NoError(t, v.SetFilter(ctx, "role", "admin"))
	require.NoError(t, v.Refresh(ctx))

	assert.Len(t, v.Lookups["roles"], 2)
	assert.Equal(t, 1, fs.hitCount("GET /roles"))
	assert.Equal(t, 3, fs.hitCount("GET /customers"))
}

func TestCallerTokenIsForwarded(t *testing.T) {
	fs := newFakeStore(2)
	svc := newTestViewService(t, fs)

	ctx := WithRequestMeta(context.Background(), RequestMeta{Token: "user-token"})
	_, err := svc.Mount(ctx, "brands")
	require.NoError(t, err)
	_, err = svc.Mount(context.Background(), "brands")
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer user-token", "Bearer env-token"}, fs.auth)
}

func TestConfirmDeleteRecordsActivity(t *testing.T) {
	fs := newFakeStore(11)
	svc := newTestViewService(t, fs)
	ctx := WithRequestMeta(context.Background(), RequestMeta{RequestID: "rid-9", Actor: "7"})

	v, err := svc.Mount(ctx, "brands")
	require.NoError(t, err)
	require.NoError(t, v.SetPage(ctx, 2))
	require.NoError(t, v.RequestDelete("11"))
	require.NoError(t, v.ConfirmDelete(ctx))

	st := v.Status()
	assert.Equal(t, 1, st.Filters.Page, "emptied last page steps back")
	assert.Equal(t, 10, st.Meta.TotalItems)
	assert.Equal(t, liststate.PhaseIdle, st.Delete.Phase)

	items, total, err := svc.Activity.List(ctx, repositories.ActivityFilter{Entity: "brands"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "success", items[0].Kind)
	assert.Equal(t, "11", items[0].TargetID)
	assert.Equal(t, `"Brand 11" has been deleted`, items[0].Message)
	assert.Equal(t, "rid-9", items[0].RequestID)
	assert.Equal(t, "7", items[0].Actor)
}

func TestNonDeletableViewRejectsDelete(t *testing.T) {
	svc := newTestViewService(t, newFakeStore(1))

	v, err := svc.Mount(context.Background(), "activity")
	require.NoError(t, err)
	assert.ErrorIs(t, v.RequestDelete("1"), liststate.ErrDeleteUnsupported)
}

func TestActivityViewReadsLocalLog(t *testing.T) {
	svc := newTestViewService(t, newFakeStore(1))
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		kind := liststate.KindSuccess
		if i%5 == 0 {
			kind = liststate.KindError
		}
		svc.Activity.Notify(ctx, liststate.Notification{Kind: kind, Entity: "brands", Message: "m" + strconv.Itoa(i)})
	}

	v, err := svc.Mount(ctx, "activity")
	require.NoError(t, err)
	assert.Equal(t, 25, v.Status().Meta.TotalItems)
	assert.Equal(t, 2, v.Status().Meta.TotalPages)
	rows := v.Rows().([]models.Activity)
	require.Len(t, rows, 20)
	assert.Equal(t, "m24", rows[0].Message)

	require.NoError(t, v.SetFilter(ctx, "kind", "error"))
	assert.Equal(t, 5, v.Status().Meta.TotalItems)
	assert.Equal(t, 1, v.Status().Filters.Page)
}

func TestSweepClosesIdleViews(t *testing.T) {
	svc := newTestViewService(t, newFakeStore(2))
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }
	ctx := context.Background()

	old, err := svc.Mount(ctx, "brands")
	require.NoError(t, err)
	now = now.Add(45 * time.Second)
	fresh, err := svc.Mount(ctx, "brands")
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, svc.Sweep())

	_, err = svc.Get(old.ID)
	assert.True(t, domain.IsNotFound(err))
	assert.ErrorIs(t, old.Refresh(ctx), liststate.ErrClosed)
	_, err = svc.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestUnmount(t *testing.T) {
	svc := newTestViewService(t, newFakeStore(2))

	v, err := svc.Mount(context.Background(), "brands")
	require.NoError(t, err)
	require.NoError(t, svc.Unmount(v.ID))
	assert.True(t, domain.IsNotFound(svc.Unmount(v.ID)))
	assert.Equal(t, 0, svc.Count())
}

func TestEntitiesSorted(t *testing.T) {
	svc := newTestViewService(t, newFakeStore(0))

	defs := svc.Entities()
	require.NotEmpty(t, defs)
	for i := 1; i < len(defs); i++ {
		assert.Less(t, defs[i-1].Entity, defs[i].Entity)
	}
}

func TestDefinitionsReloadedCountsOutdatedViews(t *testing.T) {
	svc := newTestViewService(t, newFakeStore(2))
	ctx := context.Background()
	_, err := svc.Mount(ctx, "brands")
	require.NoError(t, err)
	_, err = svc.Mount(ctx, "coupons")
	require.NoError(t, err)
	before := testutil.ToFloat64(metrics.DefinitionReloads)

	svc.DefinitionsReloaded(config.DefaultViews())
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.ViewsOutdated))

	cfg := config.DefaultViews()
	for i := range cfg.Views {
		if cfg.Views[i].Entity == "brands" {
			cfg.Views[i].Limit = 50
		}
	}
	svc.DefinitionsReloaded(cfg)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ViewsOutdated))
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.DefinitionReloads))

	v, err := svc.Mount(ctx, "brands")
	require.NoError(t, err)
	assert.Equal(t, 10, v.Status().Filters.Limit, "definitions come from the service source, not the reload payload")
}
