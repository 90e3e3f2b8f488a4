package services

import (
	"context"
	"errors"
	"net/url"
	"testing"

	intdb "dashboard/internal/db"
	"dashboard/internal/domain/models"
	"dashboard/internal/liststate"
	"dashboard/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Insert(context.Context, models.Activity) (int64, error) {
	return 0, errors.New("disk full")
}

func (failingStore) List(context.Context, repositories.ActivityFilter) ([]models.Activity, int, error) {
	return nil, 0, errors.New("disk full")
}

func TestMemoryActivityPagesNewestFirst(t *testing.T) {
	svc := NewActivityService(nil)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		_, err := svc.Record(ctx, models.Activity{Entity: "coupons", Message: "x"})
		require.NoError(t, err)
	}

	items, total, err := svc.List(ctx, repositories.ActivityFilter{Page: 2, Limit: 3, Entity: liststate.All})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, items, 3)
	assert.Equal(t, int64(4), items[0].ID)
	assert.Equal(t, "info", items[0].Kind)

	items, _, err = svc.List(ctx, repositories.ActivityFilter{Page: 9, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemoryActivityIsBounded(t *testing.T) {
	svc := NewActivityService(nil)
	svc.MaxMemory = 3
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, _ = svc.Record(ctx, models.Activity{Kind: "success", Entity: "brands", Message: "x"})
	}

	items, total, err := svc.List(ctx, repositories.ActivityFilter{SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, int64(3), items[0].ID)
}

func TestPageRendersNestedEnvelope(t *testing.T) {
	svc := NewActivityService(nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		svc.Notify(ctx, liststate.Notification{Kind: liststate.KindSuccess, Entity: "reviews", Message: "ok"})
	}

	raw, err := svc.Page(ctx, url.Values{"page": {"2"}, "limit": {"2"}})
	require.NoError(t, err)

	assert.Equal(t, liststate.ShapeNested, liststate.Classify(raw))
	res := liststate.Normalize[models.Activity](raw, 2)
	assert.Equal(t, liststate.Meta{CurrentPage: 2, TotalPages: 2, TotalItems: 3, ItemsPerPage: 2}, res.Meta)
	require.Len(t, res.Items, 1)
	assert.Equal(t, int64(1), res.Items[0].ID)
}

func TestNotifySwallowsStoreErrors(t *testing.T) {
	svc := NewActivityService(failingStore{})

	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), liststate.Notification{Kind: liststate.KindError, Entity: "brands", Message: "x"})
	})
	_, err := svc.Page(context.Background(), nil)
	assert.ErrorContains(t, err, "disk full")
}

func TestActivityUsesRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO dashboard_activity").
		WithArgs("success", "brands", "3", "done", "rid", "ana", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))

	svc := NewActivityService(repositories.ActivityRepository{DB: db, Dialect: intdb.MySQL})
	ctx := WithRequestMeta(context.Background(), RequestMeta{RequestID: "rid", Actor: "ana"})
	svc.Notify(ctx, liststate.Notification{Kind: liststate.KindSuccess, Entity: "brands", RecordID: "3", Message: "done"})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityFilterFromQuery(t *testing.T) {
	f := ActivityFilterFromQuery(url.Values{"page": {"3"}, "limit": {"x"}, "kind": {"error"}, "sortOrder": {"asc"}})
	assert.Equal(t, repositories.ActivityFilter{Kind: "error", Page: 3, SortOrder: "asc"}, f)
}
