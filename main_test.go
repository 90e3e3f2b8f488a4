package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	intconfig "dashboard/internal/config"
	"dashboard/internal/services"
	"dashboard/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOptionsChangesPutPageLast(t *testing.T) {
	opts := listOptions{page: 3, limit: 5, search: "nike", order: "asc", filters: []string{"isActive=true"}}
	changes, err := opts.changes()
	require.NoError(t, err)
	require.Len(t, changes, 5)
	assert.Equal(t, [2]any{"limit", 5}, changes[0])
	assert.Equal(t, [2]any{"isActive", "true"}, changes[3])
	assert.Equal(t, [2]any{"page", 3}, changes[4])

	_, err = listOptions{filters: []string{"novalue"}}.changes()
	assert.Error(t, err)
	_, err = listOptions{order: "up"}.changes()
	assert.Error(t, err)
}

func TestRunListPrintsPageAndWindow(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":21,"name":"Acme"},{"id":22,"name":"Zeta"}],"total":42,"page":3,"limit":10,"totalPages":5}`))
	}))
	defer srv.Close()

	views := services.NewViewService(store.NewClient(srv.URL, "", time.Second), intconfig.DefaultViews, nil, 0)
	var out bytes.Buffer
	err := runList(context.Background(), views, "brands", listOptions{page: 3, search: "a"}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "21  Acme")
	assert.Contains(t, out.String(), "page 3 of 5, 42 items  1 2 [3] 4 5")
	require.Len(t, queries, 1, "all flags go out in a single fetch")
	assert.Contains(t, queries[0], "page=3")
	assert.Contains(t, queries[0], "search=a")
}

func TestRunListReportsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer srv.Close()

	views := services.NewViewService(store.NewClient(srv.URL, "", time.Second), intconfig.DefaultViews, nil, 0)
	err := runList(context.Background(), views, "coupons", listOptions{}, &bytes.Buffer{})
	assert.EqualError(t, err, "coupons: token expired")
}

func TestViewsInitWritesFileOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.yaml")
	var out bytes.Buffer
	require.NoError(t, writeViewsFile(path, &out))
	assert.Equal(t, "wrote "+path+"\n", out.String())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := intconfig.LoadViewsFromReader(f, "yaml")
	require.NoError(t, err)
	assert.Len(t, cfg.Views, len(intconfig.DefaultViews().Views))

	err = writeViewsFile(path, &out)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "create"))
}
