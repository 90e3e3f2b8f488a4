package config

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"dashboard/internal/liststate"
	"dashboard/internal/utils"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FilterDefault is one filter key with its initial value. Filters are a
// list, not a map, because viper lower-cases map keys and the upstream
// expects camelCase query names.
type FilterDefault struct {
	Key     string `mapstructure:"key" yaml:"key" json:"key"`
	Default any    `mapstructure:"default" yaml:"default" json:"default"`
}

// ViewDefinition describes one list view.
type ViewDefinition struct {
	Entity    string          `mapstructure:"entity" yaml:"entity" json:"entity"`
	Title     string          `mapstructure:"title" yaml:"title" json:"title"`
	Resource  string          `mapstructure:"resource" yaml:"resource" json:"resource"`
	SortBy    string          `mapstructure:"sort_by" yaml:"sort_by" json:"sortBy"`
	SortOrder string          `mapstructure:"sort_order" yaml:"sort_order" json:"sortOrder"`
	Limit     int             `mapstructure:"limit" yaml:"limit" json:"limit"`
	Filters   []FilterDefault `mapstructure:"filters" yaml:"filters" json:"filters"`
	Lookups   []string        `mapstructure:"lookups" yaml:"lookups,omitempty" json:"lookups,omitempty"`
	Deletable bool            `mapstructure:"deletable" yaml:"deletable" json:"deletable"`
}

// Defaults is the FilterState a freshly mounted view starts from.
func (d ViewDefinition) Defaults() liststate.FilterState {
	order, ok := liststate.ParseSortOrder(d.SortOrder)
	if !ok {
		order = liststate.Desc
	}
	filters := make(map[string]any, len(d.Filters))
	for _, f := range d.Filters {
		v := f.Default
		if v == nil {
			v = ""
		}
		filters[f.Key] = v
	}
	return liststate.FilterState{
		Page:      1,
		Limit:     d.Limit,
		SortBy:    d.SortBy,
		SortOrder: order,
		Filters:   filters,
	}.Clone()
}

// ViewsConfig is the content of the views file.
type ViewsConfig struct {
	PageWindow int              `mapstructure:"page_window" yaml:"page_window" json:"pageWindow"`
	Views      []ViewDefinition `mapstructure:"views" yaml:"views" json:"views"`
}

// Find returns the definition for an entity.
func (c ViewsConfig) Find(entity string) (ViewDefinition, bool) {
	entity = strings.ToLower(strings.TrimSpace(entity))
	for _, v := range c.Views {
		if v.Entity == entity {
			return v, true
		}
	}
	return ViewDefinition{}, false
}

// Validate reports every invalid definition at once.
func (c ViewsConfig) Validate() error {
	var result error
	if c.PageWindow < 0 {
		result = multierror.Append(result, fmt.Errorf("page_window must not be negative"))
	}
	seen := map[string]bool{}
	for i, v := range c.Views {
		if v.Entity == "" {
			result = multierror.Append(result, fmt.Errorf("views[%d]: entity is required", i))
			continue
		}
		if seen[v.Entity] {
			result = multierror.Append(result, fmt.Errorf("views[%d]: duplicate entity %q", i, v.Entity))
		}
		seen[v.Entity] = true
		if !strings.HasPrefix(v.Resource, "/") {
			result = multierror.Append(result, fmt.Errorf("%s: resource must start with /", v.Entity))
		}
		if v.SortOrder != "" {
			if _, ok := liststate.ParseSortOrder(v.SortOrder); !ok {
				result = multierror.Append(result, fmt.Errorf("%s: sort_order %q is not asc or desc", v.Entity, v.SortOrder))
			}
		}
		if v.Limit < 0 {
			result = multierror.Append(result, fmt.Errorf("%s: limit must not be negative", v.Entity))
		}
		for _, f := range v.Filters {
			switch f.Key {
			case "", liststate.KeyPage, liststate.KeyLimit, liststate.KeySortBy, liststate.KeySortOrder:
				result = multierror.Append(result, fmt.Errorf("%s: invalid filter key %q", v.Entity, f.Key))
			}
		}
	}
	return result
}

func filter(key string, def any) FilterDefault { return FilterDefault{Key: key, Default: def} }

// DefaultViews is used when no views file is configured.
func DefaultViews() ViewsConfig {
	return ViewsConfig{
		PageWindow: liststate.DefaultWindowSize,
		Views: []ViewDefinition{
			{
				Entity: "attributes", Title: "Attributes", Resource: "/attributes",
				SortBy: "id", SortOrder: "desc", Limit: 10, Deletable: true,
				Filters: []FilterDefault{filter("search", ""), filter("groupId", liststate.All), filter("type", liststate.All), filter("isActive", liststate.All)},
				Lookups: []string{"attribute-groups"},
			},
			{
				Entity: "brands", Title: "Brands", Resource: "/brands",
				SortBy: "createdAt", SortOrder: "desc", Limit: 10, Deletable: true,
				Filters: []FilterDefault{filter("search", ""), filter("isActive", liststate.All), filter("isFeatured", liststate.All)},
			},
			{
				Entity: "categories", Title: "Categories", Resource: "/categories",
				SortBy: "createdAt", SortOrder: "desc", Limit: 10, Deletable: true,
				Filters: []FilterDefault{filter("search", ""), filter("isActive", liststate.All), filter("parentId", liststate.All), filter("language", liststate.All)},
				Lookups: []string{"languages"},
			},
			{
				Entity: "customers", Title: "Customers", Resource: "/customers",
				SortBy: "createdAt", SortOrder: "desc", Limit: 10, Deletable: true,
				Filters: []FilterDefault{filter("search", ""), filter("role", liststate.All), filter("status", liststate.All)},
				Lookups: []string{"roles"},
			},
			{
				Entity: "coupons", Title: "Coupons", Resource: "/coupons",
				SortBy: "createdAt", SortOrder: "desc", Limit: 10, Deletable: true,
				Filters: []FilterDefault{filter("search", ""), filter("type", liststate.All), filter("isActive", liststate.All)},
			},
			{
				Entity: "reviews", Title: "Reviews", Resource: "/reviews",
				SortBy: "createdAt", SortOrder: "desc", Limit: 10, Deletable: true,
				Filters: []FilterDefault{filter("search", ""), filter("rating", liststate.All), filter("status", liststate.All)},
			},
			{
				Entity: "activity", Title: "Activity", Resource: "/activity",
				SortBy: "createdAt", SortOrder: "desc", Limit: 20,
				Filters: []FilterDefault{filter("kind", liststate.All), filter("entity", liststate.All)},
			},
		},
	}
}

// ViewStore holds the current view definitions and reloads them when the
// backing file changes. Mounted views keep the defaults they started with.
type ViewStore struct {
	mu          sync.RWMutex
	cfg         ViewsConfig
	viper       *viper.Viper
	file        string
	subscribers []func(ViewsConfig)
}

// NewViewStore loads definitions from file, or the built-in defaults when
// file is empty.
func NewViewStore(file string) (*ViewStore, error) {
	if file == "" {
		return &ViewStore{cfg: DefaultViews()}, nil
	}
	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType(strings.TrimPrefix(filepath.Ext(file), "."))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read views file: %w", err)
	}
	cfg, err := decodeViews(v)
	if err != nil {
		return nil, err
	}
	return &ViewStore{cfg: cfg, viper: v, file: file}, nil
}

// LoadViewsFromReader parses a views document without touching the filesystem.
func LoadViewsFromReader(r io.Reader, configType string) (ViewsConfig, error) {
	v := viper.New()
	v.SetConfigType(configType)
	if err := v.ReadConfig(r); err != nil {
		return ViewsConfig{}, fmt.Errorf("failed to read views: %w", err)
	}
	return decodeViews(v)
}

func decodeViews(v *viper.Viper) (ViewsConfig, error) {
	cfg := ViewsConfig{PageWindow: liststate.DefaultWindowSize}
	if err := v.Unmarshal(&cfg); err != nil {
		return ViewsConfig{}, fmt.Errorf("failed to unmarshal views: %w", err)
	}
	for i := range cfg.Views {
		cfg.Views[i].Entity = strings.ToLower(strings.TrimSpace(cfg.Views[i].Entity))
	}
	if err := cfg.Validate(); err != nil {
		return ViewsConfig{}, fmt.Errorf("invalid views: %w", err)
	}
	return cfg, nil
}

// Current returns the active definitions.
func (s *ViewStore) Current() ViewsConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Subscribe registers a callback invoked after every successful reload.
func (s *ViewStore) Subscribe(fn func(ViewsConfig)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// EnableHotReload watches the views file. A file that fails to parse or
// validate is logged and ignored.
func (s *ViewStore) EnableHotReload() {
	if s.viper == nil {
		return
	}
	s.viper.OnConfigChange(func(e fsnotify.Event) {
		s.reload(e.Name)
	})
	s.viper.WatchConfig()
}

// reload re-reads the watched file and hands the new definitions to every
// subscriber.
func (s *ViewStore) reload(name string) {
	if err := s.viper.ReadInConfig(); err != nil {
		utils.LogError("", "config", "reload_views", err, zap.String("file", name))
		return
	}
	cfg, err := decodeViews(s.viper)
	if err != nil {
		utils.LogError("", "config", "reload_views", err, zap.String("file", name))
		return
	}
	s.mu.Lock()
	s.cfg = cfg
	subscribers := make([]func(ViewsConfig), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	utils.LogEvent("", "config", "reload_views", "views reloaded", zap.String("file", name), zap.Int("views", len(cfg.Views)))
	for _, fn := range subscribers {
		fn(cfg)
	}
}

// WriteViews encodes definitions as YAML.
func WriteViews(w io.Writer, cfg ViewsConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode views: %w", err)
	}
	return enc.Close()
}
