package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"dashboard/internal/utils"

	"github.com/hashicorp/go-multierror"
)

type Env struct {
	AppAddr string
	GinMode string

	StoreAPIURL     string
	StoreAPIToken   string
	StoreAPITimeout time.Duration

	DBDriver string
	DBDSN    string

	JWTSecret   string
	CORSOrigins []string

	ViewsFile       string
	ViewIdleTimeout time.Duration
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))

	storeURL := strings.TrimRight(strings.TrimSpace(os.Getenv("STORE_API_URL")), "/")
	if storeURL == "" {
		storeURL = "http://localhost:3000/api"
	}

	driver := strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER")))
	if driver == "" {
		driver = "mysql"
	}
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" && driver == "mysql" {
		dsn = "root:@tcp(127.0.0.1:3306)/dashboard?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
	}

	return Env{
		AppAddr:         appAddr,
		GinMode:         ginMode,
		StoreAPIURL:     storeURL,
		StoreAPIToken:   strings.TrimSpace(os.Getenv("STORE_API_TOKEN")),
		StoreAPITimeout: durationEnv("STORE_API_TIMEOUT", 15*time.Second),
		DBDriver:        driver,
		DBDSN:           dsn,
		JWTSecret:       os.Getenv("JWT_SECRET"),
		CORSOrigins:     utils.SplitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		ViewsFile:       strings.TrimSpace(os.Getenv("VIEWS_FILE")),
		ViewIdleTimeout: durationEnv("VIEW_IDLE_TIMEOUT", 30*time.Minute),
	}
}

// Validate reports every invalid setting at once.
func (e Env) Validate() error {
	var result error
	if u, err := url.Parse(e.StoreAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		result = multierror.Append(result, fmt.Errorf("STORE_API_URL %q is not an absolute URL", e.StoreAPIURL))
	}
	switch e.DBDriver {
	case "mysql", "pgx":
		if e.DBDSN == "" {
			result = multierror.Append(result, fmt.Errorf("DB_DSN is required for driver %s", e.DBDriver))
		}
	case "none":
	default:
		result = multierror.Append(result, fmt.Errorf("DB_DRIVER %q is not one of mysql, pgx, none", e.DBDriver))
	}
	if e.StoreAPITimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("STORE_API_TIMEOUT must be positive"))
	}
	if e.ViewIdleTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("VIEW_IDLE_TIMEOUT must be positive"))
	}
	return result
}

func durationEnv(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
