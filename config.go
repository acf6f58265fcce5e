package main

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/robalobadob/scratcher/internal/card"
	"github.com/robalobadob/scratcher/internal/game"
	"github.com/robalobadob/scratcher/internal/httpserver"
	"github.com/robalobadob/scratcher/internal/scratch"
	"github.com/robalobadob/scratcher/internal/store"
	"github.com/robalobadob/scratcher/internal/words"
)

const envPrefix = "SCRATCHER"

type Config struct {
	bind           string
	port           int
	baseURL        string
	clientOrigin   string
	logLevel       string
	jwtSecret      string
	cookieName     string
	secureCookies  bool
	requestTimeout time.Duration
	sessionTimeout time.Duration

	storeEngine string
	storePath   string
	storeDSN    string
	storeTable  string
	storeRegion string

	minNumber   int
	maxNumber   int
	prizeCount  int
	threshold   float64
	cellSize    float64
	checkEvery  int
	brushRadius float64
	historySize int
	minWords    int
	maxLength   int
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if _, err := zerolog.ParseLevel(c.logLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.logLevel)
	}
	if !slices.Contains(store.Engines(), strings.ToLower(c.storeEngine)) {
		return fmt.Errorf("unknown store engine %q (want one of %s)", c.storeEngine, strings.Join(store.Engines(), ", "))
	}
	switch strings.ToLower(c.storeEngine) {
	case store.EnginePostgres:
		if c.storeDSN == "" {
			return errors.New("--store-dsn is required for the postgres engine")
		}
	case store.EngineDynamoDB:
		if c.storeTable == "" {
			return errors.New("--store-table is required for the dynamodb engine")
		}
	}
	if !(c.threshold > 0 && c.threshold <= 1) {
		return fmt.Errorf("reveal threshold must be in (0, 1], got %v", c.threshold)
	}
	if c.brushRadius <= 0 || c.cellSize <= 0 {
		return errors.New("brush radius and cell size must be positive")
	}
	if c.minWords < 1 || c.maxLength < 1 {
		return errors.New("min words and max length must be positive")
	}
	return c.cardConfig().Validate()
}

func (c *Config) addr() string {
	return net.JoinHostPort(c.bind, strconv.Itoa(c.port))
}

func (c *Config) cardConfig() card.Config {
	return card.Config{MinNumber: c.minNumber, MaxNumber: c.maxNumber, PrizeCount: c.prizeCount}
}

func (c *Config) gameConfig() game.Config {
	g := game.DefaultConfig()
	for _, o := range []*scratch.Options{&g.YourSurface, &g.PrizeSurface} {
		o.Threshold = c.threshold
		o.CellSize = c.cellSize
		o.CheckEvery = c.checkEvery
	}
	g.BrushRadius = c.brushRadius
	g.HistorySize = c.historySize
	return g
}

func (c *Config) storeOptions() store.Options {
	path := c.storePath
	if path == "" {
		path = filepath.Join("data", "scratcher.db")
		if strings.EqualFold(c.storeEngine, store.EngineJSON) {
			path = filepath.Join("data", "progress.json")
		}
	}
	return store.Options{
		Engine: c.storeEngine,
		Path:   path,
		DSN:    c.storeDSN,
		Table:  c.storeTable,
		Region: c.storeRegion,
	}
}

func (c *Config) serverOptions(st store.Store) httpserver.Options {
	return httpserver.Options{
		Store:          st,
		Cards:          c.cardConfig(),
		Game:           c.gameConfig(),
		Rules:          words.Rules{MinWords: c.minWords, MaxLength: c.maxLength},
		BaseURL:        c.baseURL,
		ClientOrigin:   c.clientOrigin,
		JWTSecret:      c.jwtSecret,
		CookieName:     c.cookieName,
		SecureCookies:  c.secureCookies,
		RequestTimeout: c.requestTimeout,
		SessionTimeout: c.sessionTimeout,
	}
}

// registerServeFlags adds the serve command's flags to fs.
func registerServeFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: SCRATCHER_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 5175, "port to listen on (env: SCRATCHER_PORT)")
	fs.StringVar(&cfg.baseURL, "base-url", "", "public origin used in share links; derived from requests if empty (env: SCRATCHER_BASE_URL)")
	fs.StringVar(&cfg.clientOrigin, "client-origin", "http://localhost:5173", "origin allowed by CORS (env: SCRATCHER_CLIENT_ORIGIN)")
	fs.StringVar(&cfg.jwtSecret, "jwt-secret", "", "HMAC secret for player cookies (env: SCRATCHER_JWT_SECRET)")
	fs.StringVar(&cfg.cookieName, "cookie-name", "scratcher_player", "player cookie name (env: SCRATCHER_COOKIE_NAME)")
	fs.BoolVar(&cfg.secureCookies, "secure-cookies", false, "mark cookies Secure and SameSite=None (env: SCRATCHER_SECURE_COOKIES)")
	fs.DurationVar(&cfg.requestTimeout, "request-timeout", 10*time.Second, "per-request handler timeout (env: SCRATCHER_REQUEST_TIMEOUT)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game sessions are dropped (env: SCRATCHER_SESSION_TIMEOUT)")

	fs.StringVar(&cfg.storeEngine, "store", store.EngineSQLite, "progress store: "+strings.Join(store.Engines(), ", ")+" (env: SCRATCHER_STORE)")
	fs.StringVar(&cfg.storePath, "store-path", "", "file for the json and sqlite stores (env: SCRATCHER_STORE_PATH)")
	fs.StringVar(&cfg.storeDSN, "store-dsn", "", "postgres connection string (env: SCRATCHER_STORE_DSN)")
	fs.StringVar(&cfg.storeTable, "store-table", "", "dynamodb table name (env: SCRATCHER_STORE_TABLE)")
	fs.StringVar(&cfg.storeRegion, "store-region", "", "dynamodb region (env: SCRATCHER_STORE_REGION)")

	fs.IntVar(&cfg.minNumber, "min-number", card.DefaultMinNumber, "smallest card number (env: SCRATCHER_MIN_NUMBER)")
	fs.IntVar(&cfg.maxNumber, "max-number", card.DefaultMaxNumber, "largest card number (env: SCRATCHER_MAX_NUMBER)")
	fs.IntVar(&cfg.prizeCount, "prize-count", card.DefaultPrizeCount, "prize numbers per card (env: SCRATCHER_PRIZE_COUNT)")
	fs.Float64Var(&cfg.threshold, "threshold", scratch.DefaultThreshold, "cleared fraction that reveals a surface (env: SCRATCHER_THRESHOLD)")
	fs.Float64Var(&cfg.cellSize, "cell-size", scratch.DefaultCellSize, "coverage grid cell size in pixels (env: SCRATCHER_CELL_SIZE)")
	fs.IntVar(&cfg.checkEvery, "check-every", scratch.DefaultCheckEvery, "scratches between coverage checks (env: SCRATCHER_CHECK_EVERY)")
	fs.Float64Var(&cfg.brushRadius, "brush-radius", game.DefaultBrushRadius, "default brush radius in pixels (env: SCRATCHER_BRUSH_RADIUS)")
	fs.IntVar(&cfg.historySize, "history-size", card.DefaultHistorySize, "finished cards kept for display (env: SCRATCHER_HISTORY_SIZE)")
	fs.IntVar(&cfg.minWords, "min-words", words.DefaultMinWords, "minimum words in a message (env: SCRATCHER_MIN_WORDS)")
	fs.IntVar(&cfg.maxLength, "max-length", words.DefaultMaxLength, "maximum message length in characters (env: SCRATCHER_MAX_LENGTH)")
}

// bindEnv lets SCRATCHER_* environment variables supply any flag the user
// did not set on the command line.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}
