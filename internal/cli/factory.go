package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/adapters/sqlite"
	"github.com/aretw0/arbor/pkg/config"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/library"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
)

// DefaultSQLitePath is used when the sqlite store has no DSN.
const DefaultSQLitePath = ".arbor/trees.db"

// Session is an editor with the collaborators a command needs.
type Session struct {
	Editor   *arbor.Editor
	Logger   *slog.Logger
	Settings *config.Settings
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	Library  *library.Manager
	// Watchable is the store's change feed, when it has one.
	Watchable ports.Watchable

	closers []func() error
}

// Open builds a session from opts. extra hooks run after the metrics and
// logging hooks.
func Open(opts Options, extra ...domain.LifecycleHooks) (*Session, error) {
	settings, err := loadSettings(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	logger, err := createLogger(opts, settings)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Logger:   logger,
		Settings: settings,
		Registry: prometheus.NewRegistry(),
	}
	s.Metrics, err = observability.NewMetrics(s.Registry)
	if err != nil {
		return nil, err
	}

	store, locker, err := s.openStore(opts)
	if err != nil {
		return nil, err
	}
	if w, ok := store.(ports.Watchable); ok {
		s.Watchable = w
	}
	mws, err := storeMiddlewares(opts)
	if err != nil {
		s.Close()
		return nil, err
	}
	libOpts := []library.Option{library.WithLogger(logger)}
	if locker != nil {
		libOpts = append(libOpts, library.WithLocker(locker))
	}
	s.Library = library.NewManager(middleware.Chain(store, mws...), libOpts...)

	editorOpts := []arbor.Option{
		arbor.WithLogger(logger),
		arbor.WithSettings(settings),
		arbor.WithStore(s.Library),
		arbor.WithHooks(observability.Chain(append([]domain.LifecycleHooks{observability.Hooks(s.Metrics, logger)}, extra...)...)),
	}
	if opts.Layout != "" {
		l, err := domain.ParseLayout(opts.Layout)
		if err != nil {
			return nil, err
		}
		editorOpts = append(editorOpts, arbor.WithLayout(l))
	}
	if opts.Mode != "" {
		m, err := domain.ParseMode(opts.Mode)
		if err != nil {
			return nil, err
		}
		editorOpts = append(editorOpts, arbor.WithMode(m))
	}

	s.Editor, err = arbor.New(editorOpts...)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("error initializing editor: %w", err)
	}
	return s, nil
}

// Close releases the store connections.
func (s *Session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *Session) openStore(opts Options) (ports.DocumentStore, ports.DistributedLocker, error) {
	switch opts.Store {
	case "", "file":
		return file.New(opts.StoreDSN), nil, nil
	case "memory":
		return memory.NewStore(), nil, nil
	case "sqlite":
		path := opts.StoreDSN
		if path == "" {
			path = DefaultSQLitePath
		}
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, nil, err
			}
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		s.closers = append(s.closers, store.Close)
		return store, nil, nil
	case "redis":
		url := opts.StoreDSN
		if url == "" {
			url = "redis://localhost:6379/0"
		}
		redisOpts, err := backend.ParseURL(url)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client := backend.NewClient(redisOpts)
		store := redis.NewFromClient(client)
		s.closers = append(s.closers, store.Close)
		return store, redis.NewLocker(client, "arbor:"), nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (want file, memory, sqlite or redis)", opts.Store)
	}
}

// storeMiddlewares compresses before encrypting: sealed bytes do not
// compress.
func storeMiddlewares(opts Options) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if opts.Compress {
		mws = append(mws, middleware.NewCompressionMiddleware())
	}
	if len(opts.StoreKeys) == 0 {
		return mws, nil
	}
	keys := make([][]byte, len(opts.StoreKeys))
	for i, k := range opts.StoreKeys {
		key, err := hex.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("store key %d is not hex: %w", i, err)
		}
		keys[i] = key
	}
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    keys[0],
		FallbackKeys: keys[1:],
	})
	if err != nil {
		return nil, err
	}
	return append(mws, enc), nil
}

func loadSettings(path string) (*config.Settings, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// createLogger configures the application logger. Debug wins over the
// settings level; logs go to Stderr so Stdout stays free for output.
func createLogger(opts Options, settings *config.Settings) (*slog.Logger, error) {
	level := settings.Level()
	if opts.LogLevel != "" {
		parsed, err := config.ParseLevel(opts.LogLevel)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	if opts.Debug {
		level = slog.LevelDebug
	}
	format := logging.FormatText
	if opts.JSONLogs {
		format = logging.FormatJSON
	}
	return logging.NewWriter(os.Stderr, level, format), nil
}
