package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/bubblechart/pkg/errors"
	"github.com/matzehuels/bubblechart/pkg/notify"
	"github.com/matzehuels/bubblechart/pkg/widget"
)

// Config is the TOML configuration file. Command-line flags override the
// values read from it.
type Config struct {
	Widget widget.Config `toml:"widget"`
	Server ServerConfig  `toml:"server"`
	Notify NotifyConfig  `toml:"notify"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	Watch           bool          `toml:"watch"`
	SessionTTL      time.Duration `toml:"session_ttl"`
	CleanupInterval time.Duration `toml:"cleanup_interval"`
}

// NotifyConfig selects the event sinks. Every configured sink receives
// every event.
type NotifyConfig struct {
	Log   LogSinkConfig      `toml:"log"`
	Redis notify.RedisConfig `toml:"redis"`
	Mongo notify.MongoConfig `toml:"mongo"`
}

// LogSinkConfig enables the log sink.
type LogSinkConfig struct {
	Enabled bool `toml:"enabled"`
}

// defaultConfig returns the configuration used when no file is present.
func defaultConfig() Config {
	return Config{
		Widget: widget.DefaultConfig(),
		Notify: NotifyConfig{Log: LogSinkConfig{Enabled: true}},
	}
}

// loadConfig reads path. An empty path falls back to ./bubblechart.toml,
// and a missing default file yields the defaults.
func loadConfig(path string, logger *log.Logger) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warn("unknown config keys", "file", path, "keys", strings.Join(keys, ", "))
	}

	cfg.Widget.SetDefaults()
	if err := cfg.Widget.Validate(); err != nil {
		return cfg, err
	}
	logger.Debug("config loaded", "file", path)
	return cfg, nil
}

// buildNotifier connects the configured sinks. The returned close function
// releases their connections.
func buildNotifier(ctx context.Context, cfg NotifyConfig, logger *log.Logger) (notify.Notifier, func(), error) {
	var (
		sinks   []notify.Notifier
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.Log.Enabled {
		sinks = append(sinks, notify.NewLogNotifier(logger))
	}
	if cfg.Redis.Addr != "" {
		n, err := notify.DialRedis(ctx, cfg.Redis)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		logger.Debug("redis sink connected", "addr", cfg.Redis.Addr)
		sinks = append(sinks, n)
		closers = append(closers, func() { _ = n.Close() })
	}
	if cfg.Mongo.URI != "" {
		n, err := notify.DialMongo(ctx, cfg.Mongo)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		logger.Debug("mongo sink connected")
		sinks = append(sinks, n)
		closers = append(closers, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = n.Close(shutdownCtx)
		})
	}

	return notify.Multi(sinks...), closeAll, nil
}
