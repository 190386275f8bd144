package main

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/carverlab/facet"
	"github.com/carverlab/facet/internal/config"
	"github.com/carverlab/facet/internal/logging"
	"github.com/carverlab/facet/pkg/adapters/file"
	"github.com/carverlab/facet/pkg/adapters/memory"
	redisAdapter "github.com/carverlab/facet/pkg/adapters/redis"
	"github.com/carverlab/facet/pkg/persistence/middleware"
	"github.com/carverlab/facet/pkg/ports"
)

var rootCmd = &cobra.Command{
	Use:   "facet",
	Short: "Facet is an incremental solid-modeling session service",
	Long:  `Facet applies sketch-based features to persistent modeling sessions and serves meshes and STEP exports of the geometry it builds.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return logging.New(level, cfg.LogFormat)
}

// newStore builds the session store (and locker, when Redis is configured)
// the configuration asks for.
func newStore(cfg config.Config) (ports.SessionStore, ports.DistributedLocker, error) {
	var store ports.SessionStore
	var locker ports.DistributedLocker

	switch {
	case cfg.Redis.Addr != "":
		var storeOpts []redisAdapter.Option
		if cfg.SessionTTL > 0 {
			storeOpts = append(storeOpts, redisAdapter.WithTTL(cfg.SessionTTL.Std()))
		}
		if cfg.Redis.Prefix != "" {
			storeOpts = append(storeOpts, redisAdapter.WithPrefix(cfg.Redis.Prefix))
		}
		store = redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, storeOpts...)

		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		locker = redisAdapter.NewLocker(client, cfg.Redis.Prefix)
	case cfg.DataDir != "":
		store = file.New(cfg.DataDir)
	default:
		var opts []memory.Option
		if cfg.SessionTTL > 0 {
			opts = append(opts, memory.WithTTL(cfg.SessionTTL.Std()))
		}
		store = memory.NewStore(opts...)
	}

	if cfg.Encryption.ActiveKey != "" {
		enc, err := encryptionConfig(cfg.Encryption)
		if err != nil {
			return nil, nil, err
		}
		store = middleware.NewEncryptionMiddleware(enc)(store)
	}
	return store, locker, nil
}

func encryptionConfig(cfg config.Encryption) (middleware.EncryptionConfig, error) {
	active, err := base64.StdEncoding.DecodeString(cfg.ActiveKey)
	if err != nil {
		return middleware.EncryptionConfig{}, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(active) != 32 {
		return middleware.EncryptionConfig{}, fmt.Errorf("encryption key must be 32 bytes, got %d", len(active))
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, fk := range cfg.FallbackKeys {
		key, err := base64.StdEncoding.DecodeString(fk)
		if err != nil {
			return middleware.EncryptionConfig{}, fmt.Errorf("decode fallback key %d: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, nil
}

// newEngine assembles the engine with the configured backend.
func newEngine(cfg config.Config, logger *slog.Logger, opts ...facet.Option) (*facet.Engine, error) {
	store, locker, err := newStore(cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, facet.WithLogger(logger), facet.WithStore(store))
	if locker != nil {
		opts = append(opts, facet.WithLocker(locker))
	}
	if cfg.LockTTL > 0 {
		opts = append(opts, facet.WithLockTTL(cfg.LockTTL.Std()))
	}
	return facet.New(opts...)
}
