package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tjaksic234/tabletap/internal/config"
	"github.com/tjaksic234/tabletap/internal/crypto"
	"github.com/tjaksic234/tabletap/internal/db"
	"github.com/tjaksic234/tabletap/internal/logging"
	"github.com/tjaksic234/tabletap/internal/migrate"
	"github.com/tjaksic234/tabletap/internal/session"
	"github.com/tjaksic234/tabletap/internal/tabletap"
)

func loadConfig() (config.Config, error) {
	_ = godotenv.Load()
	return config.Load()
}

func newLogger(cfg config.Config) zerolog.Logger {
	return logging.New(logging.Options{
		Service: "tabletap",
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// openStore connects to the local database and brings the schema up.
func openStore(ctx context.Context, cfg config.Config) (*db.DB, error) {
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := migrate.Up(ctx, d); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func newVault(cfg config.Config, d *db.DB) (*session.Vault, error) {
	key, err := cfg.VaultKeyBytes()
	if err != nil {
		return nil, err
	}
	aead, err := crypto.New(key)
	if err != nil {
		return nil, err
	}
	return session.NewVault(d, aead), nil
}

// apiClient builds a client authenticated as the given local user.
// TABLETAP_API_TOKEN, when set, wins over the stored session so scripts
// can run without the vault.
func apiClient(ctx context.Context, cfg config.Config, log zerolog.Logger, userID int64) (*tabletap.Client, string, error) {
	base := tabletap.New(cfg.APIURL, tabletap.WithLogger(log))
	if cfg.APIToken != "" {
		return base.WithSession(cfg.APIToken), "", nil
	}

	d, err := openStore(ctx, cfg)
	if err != nil {
		return nil, "", err
	}
	defer d.Close()

	vault, err := newVault(cfg, d)
	if err != nil {
		return nil, "", err
	}
	stored, err := vault.Load(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("no stored session for user %d, run `tabletap login` first: %w", userID, err)
	}
	return base.WithSession(stored.Token), stored.Email, nil
}
