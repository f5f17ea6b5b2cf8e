package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/billybuddy/pkg/jwtx"
)

// InitClinicKeys generates the in-memory Ed25519 signing keys. Tokens issued
// before a restart no longer verify, so every client signs in again.
func InitClinicKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	keyManager, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:  cfg.Issuer,
		NumKeys: cfg.NumKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
	}

	logger.Info("generated ephemeral signing keys", "issuer", cfg.Issuer, "num_keys", cfg.NumKeys)
	logger.Warn("all existing tokens are now invalid due to key rotation on startup")
	return keyManager, nil
}
