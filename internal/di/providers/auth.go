package providers

import (
	"github.com/samber/do/v2"

	"github.com/storytimeapp/storytime-server/internal/auth"
	"github.com/storytimeapp/storytime-server/internal/config"
	"github.com/storytimeapp/storytime-server/internal/logger"
)

// AuthKey is the hex-encoded PASETO key material.
type AuthKey string

// ProvideAuthKey provides the token signing key, generating and
// persisting one under the data path when none is configured.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Auth.AccessTokenKey != "" {
		return AuthKey(cfg.Auth.AccessTokenKey), nil
	}

	keyHex, err := auth.LoadOrGenerateKey(cfg.Storage.DataPath)
	if err != nil {
		return "", err
	}

	log.Info("Auth key loaded", "path", cfg.Storage.DataPath)
	return AuthKey(keyHex), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(string(key), cfg.Auth.AccessTokenDuration)
}
