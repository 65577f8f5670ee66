package credential

import (
	"context"
	"fmt"

	"github.com/congo-pay/pinpad/internal/config"
	"github.com/congo-pay/pinpad/internal/infra"
)

// Open builds the backend selected by cfg.CredentialStore. The returned close
// func releases any connection the backend holds and is never nil.
func Open(ctx context.Context, cfg config.Config) (ReadWriter, func(), error) {
	switch cfg.CredentialStore {
	case config.StoreRedis:
		client, err := infra.NewRedisClient(ctx, cfg.RedisURL, cfg.AppName)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(client, cfg.CredentialNamespace), func() { _ = client.Close() }, nil
	case config.StorePostgres:
		pool, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.AppName)
		if err != nil {
			return nil, nil, err
		}
		store := NewPostgresStore(pool, cfg.CredentialNamespace)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	case config.StoreMemory, "":
		return NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown credential store %q", cfg.CredentialStore)
	}
}
