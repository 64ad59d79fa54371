package app

import (
	"context"
	"fmt"

	cryptoCache "github.com/allisson/compvault/internal/crypto/cache"
	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	cryptoHTTP "github.com/allisson/compvault/internal/crypto/http"
	cryptoService "github.com/allisson/compvault/internal/crypto/service"
	cryptoUseCase "github.com/allisson/compvault/internal/crypto/usecase"
	"github.com/allisson/compvault/internal/metrics"
)

// KDFOptions returns the configured key-derivation parameters. Parameters below the
// security floor are rejected here rather than on the first decrypt.
func (c *Container) KDFOptions() (*cryptoDomain.Options, error) {
	c.kdfOptionsInit.Do(func() {
		params := cryptoDomain.KDFParams{
			MemoryKiB:   uint32(c.config.KDFMemoryKiB),
			Iterations:  uint32(c.config.KDFIterations),
			Parallelism: uint8(c.config.KDFParallelism),
			HashLength:  cryptoDomain.KeySize,
		}
		if err := params.Validate(); err != nil {
			c.remember("kdfOptions", fmt.Errorf("invalid key derivation parameters: %w", err))
			return
		}
		c.kdfOptions = &cryptoDomain.Options{KDFParams: &params}
	})
	if err := c.initError("kdfOptions"); err != nil {
		return nil, err
	}
	return c.kdfOptions, nil
}

// KeyDeriver returns the Argon2id deriver with its PBKDF2 fallback. The capability
// probe runs once, on first access.
func (c *Container) KeyDeriver() *cryptoService.ResilientDeriver {
	c.keyDeriverInit.Do(func() {
		c.keyDeriver = cryptoService.SelectKeyDeriver(
			context.Background(),
			cryptoService.NewArgon2idDeriver(),
			cryptoService.NewPBKDF2Deriver(),
			c.config.KDFForceFallback,
			c.Logger(),
		)
	})
	return c.keyDeriver
}

// KeyCache returns the derived-key cache with its cleanup loop running.
func (c *Container) KeyCache() (*cryptoCache.KeyCache, error) {
	c.keyCacheInit.Do(func() {
		keyCache, err := c.initKeyCache()
		c.remember("keyCache", err)
		c.keyCache = keyCache
	})
	if err := c.initError("keyCache"); err != nil {
		return nil, err
	}
	return c.keyCache, nil
}

// EncryptionUseCase returns the encryption service used by the crypto endpoints and
// CLI commands. It has no record deleter, so audits through it never delete.
func (c *Container) EncryptionUseCase() (cryptoUseCase.EncryptionUseCase, error) {
	c.encryptionUseCaseInit.Do(func() {
		useCase, err := c.newEncryptionUseCase(nil)
		c.remember("encryptionUseCase", err)
		c.encryptionUseCase = useCase
	})
	if err := c.initError("encryptionUseCase"); err != nil {
		return nil, err
	}
	return c.encryptionUseCase, nil
}

// EncryptionHandler returns the HTTP handler for the crypto endpoints.
func (c *Container) EncryptionHandler() (*cryptoHTTP.EncryptionHandler, error) {
	c.encryptionHandlerInit.Do(func() {
		handler, err := c.initEncryptionHandler()
		c.remember("encryptionHandler", err)
		c.encryptionHandler = handler
	})
	if err := c.initError("encryptionHandler"); err != nil {
		return nil, err
	}
	return c.encryptionHandler, nil
}

func (c *Container) initKeyCache() (*cryptoCache.KeyCache, error) {
	keyCache := cryptoCache.New(c.KeyDeriver(), cryptoCache.Config{
		TTL:                   c.config.KeyCacheTTL,
		Capacity:              c.config.KeyCacheCapacity,
		CleanupInterval:       c.config.KeyCacheCleanupInterval,
		PrecomputeConcurrency: c.config.KeyCachePrecomputeConcurrency,
	}, cryptoCache.WithLogger(c.Logger()))

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for key cache: %w", err)
	}
	if provider != nil {
		err := metrics.RegisterKeyCacheMetrics(provider.MeterProvider(), c.config.MetricsNamespace,
			func() metrics.KeyCacheStats {
				stats := keyCache.Stats()
				return metrics.KeyCacheStats{
					Size:        stats.Size,
					Capacity:    stats.Capacity,
					Hits:        stats.Hits,
					Misses:      stats.Misses,
					Derivations: stats.Derivations,
					Evictions:   stats.Evictions,
				}
			})
		if err != nil {
			return nil, fmt.Errorf("failed to register key cache metrics: %w", err)
		}
	}

	keyCache.Start()
	return keyCache, nil
}

// newEncryptionUseCase builds an encryption use case over the shared key cache.
func (c *Container) newEncryptionUseCase(deleter cryptoUseCase.RecordDeleter) (cryptoUseCase.EncryptionUseCase, error) {
	keyCache, err := c.KeyCache()
	if err != nil {
		return nil, fmt.Errorf("failed to get key cache for encryption use case: %w", err)
	}
	bm, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for encryption use case: %w", err)
	}

	useCase := cryptoUseCase.NewEncryptionUseCase(cryptoService.NewAEADManager(), keyCache, deleter)
	return cryptoUseCase.NewEncryptionUseCaseWithMetrics(useCase, bm), nil
}

func (c *Container) initEncryptionHandler() (*cryptoHTTP.EncryptionHandler, error) {
	useCase, err := c.EncryptionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get encryption use case for encryption handler: %w", err)
	}
	opts, err := c.KDFOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to get kdf options for encryption handler: %w", err)
	}
	manager, err := c.SessionManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get session manager for encryption handler: %w", err)
	}

	return cryptoHTTP.NewEncryptionHandler(useCase, manager, opts, c.Logger()), nil
}
