package app

import (
	"fmt"

	"github.com/tillware/posd/internal/pricing/client"
	pricingHTTP "github.com/tillware/posd/internal/pricing/http"
	"github.com/tillware/posd/internal/pricing/repository"
	pricingUsecase "github.com/tillware/posd/internal/pricing/usecase"
)

// PricingRepository returns the pricing repository for the configured driver.
func (c *Container) PricingRepository() (pricingUsecase.PricingRepository, error) {
	var err error
	c.pricingRepoInit.Do(func() {
		c.pricingRepo, err = c.initPricingRepository()
		if err != nil {
			c.initErrors["pricingRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pricingRepo"]; exists {
		return nil, storedErr
	}
	return c.pricingRepo, nil
}

// SyncManager returns the background pricing sync manager.
func (c *Container) SyncManager() (*pricingUsecase.SyncManager, error) {
	var err error
	c.syncManagerInit.Do(func() {
		c.syncManager, err = c.initSyncManager()
		if err != nil {
			c.initErrors["syncManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["syncManager"]; exists {
		return nil, storedErr
	}
	return c.syncManager, nil
}

// PricingUseCase returns the pricing use case.
func (c *Container) PricingUseCase() (pricingUsecase.PricingUseCase, error) {
	var err error
	c.pricingUseCaseInit.Do(func() {
		c.pricingUseCase, err = c.initPricingUseCase()
		if err != nil {
			c.initErrors["pricingUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pricingUseCase"]; exists {
		return nil, storedErr
	}
	return c.pricingUseCase, nil
}

// PricingHandler returns the pricing HTTP handler.
func (c *Container) PricingHandler() (*pricingHTTP.PricingHandler, error) {
	var err error
	c.pricingHandlerInit.Do(func() {
		c.pricingHandler, err = c.initPricingHandler()
		if err != nil {
			c.initErrors["pricingHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pricingHandler"]; exists {
		return nil, storedErr
	}
	return c.pricingHandler, nil
}

// initPricingRepository creates the pricing repository based on the database driver.
func (c *Container) initPricingRepository() (pricingUsecase.PricingRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for pricing repository: %w", err)
	}

	switch c.config.DBDriver {
	case "sqlite3":
		return repository.NewSqlitePricingRepository(db), nil
	case "postgres":
		return repository.NewPostgreSQLPricingRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSyncManager creates the pricing sync manager with its dependencies.
func (c *Container) initSyncManager() (*pricingUsecase.SyncManager, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for sync manager: %w", err)
	}

	pricingRepo, err := c.PricingRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get pricing repository for sync manager: %w", err)
	}

	fetcher := client.NewHTTPPricingFetcher(
		c.config.RemoteBaseURL,
		c.config.RemoteAPIToken,
		c.config.RemoteTimeout,
	)

	return pricingUsecase.NewSyncManager(
		pricingUsecase.SyncConfig{
			Interval: c.config.PricingSyncInterval,
		},
		txManager,
		pricingRepo,
		fetcher,
		c.Logger(),
	), nil
}

// initPricingUseCase wraps the sync manager with metrics when enabled.
func (c *Container) initPricingUseCase() (pricingUsecase.PricingUseCase, error) {
	syncManager, err := c.SyncManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get sync manager for pricing use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for pricing use case: %w", err)
	}

	return pricingUsecase.NewPricingUseCaseWithMetrics(syncManager, businessMetrics), nil
}

// initPricingHandler creates the pricing HTTP handler with its dependencies.
func (c *Container) initPricingHandler() (*pricingHTTP.PricingHandler, error) {
	pricingUseCase, err := c.PricingUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get pricing use case for pricing handler: %w", err)
	}

	return pricingHTTP.NewPricingHandler(pricingUseCase, c.Logger()), nil
}
