package app

import (
	"fmt"

	"github.com/tillware/posd/internal/salesqueue/client"
	salesqueueHTTP "github.com/tillware/posd/internal/salesqueue/http"
	"github.com/tillware/posd/internal/salesqueue/repository"
	salesqueueUsecase "github.com/tillware/posd/internal/salesqueue/usecase"
)

// SaleRepository returns the sale queue repository for the configured driver.
func (c *Container) SaleRepository() (salesqueueUsecase.SaleRepository, error) {
	var err error
	c.saleRepoInit.Do(func() {
		c.saleRepo, err = c.initSaleRepository()
		if err != nil {
			c.initErrors["saleRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["saleRepo"]; exists {
		return nil, storedErr
	}
	return c.saleRepo, nil
}

// SyncEngine returns the background sale sync engine.
func (c *Container) SyncEngine() (*salesqueueUsecase.SyncEngine, error) {
	var err error
	c.syncEngineInit.Do(func() {
		c.syncEngine, err = c.initSyncEngine()
		if err != nil {
			c.initErrors["syncEngine"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["syncEngine"]; exists {
		return nil, storedErr
	}
	return c.syncEngine, nil
}

// QueueUseCase returns the sale queue use case.
func (c *Container) QueueUseCase() (salesqueueUsecase.QueueUseCase, error) {
	var err error
	c.queueUseCaseInit.Do(func() {
		c.queueUseCase, err = c.initQueueUseCase()
		if err != nil {
			c.initErrors["queueUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["queueUseCase"]; exists {
		return nil, storedErr
	}
	return c.queueUseCase, nil
}

// SaleHandler returns the sale queue HTTP handler.
func (c *Container) SaleHandler() (*salesqueueHTTP.SaleHandler, error) {
	var err error
	c.saleHandlerInit.Do(func() {
		c.saleHandler, err = c.initSaleHandler()
		if err != nil {
			c.initErrors["saleHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["saleHandler"]; exists {
		return nil, storedErr
	}
	return c.saleHandler, nil
}

// initSaleRepository creates the sale repository based on the database driver.
func (c *Container) initSaleRepository() (salesqueueUsecase.SaleRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for sale repository: %w", err)
	}

	switch c.config.DBDriver {
	case "sqlite3":
		return repository.NewSqliteSaleRepository(db), nil
	case "postgres":
		return repository.NewPostgreSQLSaleRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSyncEngine creates the sale sync engine with its dependencies.
func (c *Container) initSyncEngine() (*salesqueueUsecase.SyncEngine, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for sync engine: %w", err)
	}

	saleRepo, err := c.SaleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get sale repository for sync engine: %w", err)
	}

	submitter := client.NewHTTPSaleSubmitter(
		c.config.RemoteBaseURL,
		c.config.RemoteAPIToken,
		c.config.RemoteTimeout,
	)

	return salesqueueUsecase.NewSyncEngine(
		salesqueueUsecase.SyncConfig{
			Interval:         c.config.SaleSyncInterval,
			BatchSize:        c.config.SaleSyncBatchSize,
			SubmitsPerSecond: float64(c.config.SaleSyncSubmitsPerSecond),
		},
		txManager,
		saleRepo,
		submitter,
		c.Logger(),
	), nil
}

// initQueueUseCase creates the sale queue use case with its dependencies.
func (c *Container) initQueueUseCase() (salesqueueUsecase.QueueUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for queue use case: %w", err)
	}

	saleRepo, err := c.SaleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get sale repository for queue use case: %w", err)
	}

	syncEngine, err := c.SyncEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to get sync engine for queue use case: %w", err)
	}

	// A captured sale nudges the sync engine so it drains without waiting
	// for the next interval tick.
	useCase := salesqueueUsecase.NewSaleQueueUseCase(txManager, saleRepo, syncEngine.Trigger, c.Logger())

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for queue use case: %w", err)
	}

	return salesqueueUsecase.NewQueueUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initSaleHandler creates the sale HTTP handler with its dependencies.
func (c *Container) initSaleHandler() (*salesqueueHTTP.SaleHandler, error) {
	queueUseCase, err := c.QueueUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get queue use case for sale handler: %w", err)
	}

	syncEngine, err := c.SyncEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to get sync engine for sale handler: %w", err)
	}

	return salesqueueHTTP.NewSaleHandler(queueUseCase, syncEngine, c.Logger()), nil
}
