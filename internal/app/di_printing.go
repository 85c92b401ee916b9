package app

import (
	"fmt"

	"github.com/tillware/posd/internal/printing/domain"
	printingHTTP "github.com/tillware/posd/internal/printing/http"
	"github.com/tillware/posd/internal/printing/repository"
	"github.com/tillware/posd/internal/printing/service"
	printingUsecase "github.com/tillware/posd/internal/printing/usecase"
)

// PrintRepository returns the print job repository for the configured driver.
func (c *Container) PrintRepository() (printingUsecase.PrintJobRepository, error) {
	var err error
	c.printRepoInit.Do(func() {
		c.printRepo, err = c.initPrintRepository()
		if err != nil {
			c.initErrors["printRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["printRepo"]; exists {
		return nil, storedErr
	}
	return c.printRepo, nil
}

// PrintManager returns the concrete print pipeline manager. Callers that need
// startup hooks (LoadHistory) use this; request paths go through PrintUseCase.
func (c *Container) PrintManager() (*printingUsecase.PrintManager, error) {
	var err error
	c.printManagerInit.Do(func() {
		c.printManager, err = c.initPrintManager()
		if err != nil {
			c.initErrors["printManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["printManager"]; exists {
		return nil, storedErr
	}
	return c.printManager, nil
}

// PrintUseCase returns the print pipeline use case.
func (c *Container) PrintUseCase() (printingUsecase.PrintUseCase, error) {
	var err error
	c.printUseCaseInit.Do(func() {
		c.printUseCase, err = c.initPrintUseCase()
		if err != nil {
			c.initErrors["printUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["printUseCase"]; exists {
		return nil, storedErr
	}
	return c.printUseCase, nil
}

// PrintHandler returns the print pipeline HTTP handler.
func (c *Container) PrintHandler() (*printingHTTP.PrintHandler, error) {
	var err error
	c.printHandlerInit.Do(func() {
		c.printHandler, err = c.initPrintHandler()
		if err != nil {
			c.initErrors["printHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["printHandler"]; exists {
		return nil, storedErr
	}
	return c.printHandler, nil
}

// initPrintRepository creates the print job repository based on the database driver.
func (c *Container) initPrintRepository() (printingUsecase.PrintJobRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for print repository: %w", err)
	}

	switch c.config.DBDriver {
	case "sqlite3":
		return repository.NewSqlitePrintRepository(db), nil
	case "postgres":
		return repository.NewPostgreSQLPrintRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initPrintManager creates the print pipeline manager with its dependencies.
func (c *Container) initPrintManager() (*printingUsecase.PrintManager, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for print manager: %w", err)
	}

	printRepo, err := c.PrintRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get print repository for print manager: %w", err)
	}

	assignments, err := domain.LoadRoleAssignments(c.config.PrinterAssignmentsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load printer assignments: %w", err)
	}

	renderer := service.NewRenderer(c.config.PrintSpoolDir)
	dispatcher := service.NewHTTPDispatcher(c.config.PrintBridgeURL, c.config.PrintTimeout)

	return printingUsecase.NewPrintManager(
		printingUsecase.PrintConfig{
			MaxRetries:           c.config.PrintMaxRetries,
			MaxCopies:            c.config.PrintMaxCopies,
			HistorySize:          c.config.PrintHistorySize,
			PersistedHistorySize: c.config.PrintPersistedHistorySize,
		},
		txManager,
		printRepo,
		renderer,
		dispatcher,
		assignments,
		c.Logger(),
	), nil
}

// initPrintUseCase wraps the print manager with metrics when enabled.
func (c *Container) initPrintUseCase() (printingUsecase.PrintUseCase, error) {
	printManager, err := c.PrintManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get print manager for print use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for print use case: %w", err)
	}

	return printingUsecase.NewPrintUseCaseWithMetrics(printManager, businessMetrics), nil
}

// initPrintHandler creates the print HTTP handler with its dependencies.
func (c *Container) initPrintHandler() (*printingHTTP.PrintHandler, error) {
	printUseCase, err := c.PrintUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get print use case for print handler: %w", err)
	}

	return printingHTTP.NewPrintHandler(printUseCase, c.Logger()), nil
}
