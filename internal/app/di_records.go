package app

import (
	"fmt"

	recordsHTTP "github.com/allisson/compvault/internal/records/http"
	recordsRepository "github.com/allisson/compvault/internal/records/repository"
	recordsUseCase "github.com/allisson/compvault/internal/records/usecase"
)

// RecordRepository returns the record repository for the configured driver.
func (c *Container) RecordRepository() (recordsUseCase.RecordRepository, error) {
	c.recordRepositoryInit.Do(func() {
		repository, err := c.initRecordRepository()
		c.remember("recordRepository", err)
		c.recordRepository = repository
	})
	if err := c.initError("recordRepository"); err != nil {
		return nil, err
	}
	return c.recordRepository, nil
}

// RecordUseCase returns the record use case. Its encryption service deletes through the
// record repository, so audits run from here can remove corrupted records.
func (c *Container) RecordUseCase() (recordsUseCase.RecordUseCase, error) {
	c.recordUseCaseInit.Do(func() {
		useCase, err := c.initRecordUseCase()
		c.remember("recordUseCase", err)
		c.recordUseCase = useCase
	})
	if err := c.initError("recordUseCase"); err != nil {
		return nil, err
	}
	return c.recordUseCase, nil
}

// RecordHandler returns the HTTP handler for the record endpoints.
func (c *Container) RecordHandler() (*recordsHTTP.RecordHandler, error) {
	c.recordHandlerInit.Do(func() {
		handler, err := c.initRecordHandler()
		c.remember("recordHandler", err)
		c.recordHandler = handler
	})
	if err := c.initError("recordHandler"); err != nil {
		return nil, err
	}
	return c.recordHandler, nil
}

func (c *Container) initRecordRepository() (recordsUseCase.RecordRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for record repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return recordsRepository.NewMySQLRecordRepository(db), nil
	case "postgres":
		return recordsRepository.NewPostgreSQLRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initRecordUseCase() (recordsUseCase.RecordUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for record use case: %w", err)
	}
	repository, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for record use case: %w", err)
	}
	encryption, err := c.newEncryptionUseCase(repository)
	if err != nil {
		return nil, fmt.Errorf("failed to create encryption use case for record use case: %w", err)
	}
	opts, err := c.KDFOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to get kdf options for record use case: %w", err)
	}
	bm, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for record use case: %w", err)
	}

	useCase := recordsUseCase.NewRecordUseCase(txManager, repository, encryption, opts)
	return recordsUseCase.NewRecordUseCaseWithMetrics(useCase, bm), nil
}

func (c *Container) initRecordHandler() (*recordsHTTP.RecordHandler, error) {
	useCase, err := c.RecordUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get record use case for record handler: %w", err)
	}
	manager, err := c.SessionManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get session manager for record handler: %w", err)
	}

	return recordsHTTP.NewRecordHandler(useCase, manager, manager, c.config.AuditMaxFailures, c.Logger()), nil
}
