package cmd

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"geoshop/internal/adapters/out/filestore"
	"geoshop/internal/adapters/out/kafkanotify"
	"geoshop/internal/adapters/out/postgres"
	"geoshop/internal/adapters/out/postgres/clientrepo"
	"geoshop/internal/core/application/usecases/commands"
	"geoshop/internal/core/application/usecases/queries"
	"geoshop/internal/core/domain/services"
	"geoshop/internal/core/ports"
	"geoshop/internal/jobs"
)

// CompositionRoot wires adapters, domain services and use case handlers
// together. Handlers are created per call; the shared pieces live here.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	identity   ports.IdentityService
	notifier   ports.Notifier
	fileStore  ports.FileStore
	resolver   services.OwnershipResolver
	pricing    services.PricingEngine
	logger     *zap.Logger
}

// NewCompositionRoot builds the object graph from the configuration.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *zap.Logger) (*CompositionRoot, error) {
	fileStore, err := filestore.NewLocalFileStore(config.MediaRoot)
	if err != nil {
		return nil, err
	}
	resolver, err := services.NewOwnershipResolver(config.MaxOrderArea)
	if err != nil {
		return nil, err
	}
	pricing, err := services.NewPricingEngine(config.VATRate)
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		identity:   clientrepo.NewGormClientRepository(gormDB),
		notifier:   kafkanotify.NewKafkaNotifier(config.KafkaBrokers, config.KafkaOrderEventsTopic),
		fileStore:  fileStore,
		resolver:   resolver,
		pricing:    pricing,
		logger:     logger,
	}, nil
}

// FileStore exposes the media store for the HTTP download endpoint.
func (c *CompositionRoot) FileStore() ports.FileStore {
	return c.fileStore
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(
		c.fullUoWFactory(), c.identity, c.notifier, c.resolver, c.logger)
}

func (c *CompositionRoot) CreateUpdateOrderCommandHandler() commands.UpdateOrderCommandHandler {
	return commands.NewUpdateOrderCommandHandler(
		c.fullUoWFactory(), c.identity, c.notifier, c.resolver, c.logger)
}

func (c *CompositionRoot) CreateConfirmOrderCommandHandler() commands.ConfirmOrderCommandHandler {
	return commands.NewConfirmOrderCommandHandler(
		c.fullUoWFactory(), c.identity, c.notifier, c.resolver, c.pricing, c.logger)
}

func (c *CompositionRoot) CreateDeleteOrderCommandHandler() commands.DeleteOrderCommandHandler {
	return commands.NewDeleteOrderCommandHandler(c.orderUoWFactory(), c.fileStore, c.logger)
}

func (c *CompositionRoot) CreateDeleteOrderItemCommandHandler() commands.DeleteOrderItemCommandHandler {
	return commands.NewDeleteOrderItemCommandHandler(c.orderUoWFactory(), c.pricing)
}

func (c *CompositionRoot) CreateFetchExtractOrdersCommandHandler() commands.FetchExtractOrdersCommandHandler {
	return commands.NewFetchExtractOrdersCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateUploadExtractResultCommandHandler() commands.UploadExtractResultCommandHandler {
	var f commands.OrderProductUoWFactory = FuncOrderProductUoWFactory(func() commands.OrderProductUoW {
		return c.uowFactory.Create()
	})
	return commands.NewUploadExtractResultCommandHandler(f, c.fileStore, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateValidateOrderItemCommandHandler() commands.ValidateOrderItemCommandHandler {
	return commands.NewValidateOrderItemCommandHandler(
		c.orderUoWFactory(), c.fileStore, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateDownloadResultCommandHandler() commands.DownloadResultCommandHandler {
	return commands.NewDownloadResultCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateArchiveOrdersCommandHandler() commands.ArchiveOrdersCommandHandler {
	return commands.NewArchiveOrdersCommandHandler(c.orderUoWFactory(), c.fileStore, c.logger)
}

func (c *CompositionRoot) CreateRebuildArchivesCommandHandler() commands.RebuildArchivesCommandHandler {
	return commands.NewRebuildArchivesCommandHandler(c.orderUoWFactory(), c.fileStore, c.logger)
}

func (c *CompositionRoot) CreateGetClientOrdersQueryHandler() queries.GetClientOrdersQueryHandler {
	return queries.NewGetClientOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetLastDraftQueryHandler() queries.GetLastDraftQueryHandler {
	return queries.NewGetLastDraftQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetPublicOrderQueryHandler() queries.GetPublicOrderQueryHandler {
	return queries.NewGetPublicOrderQueryHandler(c.gormDB)
}

// CreateJobManager wires the background jobs onto their handlers.
func (c *CompositionRoot) CreateJobManager(config Config) *jobs.JobManager {
	archivingJob := jobs.NewOrderArchivingJob(
		c.CreateArchiveOrdersCommandHandler(),
		config.ArchiveCronSpec,
		config.ArchiveRetention,
		c.logger,
	)
	rebuildJob := jobs.NewArchiveRebuildJob(
		c.CreateRebuildArchivesCommandHandler(),
		config.RebuildCronSpec,
		c.logger,
	)
	return jobs.NewJobManager(archivingJob, rebuildJob)
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) fullUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncOrderProductUoWFactory func() commands.OrderProductUoW

func (f FuncOrderProductUoWFactory) Create() commands.OrderProductUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
