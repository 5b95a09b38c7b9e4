package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"mindmap-backend/application/commands/bus"
	commandhandlers "mindmap-backend/application/commands/handlers"
	"mindmap-backend/application/ports"
	querybus "mindmap-backend/application/queries/bus"
	queryhandlers "mindmap-backend/application/queries/handlers"
	"mindmap-backend/application/services"
	"mindmap-backend/infrastructure/codec"
	"mindmap-backend/infrastructure/config"
	"mindmap-backend/infrastructure/messaging/eventbridge"
	"mindmap-backend/infrastructure/persistence/dynamodb"
	"mindmap-backend/infrastructure/persistence/memory"
	"mindmap-backend/interfaces/http/rest"
	resthandlers "mindmap-backend/interfaces/http/rest/handlers"
	pkgerrors "mindmap-backend/pkg/errors"
	"mindmap-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Repository    ports.DocumentRepository
	Publisher     ports.EventPublisher
	Codecs        ports.CodecRegistry
	Metrics       *observability.Metrics
	Tracer        *observability.Tracer
	Sessions      *services.SessionManager
	ViewportSaver *services.ViewportSaver
	ErrorHandler  *pkgerrors.ErrorHandler
	CommandBus    *bus.CommandBus
	QueryBus      *querybus.QueryBus
	Router        *rest.Router
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideDocumentRepository creates the document repository. Development
// runs against the in-memory implementation so no table is needed.
func ProvideDocumentRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.DocumentRepository {
	if cfg.IsDevelopment() {
		logger.Info("using in-memory document repository")
		return memory.NewDocumentRepository()
	}
	return dynamodb.NewDocumentRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideEventPublisher creates the event publisher. Development gets a
// no-op publisher instead of EventBridge.
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.IsDevelopment() {
		return eventbridge.NewNopPublisher()
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates a metrics publisher. Disabled metrics publish
// nothing but keep the call sites unconditional.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	namespace := fmt.Sprintf("MindMap/%s", cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil)
	}
	return observability.NewMetrics(namespace, client)
}

// ProvideTracer creates an X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer("mindmap-backend", cfg.EnableTracing)
}

// ProvideCodecRegistry creates the import/export codec registry
func ProvideCodecRegistry() ports.CodecRegistry {
	return codec.NewDefaultRegistry()
}

// ProvideSessionManager creates the editor session manager
func ProvideSessionManager(repo ports.DocumentRepository, logger *zap.Logger) *services.SessionManager {
	return services.NewSessionManager(repo, logger)
}

// ProvideViewportSaver creates the debounced viewport writer
func ProvideViewportSaver(repo ports.DocumentRepository, logger *zap.Logger) *services.ViewportSaver {
	return services.NewViewportSaver(repo, logger)
}

// ProvideErrorHandler creates the HTTP error renderer
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// CommandHandlerAdapter adapts typed command handlers to the bus interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

// Handle implements bus.CommandHandler
func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

func register[C bus.Command](commandBus *bus.CommandBus, handle func(context.Context, C) error) {
	var zero C
	commandBus.Register(zero, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			typed, ok := cmd.(C)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return handle(ctx, typed)
		},
	})
}

// ProvideCommandBus creates a command bus with every fire-and-forget
// mutation registered. Result-bearing handlers (create, add, paste,
// selection) are consumed directly by the REST layer.
func ProvideCommandBus(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	sessions *services.SessionManager,
	saver *services.ViewportSaver,
	codecs ports.CodecRegistry,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()

	rename := commandhandlers.NewRenameDocumentHandler(repo, publisher, sessions, metrics, logger)
	register(commandBus, rename.Handle)

	deleteDoc := commandhandlers.NewDeleteDocumentHandler(repo, sessions, logger)
	register(commandBus, deleteDoc.Handle)

	importDoc := commandhandlers.NewImportDocumentHandler(repo, publisher, sessions, codecs, metrics, logger)
	register(commandBus, importDoc.Handle)

	undo := commandhandlers.NewUndoHandler(repo, publisher, sessions, metrics, logger)
	register(commandBus, undo.Handle)

	viewport := commandhandlers.NewSaveViewportHandler(sessions, saver)
	register(commandBus, viewport.Handle)

	update := commandhandlers.NewUpdateNodeHandler(repo, publisher, sessions, metrics, logger)
	register(commandBus, update.Handle)

	deleteNodes := commandhandlers.NewDeleteNodesHandler(repo, publisher, sessions, metrics, logger)
	register(commandBus, deleteNodes.Handle)

	collapse := commandhandlers.NewToggleCollapseHandler(repo, publisher, sessions, metrics, logger)
	register(commandBus, collapse.Handle)

	move := commandhandlers.NewMoveNodesHandler(repo, publisher, sessions, metrics, logger)
	register(commandBus, move.Handle)

	clipboard := commandhandlers.NewClipboardHandler(repo, publisher, sessions, metrics, logger)
	register(commandBus, clipboard.HandleCopy)
	register(commandBus, clipboard.HandleCut)

	return commandBus
}

// QueryHandlerAdapter adapts typed query handlers to the bus interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

// Handle implements querybus.QueryHandler
func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

func registerQuery[Q querybus.Query, R any](queryBus *querybus.QueryBus, handle func(context.Context, Q) (R, error)) {
	var zero Q
	queryBus.Register(zero, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			typed, ok := query.(Q)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return handle(ctx, typed)
		},
	})
}

// ProvideQueryBus creates a query bus with all read handlers registered
func ProvideQueryBus(
	repo ports.DocumentRepository,
	sessions *services.SessionManager,
	codecs ports.CodecRegistry,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	get := queryhandlers.NewGetDocumentHandler(sessions, logger)
	registerQuery(queryBus, get.Handle)

	list := queryhandlers.NewListDocumentsHandler(repo, logger)
	registerQuery(queryBus, list.Handle)

	export := queryhandlers.NewExportDocumentHandler(sessions, codecs)
	registerQuery(queryBus, export.Handle)

	return queryBus
}

// ProvideCreateDocumentHandler creates the typed create handler used by
// the REST layer for its response body
func ProvideCreateDocumentHandler(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	sessions *services.SessionManager,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *commandhandlers.CreateDocumentHandler {
	return commandhandlers.NewCreateDocumentHandler(repo, publisher, sessions, metrics, logger)
}

// ProvideAddNodeHandler creates the typed insertion handler
func ProvideAddNodeHandler(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	sessions *services.SessionManager,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *commandhandlers.AddNodeHandler {
	return commandhandlers.NewAddNodeHandler(repo, publisher, sessions, metrics, logger)
}

// ProvideClipboardHandler creates the typed clipboard handler
func ProvideClipboardHandler(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	sessions *services.SessionManager,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *commandhandlers.ClipboardHandler {
	return commandhandlers.NewClipboardHandler(repo, publisher, sessions, metrics, logger)
}

// ProvideSelectionHandler creates the typed selection handler
func ProvideSelectionHandler(sessions *services.SessionManager) *commandhandlers.SelectionHandler {
	return commandhandlers.NewSelectionHandler(sessions)
}

// ProvideViewportGestureHandler creates the typed viewport gesture handler
func ProvideViewportGestureHandler(
	sessions *services.SessionManager,
	saver *services.ViewportSaver,
) *commandhandlers.ViewportGestureHandler {
	return commandhandlers.NewViewportGestureHandler(sessions, saver)
}

// ProvideDocumentRESTHandler creates the document REST handler
func ProvideDocumentRESTHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	create *commandhandlers.CreateDocumentHandler,
	gestures *commandhandlers.ViewportGestureHandler,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *resthandlers.DocumentHandler {
	return resthandlers.NewDocumentHandler(commandBus, queryBus, create, gestures, errorHandler, logger)
}

// ProvideNodeRESTHandler creates the node REST handler
func ProvideNodeRESTHandler(
	commandBus *bus.CommandBus,
	add *commandhandlers.AddNodeHandler,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *resthandlers.NodeHandler {
	return resthandlers.NewNodeHandler(commandBus, add, errorHandler, logger)
}

// ProvideClipboardRESTHandler creates the clipboard REST handler
func ProvideClipboardRESTHandler(
	commandBus *bus.CommandBus,
	clipboard *commandhandlers.ClipboardHandler,
	selection *commandhandlers.SelectionHandler,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *resthandlers.ClipboardHandler {
	return resthandlers.NewClipboardHandler(commandBus, clipboard, selection, errorHandler, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	documents *resthandlers.DocumentHandler,
	nodes *resthandlers.NodeHandler,
	clipboard *resthandlers.ClipboardHandler,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, documents, nodes, clipboard, tracer, logger)
}
