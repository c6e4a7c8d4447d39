package bootstrap

import (
	"context"
	"log/slog"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"
	"gorm.io/gorm"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/config"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/models"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/store"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/store/sqlstore"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/logger"
)

type TaskStore interface {
	Create(ctx context.Context, uid string, task *models.Task) error
	List(ctx context.Context, uid string, filter dto.TaskFilter) ([]*models.Task, error)
	Get(ctx context.Context, uid, taskID string) (*models.Task, error)
	Complete(ctx context.Context, uid, taskID string) (*models.Task, error)
	Update(ctx context.Context, uid, taskID string, patch models.TaskPatch) (*models.Task, error)
	Toggle(ctx context.Context, uid, taskID string) (*models.Task, error)
	Delete(ctx context.Context, uid, taskID string) (*models.Task, error)
}

type ConversationStore interface {
	FindConversation(ctx context.Context, uid, conversationID string) (*models.Conversation, error)
	CreateConversation(ctx context.Context, uid string) (*models.Conversation, error)
	TouchConversation(ctx context.Context, uid, conversationID string) error
	AppendMessage(ctx context.Context, uid, conversationID, role, content string) (*models.Message, error)
	ListRecentMessages(ctx context.Context, uid, conversationID string, limit int) ([]models.Message, error)
}

type ModelClient interface {
	GenerateContent(ctx context.Context, req dto.ModelRequest) (dto.ModelResponse, error)
}

type Bootstrap struct {
	Log           *slog.Logger
	Firestore     *firestore.Client
	DB            *gorm.DB
	Firebase      *auth.Client
	Tasks         TaskStore
	Conversations ConversationStore
	// Model is nil when no model credential is configured.
	Model ModelClient

	closers []func() error
}

// Run wires everything the HTTP API needs.
func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	if err = bs.initStores(applicationCtx, cfg); err != nil {
		return bs, err
	}
	bs.Firebase, err = InitFirebase(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	if err = bs.initModel(applicationCtx, cfg); err != nil {
		return bs, err
	}

	return bs, nil
}

// RunToolServer wires the task tool process. Stdout carries the MCP
// protocol, so logs go to stderr.
func RunToolServer(cfg *config.Config) (*Bootstrap, error) {
	bs := new(Bootstrap)
	bs.Log = logger.New(cfg.LogLevel, logger.NewStderrHandler)
	if err := bs.initStores(context.Background(), cfg); err != nil {
		return bs, err
	}
	return bs, nil
}

func (bs *Bootstrap) Close() {
	for i := len(bs.closers) - 1; i >= 0; i-- {
		if err := bs.closers[i](); err != nil {
			bs.Log.Error("shutdown close failed", "error", err)
		}
	}
}

func (bs *Bootstrap) initStores(ctx context.Context, cfg *config.Config) error {
	switch cfg.StoreDriver {
	case config.StoreSQLite, config.StorePostgres:
		db, err := sqlstore.Open(cfg.StoreDriver, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		bs.DB = db
		bs.closers = append(bs.closers, func() error { return sqlstore.Close(db) })
		bs.Tasks = sqlstore.NewTaskStore(db)
		bs.Conversations = sqlstore.NewConversationStore(db)
	default:
		client, err := InitFirestore(ctx, cfg.ProjectID)
		if err != nil {
			return err
		}
		bs.Firestore = client
		bs.closers = append(bs.closers, client.Close)
		bs.Tasks = store.NewTaskStore(client)
		bs.Conversations = store.NewConversationStore(client)
	}
	bs.Log.Info("stores ready", "driver", cfg.StoreDriver)
	return nil
}

func InitFirestore(ctx context.Context, projectID string) (*firestore.Client, error) {
	return firestore.NewClient(ctx, projectID)
}
