package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/models"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/logger"
)

const (
	// HistoryWindow is how many stored messages the agent sees per turn.
	HistoryWindow = 20

	MaxMessageLength = 2000

	defaultHistoryLimit = 50
	maxHistoryLimit     = 200

	defaultReply = "I'm sorry, I couldn't process that request."
)

type conversationStore interface {
	FindConversation(ctx context.Context, uid, conversationID string) (*models.Conversation, error)
	CreateConversation(ctx context.Context, uid string) (*models.Conversation, error)
	TouchConversation(ctx context.Context, uid, conversationID string) error
	AppendMessage(ctx context.Context, uid, conversationID, role, content string) (*models.Message, error)
	ListRecentMessages(ctx context.Context, uid, conversationID string, limit int) ([]models.Message, error)
}

type agentRunner interface {
	Run(ctx context.Context, turns []dto.Turn, uid string) (dto.AgentResult, error)
}

type chatService struct {
	store conversationStore
	agent agentRunner
}

func NewChatService(store conversationStore, agent agentRunner) *chatService {
	return &chatService{
		store: store,
		agent: agent,
	}
}

// Chat runs one turn: resolve the conversation, load the window, persist the
// user message, run the agent, persist its reply. Nothing is written when
// the conversation can't be resolved, and no assistant message is written
// when the agent fails.
func (s *chatService) Chat(ctx context.Context, uid string, req dto.ChatRequest) (dto.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return dto.ChatResponse{}, errs.NewValidationError("Message is required")
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return dto.ChatResponse{}, errs.NewValidationError("Message must be 2000 characters or less")
	}

	conv, err := s.resolveConversation(ctx, uid, strings.TrimSpace(req.ConversationID))
	if err != nil {
		return dto.ChatResponse{}, err
	}
	log, ctx := logger.With(ctx, "conversation_id", conv.ID)

	recent, err := s.store.ListRecentMessages(ctx, uid, conv.ID, HistoryWindow)
	if err != nil {
		log.Error("failed to load conversation window", "error", err)
		return dto.ChatResponse{}, err
	}
	turns := make([]dto.Turn, 0, len(recent)+1)
	for i := len(recent) - 1; i >= 0; i-- {
		turns = append(turns, dto.Turn{Role: recent[i].Role, Content: recent[i].Content})
	}
	turns = append(turns, dto.Turn{Role: models.RoleUser, Content: message})

	if _, err := s.store.AppendMessage(ctx, uid, conv.ID, models.RoleUser, message); err != nil {
		log.Error("failed to store user message", "error", err)
		return dto.ChatResponse{}, err
	}

	result, err := s.runAgent(ctx, turns, uid)
	if err != nil {
		log.Error("agent failed", "error", err)
		var ext *errs.ExternalServiceError
		if errors.As(err, &ext) && ext.Transient {
			return dto.ChatResponse{}, ext
		}
		return dto.ChatResponse{}, errs.NewExternalServiceError("agent", "agent run failed", true, err)
	}

	reply := strings.TrimSpace(result.Text)
	if reply == "" {
		reply = defaultReply
	}
	if _, err := s.store.AppendMessage(ctx, uid, conv.ID, models.RoleAssistant, reply); err != nil {
		log.Error("failed to store assistant message", "error", err)
		return dto.ChatResponse{}, err
	}
	if err := s.store.TouchConversation(ctx, uid, conv.ID); err != nil {
		log.Warn("failed to touch conversation", "error", err)
	}

	toolCalls := result.ToolCalls
	if toolCalls == nil {
		toolCalls = []dto.ToolCallInfo{}
	}
	log.Info("chat turn completed", "window", len(recent), "tool_calls", len(toolCalls))

	return dto.ChatResponse{
		ConversationID: conv.ID,
		Response:       reply,
		ToolCalls:      toolCalls,
	}, nil
}

// History returns up to limit of the newest messages, oldest first.
func (s *chatService) History(ctx context.Context, uid, conversationID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	conversationID, err := parseConversationID(conversationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.FindConversation(ctx, uid, conversationID); err != nil {
		return nil, err
	}
	recent, err := s.store.ListRecentMessages(ctx, uid, conversationID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]models.Message, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		out = append(out, recent[i])
	}
	return out, nil
}

func (s *chatService) resolveConversation(ctx context.Context, uid, conversationID string) (*models.Conversation, error) {
	log := logger.FromContext(ctx)
	if conversationID != "" {
		id, err := parseConversationID(conversationID)
		if err != nil {
			return nil, err
		}
		conv, err := s.store.FindConversation(ctx, uid, id)
		if err != nil {
			log.Info("conversation lookup failed", "conversation_id", conversationID, "error", err)
			return nil, err
		}
		return conv, nil
	}

	conv, err := s.store.CreateConversation(ctx, uid)
	if err != nil {
		log.Error("failed to create conversation", "error", err)
		return nil, err
	}
	log.Info("conversation created", "conversation_id", conv.ID)
	return conv, nil
}

// parseConversationID only lets canonical uuids reach the store, where the id
// becomes a document path segment.
func parseConversationID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", errs.NewValidationError("Invalid conversation ID format")
	}
	return parsed.String(), nil
}

func (s *chatService) runAgent(ctx context.Context, turns []dto.Turn, uid string) (result dto.AgentResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("agent panicked: %v", p)
		}
	}()
	return s.agent.Run(ctx, turns, uid)
}
