package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/models"
)

const msgConversationNotFound = "Conversation not found"

type conversationStore struct {
	db       *gorm.DB
	clockNow func() time.Time
}

func NewConversationStore(db *gorm.DB) *conversationStore {
	return &conversationStore{db: db, clockNow: time.Now}
}

func (s *conversationStore) FindConversation(ctx context.Context, uid, conversationID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", conversationID, uid).
		Take(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError(msgConversationNotFound)
		}
		return nil, errs.NewDatabaseError("read", "failed to get conversation", err)
	}
	return &conv, nil
}

func (s *conversationStore) CreateConversation(ctx context.Context, uid string) (*models.Conversation, error) {
	now := s.clockNow().UTC()
	conv := &models.Conversation{
		ID:        uuid.NewString(),
		UserID:    uid,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(conv).Error; err != nil {
		return nil, errs.NewDatabaseError("create", "failed to create conversation", err)
	}
	return conv, nil
}

func (s *conversationStore) TouchConversation(ctx context.Context, uid, conversationID string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ? AND user_id = ?", conversationID, uid).
		Update("updated_at", s.clockNow().UTC())
	if res.Error != nil {
		return errs.NewDatabaseError("update", "failed to touch conversation", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFoundError(msgConversationNotFound)
	}
	return nil
}

func (s *conversationStore) AppendMessage(ctx context.Context, uid, conversationID, role, content string) (*models.Message, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errs.NewDatabaseError("create", "failed to allocate message id", err)
	}
	msg := &models.Message{
		ID:             id.String(),
		ConversationID: conversationID,
		UserID:         uid,
		Role:           role,
		Content:        content,
		CreatedAt:      s.clockNow().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, errs.NewDatabaseError("create", "failed to save message", err)
	}
	return msg, nil
}

// ListRecentMessages returns up to limit messages, newest first. The id
// column breaks createdAt ties in insertion order.
func (s *conversationStore) ListRecentMessages(ctx context.Context, uid, conversationID string, limit int) ([]models.Message, error) {
	query := s.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, uid).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var out []models.Message
	if err := query.Find(&out).Error; err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list messages", err)
	}
	return out, nil
}
