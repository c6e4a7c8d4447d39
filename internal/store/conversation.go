package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/models"
)

const msgConversationNotFound = "Conversation not found"

type conversationStore struct {
	client   *firestore.Client
	clockNow func() time.Time
}

func NewConversationStore(client *firestore.Client) *conversationStore {
	return &conversationStore{client: client, clockNow: time.Now}
}

func (s *conversationStore) conversations(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("conversations")
}

func (s *conversationStore) messagesCollection(uid, conversationID string) *firestore.CollectionRef {
	return s.conversations(uid).Doc(conversationID).Collection("messages")
}

// FindConversation returns NotFound both for unknown ids and for ids owned by
// another user; the two cases are indistinguishable by construction.
func (s *conversationStore) FindConversation(ctx context.Context, uid, conversationID string) (*models.Conversation, error) {
	if conversationID == "" {
		return nil, errs.NewNotFoundError(msgConversationNotFound)
	}
	doc, err := s.conversations(uid).Doc(conversationID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError(msgConversationNotFound)
		}
		return nil, errs.NewDatabaseError("read", "failed to get conversation", err)
	}
	var conv models.Conversation
	if err := doc.DataTo(&conv); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse conversation data", err)
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
	if _, err := s.conversations(uid).Doc(conv.ID).Create(ctx, conv); err != nil {
		return nil, errs.NewDatabaseError("create", "failed to create conversation", err)
	}
	return conv, nil
}

func (s *conversationStore) TouchConversation(ctx context.Context, uid, conversationID string) error {
	_, err := s.conversations(uid).Doc(conversationID).Update(ctx, []firestore.Update{
		{Path: "updatedAt", Value: s.clockNow().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError(msgConversationNotFound)
		}
		return errs.NewDatabaseError("update", "failed to touch conversation", err)
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
	if _, err := s.messagesCollection(uid, conversationID).Doc(msg.ID).Create(ctx, msg); err != nil {
		return nil, errs.NewDatabaseError("create", "failed to save message", err)
	}
	return msg, nil
}

// ListRecentMessages returns up to limit messages, newest first.
func (s *conversationStore) ListRecentMessages(ctx context.Context, uid, conversationID string, limit int) ([]models.Message, error) {
	query := s.messagesCollection(uid, conversationID).Query.
		OrderBy("createdAt", firestore.Desc).
		OrderBy(firestore.DocumentID, firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []models.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list messages", err)
		}
		var msg models.Message
		if err := doc.DataTo(&msg); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse message data", err)
		}
		out = append(out, msg)
	}
	return out, nil
}
