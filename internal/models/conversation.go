package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Conversation struct {
	ID        string    `firestore:"id" json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `firestore:"userId" json:"-" gorm:"size:128;not null;index"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message is immutable once written. IDs are uuid v7 so that, within one
// process, sorting by (createdAt, id) follows insertion order.
type Message struct {
	ID             string    `firestore:"id" json:"id" gorm:"primaryKey;size:36"`
	ConversationID string    `firestore:"conversationId" json:"conversationId" gorm:"size:36;not null;index:idx_message_convo_created,priority:1"`
	UserID         string    `firestore:"userId" json:"-" gorm:"size:128;not null;index"`
	Role           string    `firestore:"role" json:"role" gorm:"size:16;not null"`
	Content        string    `firestore:"content" json:"content" gorm:"type:text;not null"`
	CreatedAt      time.Time `firestore:"createdAt" json:"createdAt" gorm:"index:idx_message_convo_created,priority:2"`
}

func (Message) TableName() string {
	return "messages"
}
