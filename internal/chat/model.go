package chat

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Message roles. The set is closed: system prompts are built per request and
// never persisted.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Citation is a web source attached to an assistant message.
type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Message is a single transcript entry. Messages are immutable once appended;
// their insertion order is the conversation order and is replayed verbatim as
// model memory on every subsequent request.
type Message struct {
	gorm.Model
	ConversationID uint                          `gorm:"index;not null" json:"-"`
	Role           string                        `gorm:"size:16;not null" json:"role"`
	Content        string                        `gorm:"type:text;not null" json:"content"`
	Sources        datatypes.JSONSlice[Citation] `gorm:"type:text" json:"sources,omitempty"`
}

// TableName defines the table name for the Message model.
func (Message) TableName() string {
	return "messages"
}

// Conversation is a chat transcript owned by exactly one user.
type Conversation struct {
	gorm.Model
	UserID   uint      `gorm:"index;not null" json:"-"`
	Title    string    `gorm:"size:255;not null" json:"title"`
	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// TableName defines the table name for the Conversation model.
func (Conversation) TableName() string {
	return "conversations"
}
