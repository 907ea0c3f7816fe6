package chat

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store defines persistence operations for conversations. Every operation is
// scoped by owner: a conversation belonging to another user is
// indistinguishable from one that does not exist.
type Store interface {
	Create(ctx context.Context, userID uint, title string) (*Conversation, error)
	FindOwned(ctx context.Context, userID, id uint) (*Conversation, error)
	ListOwned(ctx context.Context, userID uint) ([]Conversation, error)
	AppendPair(ctx context.Context, conversation *Conversation, userMessage, assistantMessage Message) error
	DeleteOwned(ctx context.Context, userID, id uint) (bool, error)
}

// GormStore persists conversations using a Gorm database connection.
type GormStore struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewStore constructs a Gorm-backed conversation store.
func NewStore(conn *gorm.DB, logger *logrus.Logger) (*GormStore, error) {
	if conn == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &GormStore{db: conn, logger: logger}, nil
}

var _ Store = (*GormStore)(nil)

// Create stores a new empty conversation for the owner.
func (s *GormStore) Create(ctx context.Context, userID uint, title string) (*Conversation, error) {
	if userID == 0 {
		return nil, eris.New("owner id is required")
	}

	conversation := &Conversation{
		UserID: userID,
		Title:  strings.TrimSpace(title),
	}

	if err := s.db.WithContext(ctx).Create(conversation).Error; err != nil {
		s.logError(logrus.Fields{"user_id": userID}, err, "creating conversation")
		return nil, eris.Wrap(err, "creating conversation")
	}

	return conversation, nil
}

// FindOwned returns the conversation with its messages, or nil when it is
// absent or owned by someone else.
func (s *GormStore) FindOwned(ctx context.Context, userID, id uint) (*Conversation, error) {
	if userID == 0 || id == 0 {
		return nil, nil
	}

	var conversation Conversation
	err := s.db.WithContext(ctx).
		Preload("Messages", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("messages.id ASC")
		}).
		First(&conversation, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logError(logrus.Fields{"conversation_id": id}, err, "fetching conversation")
		return nil, eris.Wrapf(err, "fetching conversation %d", id)
	}

	return &conversation, nil
}

// ListOwned returns the caller's conversations ordered by most recent update.
func (s *GormStore) ListOwned(ctx context.Context, userID uint) ([]Conversation, error) {
	if userID == 0 {
		return nil, eris.New("owner id is required")
	}

	var conversations []Conversation
	err := s.db.WithContext(ctx).
		Preload("Messages", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("messages.id ASC")
		}).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		s.logError(logrus.Fields{"user_id": userID}, err, "listing conversations")
		return nil, eris.Wrap(err, "listing conversations")
	}

	return conversations, nil
}

// AppendPair appends the user and assistant messages to the conversation in a
// single transaction and bumps its modification timestamp. Prior messages are
// never edited or reordered.
func (s *GormStore) AppendPair(ctx context.Context, conversation *Conversation, userMessage, assistantMessage Message) error {
	if conversation == nil || conversation.ID == 0 {
		return eris.New("conversation must be persisted before appending")
	}
	if userMessage.Role != RoleUser || assistantMessage.Role != RoleAssistant {
		return eris.New("append expects a user message followed by an assistant message")
	}

	userMessage.ConversationID = conversation.ID
	assistantMessage.ConversationID = conversation.ID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&userMessage).Error; err != nil {
			return eris.Wrap(err, "appending user message")
		}
		if err := tx.Create(&assistantMessage).Error; err != nil {
			return eris.Wrap(err, "appending assistant message")
		}
		if err := tx.Model(conversation).Update("updated_at", tx.NowFunc()).Error; err != nil {
			return eris.Wrap(err, "touching conversation")
		}
		return nil
	})
	if err != nil {
		s.logError(logrus.Fields{"conversation_id": conversation.ID}, err, "appending message pair")
		return err
	}

	conversation.Messages = append(conversation.Messages, userMessage, assistantMessage)
	return nil
}

// DeleteOwned removes the conversation when present and owned by the caller,
// reporting whether anything was removed.
func (s *GormStore) DeleteOwned(ctx context.Context, userID, id uint) (bool, error) {
	if userID == 0 || id == 0 {
		return false, nil
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Conversation{})
	if result.Error != nil {
		s.logError(logrus.Fields{"conversation_id": id}, result.Error, "deleting conversation")
		return false, eris.Wrapf(result.Error, "deleting conversation %d", id)
	}

	return result.RowsAffected > 0, nil
}

func (s *GormStore) logError(fields logrus.Fields, err error, message string) {
	if s.logger == nil {
		return
	}

	entry := s.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
