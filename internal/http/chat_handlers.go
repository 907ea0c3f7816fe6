package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"github.com/abhi01978/NechGen/internal/chat"
)

type citationPayload struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type messagePayload struct {
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Sources   []citationPayload `json:"sources,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

type conversationPayload struct {
	ID        uint             `json:"id"`
	Title     string           `json:"title"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Messages  []messagePayload `json:"messages"`
}

type listChatsInput struct {
	Authorization string `header:"Authorization"`
}

type listChatsOutput struct {
	Body []conversationPayload
}

type chatByIDInput struct {
	Authorization string `header:"Authorization"`
	ID            uint   `path:"id"`
}

type chatOutput struct {
	Body conversationPayload
}

type deleteChatOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (s *Server) registerChatRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "chats-list",
		Method:      stdhttp.MethodGet,
		Path:        "/api/chats",
		Summary:     "List the caller's conversations by recency",
	}, s.listChatsHandler)

	huma.Register(s.api, huma.Operation{
		OperationID: "chats-get",
		Method:      stdhttp.MethodGet,
		Path:        "/api/chats/{id}",
		Summary:     "Fetch one conversation with its transcript",
	}, s.getChatHandler)

	huma.Register(s.api, huma.Operation{
		OperationID: "chats-delete",
		Method:      stdhttp.MethodDelete,
		Path:        "/api/chats/{id}",
		Summary:     "Delete one conversation",
	}, s.deleteChatHandler)
}

func (s *Server) listChatsHandler(ctx context.Context, input *listChatsInput) (*listChatsOutput, error) {
	identity, err := s.identify(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	conversations, err := s.chats.ListOwned(ctx, identity.UserID)
	if err != nil {
		s.recordError(ctx, err, "listing chats failed", logrus.Fields{"user_id": identity.UserID})
		return nil, huma.Error500InternalServerError("Error fetching chat history")
	}

	payload := make([]conversationPayload, 0, len(conversations))
	for idx := range conversations {
		payload = append(payload, conversationToPayload(&conversations[idx]))
	}

	return &listChatsOutput{Body: payload}, nil
}

func (s *Server) getChatHandler(ctx context.Context, input *chatByIDInput) (*chatOutput, error) {
	identity, err := s.identify(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	conversation, err := s.chats.FindOwned(ctx, identity.UserID, input.ID)
	if err != nil {
		s.recordError(ctx, err, "fetching chat failed", logrus.Fields{"chat_id": input.ID})
		return nil, huma.Error500InternalServerError("Error fetching chat history")
	}
	if conversation == nil {
		return nil, huma.Error404NotFound("Chat not found")
	}

	return &chatOutput{Body: conversationToPayload(conversation)}, nil
}

func (s *Server) deleteChatHandler(ctx context.Context, input *chatByIDInput) (*deleteChatOutput, error) {
	identity, err := s.identify(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	removed, err := s.chats.DeleteOwned(ctx, identity.UserID, input.ID)
	if err != nil {
		s.recordError(ctx, err, "deleting chat failed", logrus.Fields{"chat_id": input.ID})
		return nil, huma.Error500InternalServerError("Error deleting chat")
	}
	if !removed {
		return nil, huma.Error404NotFound("Chat not found")
	}

	out := &deleteChatOutput{}
	out.Body.Message = "Chat deleted"
	return out, nil
}

func conversationToPayload(conversation *chat.Conversation) conversationPayload {
	messages := make([]messagePayload, 0, len(conversation.Messages))
	for _, message := range conversation.Messages {
		payload := messagePayload{
			Role:      message.Role,
			Content:   message.Content,
			Timestamp: message.CreatedAt,
		}
		for _, source := range message.Sources {
			payload.Sources = append(payload.Sources, citationPayload{Title: source.Title, URL: source.URL})
		}
		messages = append(messages, payload)
	}

	return conversationPayload{
		ID:        conversation.ID,
		Title:     conversation.Title,
		UpdatedAt: conversation.UpdatedAt,
		Messages:  messages,
	}
}
