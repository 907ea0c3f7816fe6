package generation

import (
	"context"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/abhi01978/NechGen/internal/chat"
	"github.com/abhi01978/NechGen/internal/llm"
	"github.com/abhi01978/NechGen/internal/search"
)

// Result is the outcome of one generate call.
type Result struct {
	Content string
	ChatID  uint
	Sources []search.Source
}

// Service composes the generation pipeline: resolve conversation, acquire
// search context, draft, refine with provider fallback, truncate, persist.
type Service struct {
	store     chat.Store
	searcher  search.Searcher
	drafter   llm.Drafter
	refiner   llm.Refiner
	logger    *logrus.Logger
	sentryHub *sentry.Hub
	now       func() time.Time
}

// ServiceOptions wires the pipeline dependencies. Refiner may be nil when no
// refinement credentials are configured; drafts are then served with the
// fallback note.
type ServiceOptions struct {
	Store     chat.Store
	Searcher  search.Searcher
	Drafter   llm.Drafter
	Refiner   llm.Refiner
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
	Now       func() time.Time
}

const (
	refineCeilingPercent = 80
	charsPerToken        = 4
	refineFallbackNote   = "\n\n_Note: refinement unavailable, showing draft output._"
	truncationMarker     = "… [truncated]"
)

// NewService constructs the generation orchestrator.
func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Store == nil {
		return nil, eris.New("conversation store is required")
	}
	if opts.Searcher == nil {
		return nil, eris.New("searcher is required")
	}
	if opts.Drafter == nil {
		return nil, eris.New("drafter is required")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		store:     opts.Store,
		searcher:  opts.Searcher,
		drafter:   opts.Drafter,
		refiner:   opts.Refiner,
		logger:    opts.Logger,
		sentryHub: opts.SentryHub,
		now:       now,
	}, nil
}

// Generate runs the pipeline for an authenticated owner. chatID of zero means
// a new conversation; an unknown or foreign chatID silently starts a new one.
// Persistence is the final step, so a failure anywhere earlier leaves no
// partial writes behind.
func (s *Service) Generate(ctx context.Context, userID uint, prompt string, chatID uint) (*Result, error) {
	trimmedPrompt := strings.TrimSpace(prompt)
	if trimmedPrompt == "" {
		return nil, eris.New("prompt is required")
	}
	if userID == 0 {
		return nil, eris.New("owner id is required")
	}

	directives := ParseDirectives(trimmedPrompt)

	var conversation *chat.Conversation
	if chatID != 0 {
		existing, err := s.store.FindOwned(ctx, userID, chatID)
		if err != nil {
			s.recordError(logrus.Fields{"chat_id": chatID}, err, "resolving conversation")
			return nil, eris.Wrap(err, "resolving conversation")
		}
		conversation = existing
	}

	searchData := s.searcher.Search(ctx, trimmedPrompt)

	var history []llm.Turn
	if conversation != nil {
		history = make([]llm.Turn, 0, len(conversation.Messages))
		for _, message := range conversation.Messages {
			history = append(history, llm.Turn{Role: message.Role, Content: message.Content})
		}
	}

	draft, err := s.drafter.Draft(ctx, llm.DraftRequest{
		SystemPrompt: buildDraftSystemPrompt(s.now(), searchData.Context, directives),
		History:      history,
		UserMessage:  trimmedPrompt,
		MaxTokens:    directives.Tier.MaxTokens,
	})
	if err != nil {
		s.recordError(logrus.Fields{"tier": directives.Tier.Name}, err, "draft stage failed")
		return nil, eris.Wrap(err, "draft stage")
	}

	content := s.refine(ctx, draft, directives)
	content = truncateToTier(content, directives.Tier)

	if conversation == nil {
		created, err := s.store.Create(ctx, userID, TitleFor(trimmedPrompt, directives))
		if err != nil {
			s.recordError(logrus.Fields{"user_id": userID}, err, "creating conversation")
			return nil, eris.Wrap(err, "creating conversation")
		}
		conversation = created
	}

	citations := make(datatypes.JSONSlice[chat.Citation], 0, len(searchData.Sources))
	for _, source := range searchData.Sources {
		citations = append(citations, chat.Citation{Title: source.Title, URL: source.URL})
	}

	err = s.store.AppendPair(ctx, conversation,
		chat.Message{Role: chat.RoleUser, Content: trimmedPrompt},
		chat.Message{Role: chat.RoleAssistant, Content: content, Sources: citations},
	)
	if err != nil {
		s.recordError(logrus.Fields{"chat_id": conversation.ID}, err, "persisting message pair")
		return nil, eris.Wrap(err, "persisting message pair")
	}

	return &Result{
		Content: content,
		ChatID:  conversation.ID,
		Sources: searchData.Sources,
	}, nil
}

// refine runs the polishing pass. Refinement never fails the request: when
// every provider fails, or none is configured, the draft is served with a
// disclosure note appended.
func (s *Service) refine(ctx context.Context, draft string, directives Directives) string {
	if s.refiner == nil {
		return draft + refineFallbackNote
	}

	ceiling := directives.Tier.MaxTokens * refineCeilingPercent / 100
	refined, provider, err := s.refiner.Refine(ctx, llm.RefineRequest{
		SystemPrompt: buildRefineSystemPrompt(directives, ceiling),
		Draft:        draft,
		MaxTokens:    ceiling,
	})
	if err != nil {
		s.recordError(logrus.Fields{"tier": directives.Tier.Name}, err, "refinement fell back to draft")
		return draft + refineFallbackNote
	}

	if s.logger != nil {
		s.logger.WithField("provider", provider).Debug("refinement completed")
	}

	return refined
}

// truncateToTier applies the character-per-token heuristic so a provider that
// overshoots its ceiling cannot blow up the stored transcript.
func truncateToTier(content string, tier Tier) string {
	maxChars := int(tier.MaxTokens) * charsPerToken
	runes := []rune(content)
	if len(runes) <= maxChars {
		return content
	}

	return string(runes[:maxChars]) + truncationMarker
}

func (s *Service) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}
