package service

import (
	"context"
	"log"

	"ideagauge/internal/cache"
	"ideagauge/internal/model"
	"ideagauge/internal/question"
	"ideagauge/internal/repository"
	"ideagauge/internal/schema"
)

// ConversationService owns conversation lifecycle and persistence around the
// turn orchestrator. The orchestrator itself never touches storage; this
// layer loads the schema snapshot, runs the turn, and persists the result.
type ConversationService struct {
	convRepo    repository.ConversationRepo
	msgRepo     repository.MessageRepo
	schemaCache cache.SchemaCache
	turns       *TurnService
}

// NewConversationService creates a new conversation service.
func NewConversationService(
	convRepo repository.ConversationRepo,
	msgRepo repository.MessageRepo,
	schemaCache cache.SchemaCache,
	turns *TurnService,
) *ConversationService {
	return &ConversationService{
		convRepo:    convRepo,
		msgRepo:     msgRepo,
		schemaCache: schemaCache,
		turns:       turns,
	}
}

// historyTail is how many transcript messages ride along in response
// generation prompts.
const historyTail = 6

// Start creates a conversation with an empty schema and seeds the transcript
// with the opening question. The opener is deterministic; no model call.
func (s *ConversationService) Start(ctx context.Context, clientID, language string) (*model.Conversation, *model.Message, error) {
	conv := &model.Conversation{
		ClientID: clientID,
		Language: language,
		Schema:   schema.NewSchema(),
	}
	if err := s.convRepo.Create(ctx, conv); err != nil {
		return nil, nil, err
	}

	opener := question.Next(conv.Schema)
	greeting := &model.Message{
		ConversationID: conv.ID,
		Role:           model.RoleAssistant,
		Content:        "Tell me about your project idea and I'll help you figure out whether it's worth building. " + opener.Text,
		Choices:        question.ChoicesFor(opener),
	}
	if err := s.msgRepo.Append(ctx, greeting); err != nil {
		return nil, nil, err
	}

	if err := s.schemaCache.Set(ctx, conv.ID, conv.Schema); err != nil {
		log.Printf("[Conversation] Schema cache set failed: %v", err)
	}
	return conv, greeting, nil
}

// ProcessMessage runs one synchronous turn. questionID optionally names the
// catalog question the message answers.
func (s *ConversationService) ProcessMessage(ctx context.Context, conversationID, clientID, text, questionID string) (*model.TurnResult, error) {
	return s.process(ctx, conversationID, clientID, text, questionID, nil)
}

// ProcessMessageStream runs one turn, streaming content chunks through
// onChunk before the result (choices, schema) is returned.
func (s *ConversationService) ProcessMessageStream(ctx context.Context, conversationID, clientID, text, questionID string, onChunk func(string)) (*model.TurnResult, error) {
	return s.process(ctx, conversationID, clientID, text, questionID, onChunk)
}

func (s *ConversationService) process(ctx context.Context, conversationID, clientID, text, questionID string, onChunk func(string)) (*model.TurnResult, error) {
	conv, err := s.authorized(ctx, conversationID, clientID)
	if err != nil {
		return nil, err
	}

	current := conv.Schema
	if cached, err := s.schemaCache.Get(ctx, conversationID); err != nil {
		// A corrupt entry would fail every turn; evict so the next read
		// falls through to the store.
		log.Printf("[Conversation] Schema cache read failed, evicting: %v", err)
		if derr := s.schemaCache.Delete(ctx, conversationID); derr != nil {
			log.Printf("[Conversation] Schema cache evict failed: %v", derr)
		}
	} else if cached != nil {
		current = *cached
	}

	// An unknown id reads as free conversation rather than an error; the
	// catalog may have changed under an old client.
	var asked *model.Question
	if questionID != "" {
		asked = question.ByID(questionID)
	}

	history, err := s.msgRepo.GetRecent(ctx, conversationID, historyTail)
	if err != nil {
		log.Printf("[Conversation] History load failed, continuing without: %v", err)
		history = nil
	}
	tail := make([]model.Message, 0, len(history))
	for _, m := range history {
		tail = append(tail, *m)
	}

	userMsg := &model.Message{
		ConversationID: conversationID,
		Role:           model.RoleUser,
		Content:        text,
	}
	if err := s.msgRepo.Append(ctx, userMsg); err != nil {
		return nil, err
	}

	result, turnErr := s.turns.HandleTurn(ctx, current, text, conv.Language, asked, tail, onChunk)

	// The schema update is committed even when generation failed: the
	// extracted facts are real information the user already gave, and the
	// caller may retry generation without redoing extraction.
	if result != nil {
		if err := s.convRepo.UpdateSchema(ctx, conversationID, result.Schema); err != nil {
			return nil, err
		}
		if err := s.schemaCache.Set(ctx, conversationID, result.Schema); err != nil {
			log.Printf("[Conversation] Schema cache set failed: %v", err)
		}
	}
	if turnErr != nil {
		return result, turnErr
	}

	assistantMsg := &model.Message{
		ConversationID: conversationID,
		Role:           model.RoleAssistant,
		Content:        result.AssistantMessage,
		Choices:        result.Choices,
	}
	if err := s.msgRepo.Append(ctx, assistantMsg); err != nil {
		return nil, err
	}

	return result, nil
}

// List returns all conversations owned by clientID.
func (s *ConversationService) List(ctx context.Context, clientID string) ([]*model.Conversation, error) {
	return s.convRepo.ListByClient(ctx, clientID)
}

// Get returns a conversation owned by clientID.
func (s *ConversationService) Get(ctx context.Context, conversationID, clientID string) (*model.Conversation, error) {
	return s.authorized(ctx, conversationID, clientID)
}

// Messages returns the last n transcript messages, oldest first.
func (s *ConversationService) Messages(ctx context.Context, conversationID, clientID string, n int) ([]*model.Message, error) {
	if _, err := s.authorized(ctx, conversationID, clientID); err != nil {
		return nil, err
	}
	return s.msgRepo.GetRecent(ctx, conversationID, n)
}

// Progress reports per-tier completion for the conversation's schema.
func (s *ConversationService) Progress(ctx context.Context, conversationID, clientID string) (*model.Progress, error) {
	conv, err := s.authorized(ctx, conversationID, clientID)
	if err != nil {
		return nil, err
	}
	p := question.ProgressFor(conv.Schema)
	return &p, nil
}

// authorized loads a conversation and checks ownership. A foreign
// conversation reads as not found rather than forbidden.
func (s *ConversationService) authorized(ctx context.Context, conversationID, clientID string) (*model.Conversation, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.ClientID != clientID {
		return nil, repository.ErrNotFound
	}
	return conv, nil
}
