package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ideagauge/internal/model"
	"ideagauge/internal/repository"
	"ideagauge/internal/schema"
)

type memConvRepo struct {
	convs  map[string]*model.Conversation
	nextID int
}

func newMemConvRepo() *memConvRepo {
	return &memConvRepo{convs: map[string]*model.Conversation{}}
}

func (r *memConvRepo) Create(ctx context.Context, conv *model.Conversation) error {
	r.nextID++
	conv.ID = fmt.Sprintf("conv-%d", r.nextID)
	cp := *conv
	r.convs[conv.ID] = &cp
	return nil
}

func (r *memConvRepo) GetByID(ctx context.Context, id string) (*model.Conversation, error) {
	conv, ok := r.convs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *conv
	return &cp, nil
}

func (r *memConvRepo) UpdateSchema(ctx context.Context, id string, s model.Schema) error {
	conv, ok := r.convs[id]
	if !ok {
		return repository.ErrNotFound
	}
	conv.Schema = s
	return nil
}

func (r *memConvRepo) ListByClient(ctx context.Context, clientID string) ([]*model.Conversation, error) {
	var out []*model.Conversation
	for _, c := range r.convs {
		if c.ClientID == clientID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memMsgRepo struct {
	msgs   []*model.Message
	nextID int
}

func (r *memMsgRepo) Append(ctx context.Context, msg *model.Message) error {
	r.nextID++
	msg.ID = fmt.Sprintf("msg-%d", r.nextID)
	cp := *msg
	r.msgs = append(r.msgs, &cp)
	return nil
}

func (r *memMsgRepo) GetRecent(ctx context.Context, conversationID string, n int) ([]*model.Message, error) {
	var all []*model.Message
	for _, m := range r.msgs {
		if m.ConversationID == conversationID {
			all = append(all, m)
		}
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

type memSchemaCache struct {
	store   map[string]model.Schema
	sets    int
	getErr  error
	deletes int
}

func newMemSchemaCache() *memSchemaCache {
	return &memSchemaCache{store: map[string]model.Schema{}}
}

func (c *memSchemaCache) Set(ctx context.Context, conversationID string, s model.Schema) error {
	c.store[conversationID] = s
	c.sets++
	return nil
}

func (c *memSchemaCache) Get(ctx context.Context, conversationID string) (*model.Schema, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	s, ok := c.store[conversationID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (c *memSchemaCache) Delete(ctx context.Context, conversationID string) error {
	delete(c.store, conversationID)
	c.deletes++
	return nil
}

func newTestConversationService(ext Extractor, resp Responder) (*ConversationService, *memConvRepo, *memMsgRepo, *memSchemaCache) {
	convRepo := newMemConvRepo()
	msgRepo := &memMsgRepo{}
	schemaCache := newMemSchemaCache()
	svc := NewConversationService(convRepo, msgRepo, schemaCache, NewTurnService(ext, resp))
	return svc, convRepo, msgRepo, schemaCache
}

func TestStartSeedsGreetingAndSchema(t *testing.T) {
	svc, convRepo, msgRepo, schemaCache := newTestConversationService(&fakeExtractor{}, &fakeResponder{})

	conv, greeting, err := svc.Start(context.Background(), "client-1", "en")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if conv.ID == "" {
		t.Fatal("conversation not assigned an id")
	}
	if conv.Schema.Meta.CurrentState != model.StateAskQuestion {
		t.Errorf("new schema state = %s", conv.Schema.Meta.CurrentState)
	}
	if greeting.Role != model.RoleAssistant || greeting.Content == "" {
		t.Errorf("greeting = %+v", greeting)
	}
	if len(msgRepo.msgs) != 1 {
		t.Errorf("transcript length = %d, want 1", len(msgRepo.msgs))
	}
	if _, ok := schemaCache.store[conv.ID]; !ok {
		t.Error("schema not cached at start")
	}
	if _, ok := convRepo.convs[conv.ID]; !ok {
		t.Error("conversation not persisted")
	}
}

func TestProcessMessagePersistsSchemaAndTranscript(t *testing.T) {
	ext := &fakeExtractor{result: extractionWith(model.SchemaUpdate{
		Idea: &model.IdeaUpdate{OneLiner: strPtr("a flashcard app")},
	})}
	resp := &fakeResponder{text: "Nice, tell me more."}
	svc, convRepo, msgRepo, schemaCache := newTestConversationService(ext, resp)

	conv, _, err := svc.Start(context.Background(), "client-1", "en")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	result, err := svc.ProcessMessage(context.Background(), conv.ID, "client-1", "a flashcard app", "")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if result.Schema.Meta.CompletionScore != 30 {
		t.Errorf("score = %d, want 30", result.Schema.Meta.CompletionScore)
	}

	stored := convRepo.convs[conv.ID].Schema
	if stored.Meta.CompletionScore != 30 {
		t.Errorf("persisted score = %d, want 30", stored.Meta.CompletionScore)
	}
	if cached := schemaCache.store[conv.ID]; cached.Meta.CompletionScore != 30 {
		t.Errorf("cached score = %d, want 30", cached.Meta.CompletionScore)
	}

	// greeting + user + assistant
	if len(msgRepo.msgs) != 3 {
		t.Fatalf("transcript length = %d, want 3", len(msgRepo.msgs))
	}
	if msgRepo.msgs[1].Role != model.RoleUser || msgRepo.msgs[2].Role != model.RoleAssistant {
		t.Errorf("transcript roles wrong: %s, %s", msgRepo.msgs[1].Role, msgRepo.msgs[2].Role)
	}
}

func TestProcessMessageGenerationFailureStillPersists(t *testing.T) {
	ext := &fakeExtractor{result: extractionWith(model.SchemaUpdate{
		Idea: &model.IdeaUpdate{OneLiner: strPtr("a trip planner")},
	})}
	resp := &fakeResponder{err: errors.New("upstream down")}
	svc, convRepo, msgRepo, _ := newTestConversationService(ext, resp)

	conv, _, err := svc.Start(context.Background(), "client-1", "en")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	result, err := svc.ProcessMessage(context.Background(), conv.ID, "client-1", "a trip planner", "")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
	if result == nil {
		t.Fatal("result with the merged schema expected alongside the error")
	}

	// Extracted facts survive the failed turn.
	stored := convRepo.convs[conv.ID].Schema
	if stored.Meta.CompletionScore != 30 {
		t.Errorf("persisted score = %d, want 30", stored.Meta.CompletionScore)
	}

	// No assistant message for the failed turn: greeting + user only.
	if len(msgRepo.msgs) != 2 {
		t.Errorf("transcript length = %d, want 2", len(msgRepo.msgs))
	}
}

func TestProcessMessagePrefersCachedSchema(t *testing.T) {
	ext := &fakeExtractor{result: extractionWith(model.SchemaUpdate{})}
	resp := &fakeResponder{text: "ok"}
	svc, _, _, schemaCache := newTestConversationService(ext, resp)

	conv, _, err := svc.Start(context.Background(), "client-1", "en")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// A fresher snapshot in cache than in the repo.
	fresher := schema.Merge(schema.NewSchema(), model.SchemaUpdate{
		Idea: &model.IdeaUpdate{OneLiner: strPtr("cached idea")},
	})
	schemaCache.store[conv.ID] = fresher

	result, err := svc.ProcessMessage(context.Background(), conv.ID, "client-1", "hi", "")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if result.Schema.Idea.OneLiner != "cached idea" {
		t.Errorf("turn ran against stale schema: %+v", result.Schema.Idea)
	}
}

func TestProcessMessageResolvesNamedChoiceQuestion(t *testing.T) {
	// A turn naming the platform question resolves "b" through the catalog
	// into platform.form.
	ext := &fakeExtractor{result: extractionWith(model.SchemaUpdate{})}
	resp := &fakeResponder{text: "An iPhone app, got it."}
	svc, convRepo, _, _ := newTestConversationService(ext, resp)

	conv, _, err := svc.Start(context.Background(), "client-1", "en")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	result, err := svc.ProcessMessage(context.Background(), conv.ID, "client-1", "b", "q_platform")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if got := result.Schema.Platform.Form; got != model.PlatformIOS {
		t.Errorf("platform.form = %q, want %q", got, model.PlatformIOS)
	}
	if stored := convRepo.convs[conv.ID].Schema.Platform.Form; stored != model.PlatformIOS {
		t.Errorf("persisted platform.form = %q", stored)
	}
}

func TestProcessMessageUnknownQuestionIDIsFreeConversation(t *testing.T) {
	ext := &fakeExtractor{result: extractionWith(model.SchemaUpdate{})}
	resp := &fakeResponder{text: "ok"}
	svc, _, _, _ := newTestConversationService(ext, resp)

	conv, _, err := svc.Start(context.Background(), "client-1", "en")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	result, err := svc.ProcessMessage(context.Background(), conv.ID, "client-1", "b", "q_gone")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if got := result.Schema.Platform.Form; got != "" {
		t.Errorf("platform.form = %q, want empty for an unknown question id", got)
	}
}

func TestProcessMessageEvictsUnreadableCacheEntry(t *testing.T) {
	ext := &fakeExtractor{result: extractionWith(model.SchemaUpdate{})}
	resp := &fakeResponder{text: "ok"}
	svc, _, _, schemaCache := newTestConversationService(ext, resp)

	conv, _, err := svc.Start(context.Background(), "client-1", "en")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	schemaCache.getErr = errors.New("unmarshal failed")
	if _, err := svc.ProcessMessage(context.Background(), conv.ID, "client-1", "hi", ""); err != nil {
		t.Fatalf("turn must survive a cache read failure: %v", err)
	}
	if schemaCache.deletes != 1 {
		t.Errorf("deletes = %d, want 1 eviction", schemaCache.deletes)
	}
}

func TestForeignConversationReadsAsNotFound(t *testing.T) {
	svc, _, _, _ := newTestConversationService(&fakeExtractor{}, &fakeResponder{text: "ok"})

	conv, _, err := svc.Start(context.Background(), "client-1", "en")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := svc.Get(context.Background(), conv.ID, "client-2"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Get by foreign client: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.ProcessMessage(context.Background(), conv.ID, "client-2", "hi", ""); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("ProcessMessage by foreign client: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Progress(context.Background(), conv.ID, "client-2"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Progress by foreign client: err = %v, want ErrNotFound", err)
	}
}

func TestListScopedToClient(t *testing.T) {
	svc, _, _, _ := newTestConversationService(&fakeExtractor{}, &fakeResponder{text: "ok"})

	mine, _, err := svc.Start(context.Background(), "client-1", "en")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, _, err := svc.Start(context.Background(), "client-2", "en"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	convs, err := svc.List(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(convs) != 1 || convs[0].ID != mine.ID {
		t.Errorf("List = %+v, want only client-1's conversation", convs)
	}
}

func TestProgressReflectsStoredSchema(t *testing.T) {
	svc, convRepo, _, _ := newTestConversationService(&fakeExtractor{}, &fakeResponder{text: "ok"})

	conv, _, err := svc.Start(context.Background(), "client-1", "en")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	form := model.PlatformCLI
	convRepo.convs[conv.ID].Schema = schema.Merge(schema.NewSchema(), model.SchemaUpdate{
		Idea:     &model.IdeaUpdate{OneLiner: strPtr("a linting tool")},
		Platform: &model.PlatformUpdate{Form: &form},
	})

	p, err := svc.Progress(context.Background(), conv.ID, "client-1")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if p.MVPFilled != 2 || p.MVPTotal != 3 {
		t.Errorf("progress = %+v", p)
	}
}
