package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/grover/internal/community"
	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/generation"
	"github.com/phrazzld/grover/internal/keywords"
	"github.com/phrazzld/grover/internal/prompts"
	"github.com/phrazzld/grover/internal/store"
	"github.com/phrazzld/grover/internal/task"
	"github.com/phrazzld/grover/internal/usage"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockProjectStore mocks store.ProjectStore. WithTx returns the mock itself.
type MockProjectStore struct {
	mock.Mock
}

func (m *MockProjectStore) Create(ctx context.Context, p *domain.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProjectStore) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Project)
	return p, args.Error(1)
}

func (m *MockProjectStore) List(ctx context.Context) ([]*domain.Project, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*domain.Project)
	return list, args.Error(1)
}

func (m *MockProjectStore) Update(ctx context.Context, p *domain.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProjectStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProjectStore) WithTx(*sql.Tx) store.ProjectStore {
	return m
}

// MockKeywordStore mocks store.KeywordStore. WithTx returns the mock itself.
type MockKeywordStore struct {
	mock.Mock
}

func (m *MockKeywordStore) Create(ctx context.Context, k *domain.Keyword) error {
	return m.Called(ctx, k).Error(0)
}

func (m *MockKeywordStore) ListByProject(ctx context.Context, projectID int64) ([]*domain.Keyword, error) {
	args := m.Called(ctx, projectID)
	list, _ := args.Get(0).([]*domain.Keyword)
	return list, args.Error(1)
}

func (m *MockKeywordStore) ListAll(ctx context.Context) ([]*domain.Keyword, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*domain.Keyword)
	return list, args.Error(1)
}

func (m *MockKeywordStore) UpdateMetrics(ctx context.Context, id int64, metrics store.KeywordMetrics) error {
	return m.Called(ctx, id, metrics).Error(0)
}

func (m *MockKeywordStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockKeywordStore) WithTx(*sql.Tx) store.KeywordStore {
	return m
}

// MockArticleStore mocks store.ArticleStore.
type MockArticleStore struct {
	mock.Mock
}

func (m *MockArticleStore) Save(ctx context.Context, a *domain.Article) (int64, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockArticleStore) GetByID(ctx context.Context, id int64) (*domain.Article, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*domain.Article)
	return a, args.Error(1)
}

func (m *MockArticleStore) ListByProject(ctx context.Context, projectID int64) ([]*domain.Article, error) {
	args := m.Called(ctx, projectID)
	list, _ := args.Get(0).([]*domain.Article)
	return list, args.Error(1)
}

func (m *MockArticleStore) UpdateSettings(ctx context.Context, id int64, outline string, length, sections int) error {
	return m.Called(ctx, id, outline, length, sections).Error(0)
}

func (m *MockArticleStore) UpdateTitleOutline(ctx context.Context, id int64, title, outline string) error {
	return m.Called(ctx, id, title, outline).Error(0)
}

func (m *MockArticleStore) UpdateContent(ctx context.Context, id int64, content string) error {
	return m.Called(ctx, id, content).Error(0)
}

func (m *MockArticleStore) UpdateMeta(ctx context.Context, id int64, metaTitle, metaDescription string) error {
	return m.Called(ctx, id, metaTitle, metaDescription).Error(0)
}

func (m *MockArticleStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockCommunityArticleStore mocks store.CommunityArticleStore.
type MockCommunityArticleStore struct {
	mock.Mock
}

func (m *MockCommunityArticleStore) Create(ctx context.Context, a *domain.CommunityArticle) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockCommunityArticleStore) Upsert(ctx context.Context, a *domain.CommunityArticle) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockCommunityArticleStore) GetByID(ctx context.Context, id int64) (*domain.CommunityArticle, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*domain.CommunityArticle)
	return a, args.Error(1)
}

func (m *MockCommunityArticleStore) GetByPair(
	ctx context.Context,
	baseArticleID, communityID int64,
) (*domain.CommunityArticle, error) {
	args := m.Called(ctx, baseArticleID, communityID)
	a, _ := args.Get(0).(*domain.CommunityArticle)
	return a, args.Error(1)
}

func (m *MockCommunityArticleStore) ListByArticle(
	ctx context.Context,
	baseArticleID int64,
) ([]*domain.CommunityArticle, error) {
	args := m.Called(ctx, baseArticleID)
	list, _ := args.Get(0).([]*domain.CommunityArticle)
	return list, args.Error(1)
}

func (m *MockCommunityArticleStore) Update(ctx context.Context, a *domain.CommunityArticle) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockCommunityArticleStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockResearcher mocks KeywordResearcher.
type MockResearcher struct {
	mock.Mock
	enabled bool
}

func (m *MockResearcher) Enabled() bool {
	return m.enabled
}

func (m *MockResearcher) Research(ctx context.Context, phrase string) (*keywords.Research, error) {
	args := m.Called(ctx, phrase)
	r, _ := args.Get(0).(*keywords.Research)
	return r, args.Error(1)
}

func (m *MockResearcher) Metrics(ctx context.Context, phrase string) (*keywords.Result, error) {
	args := m.Called(ctx, phrase)
	r, _ := args.Get(0).(*keywords.Result)
	return r, args.Error(1)
}

// MockDirectory mocks CommunityDirectory.
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Communities(ctx context.Context) ([]community.Community, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]community.Community)
	return list, args.Error(1)
}

func (m *MockDirectory) Details(ctx context.Context, communityID int64, selected []string) (*community.Details, error) {
	args := m.Called(ctx, communityID, selected)
	d, _ := args.Get(0).(*community.Details)
	return d, args.Error(1)
}

// MockTaskRunner is a mock implementation of the TaskRunner
type MockTaskRunner struct {
	mock.Mock
}

func (m *MockTaskRunner) Submit(ctx context.Context, t task.Task) error {
	return m.Called(ctx, t).Error(0)
}

// stubTask is a task that only carries an id.
type stubTask struct {
	id uuid.UUID
}

func (t stubTask) ID() uuid.UUID                 { return t.id }
func (t stubTask) Type() string                  { return task.TaskTypeCommunityRevision }
func (t stubTask) Payload() []byte               { return []byte("{}") }
func (t stubTask) Execute(context.Context) error { return nil }

// stubTaskFactory creates stubTasks and records the pairs it was asked for.
type stubTaskFactory struct {
	mu    sync.Mutex
	pairs [][2]int64
	err   error
}

func (f *stubTaskFactory) CreateTask(articleID, communityID int64) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.pairs = append(f.pairs, [2]int64{articleID, communityID})
	return stubTask{id: uuid.New()}, nil
}

// scriptedGenerator returns its responses in order, repeating the last one.
type scriptedGenerator struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (generation.Completion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	i := len(g.prompts) - 1
	if i >= len(g.responses) {
		i = len(g.responses) - 1
	}
	return generation.Completion{
		Text:  g.responses[i],
		Usage: generation.Usage{PromptTokens: 100, CompletionTokens: 50},
	}, nil
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

// generatorSource serves one generator for every model and records the
// requested names.
type generatorSource struct {
	gen    generation.Generator
	models []string
}

func (s *generatorSource) Generator(model string) (generation.Generator, error) {
	s.models = append(s.models, model)
	if s.gen == nil {
		return nil, fmt.Errorf("no generator for %q", model)
	}
	return s.gen, nil
}

var testPricing = usage.Pricing{InputPerMillion: 1.10, OutputPerMillion: 4.40}

func testGenerationDeps(gen generation.Generator) (GenerationDeps, *generatorSource) {
	src := &generatorSource{gen: gen}
	return GenerationDeps{
		Controller: generation.NewController(testLogger()),
		Generators: src,
		Prompts:    prompts.Default(),
		Settings: GenerationSettings{
			MaxAttempts:     3,
			MetaMaxAttempts: 2,
			Pricing:         testPricing,
		},
	}, src
}

type serviceMocks struct {
	projects          *MockProjectStore
	keywords          *MockKeywordStore
	articles          *MockArticleStore
	communityArticles *MockCommunityArticleStore
}

func newServiceMocks() *serviceMocks {
	return &serviceMocks{
		projects:          &MockProjectStore{},
		keywords:          &MockKeywordStore{},
		articles:          &MockArticleStore{},
		communityArticles: &MockCommunityArticleStore{},
	}
}

func (m *serviceMocks) stores() Stores {
	return Stores{
		Projects:          m.projects,
		Keywords:          m.keywords,
		Articles:          m.articles,
		CommunityArticles: m.communityArticles,
	}
}

func (m *serviceMocks) assertExpectations(t mock.TestingT) {
	m.projects.AssertExpectations(t)
	m.keywords.AssertExpectations(t)
	m.articles.AssertExpectations(t)
	m.communityArticles.AssertExpectations(t)
}

func sampleProject() *domain.Project {
	return &domain.Project{
		ID:        1,
		Name:      "Memory care guide",
		Topic:     "Choosing memory care",
		CareAreas: []string{"Memory Care"},
		IsBase:    true,
	}
}

func sampleArticle() *domain.Article {
	return &domain.Article{
		ID:        10,
		ProjectID: 1,
		Outline:   "Intro, signs, costs",
		Length:    5,
		Sections:  3,
		Title:     "Memory Care Basics",
		Content:   "# Memory Care Basics\n\nMemory care helps families plan.",
	}
}

func sampleKeywords() []*domain.Keyword {
	return []*domain.Keyword{
		{ID: 1, ProjectID: 1, Keyword: "memory care"},
		{ID: 2, ProjectID: 1, Keyword: "dementia support"},
	}
}
