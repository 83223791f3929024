package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/grover/internal/community"
	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/generation"
	"github.com/phrazzld/grover/internal/keywords"
	"github.com/phrazzld/grover/internal/service"
	"github.com/phrazzld/grover/internal/session"
	"github.com/phrazzld/grover/internal/usage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memorySessions is a SessionSaver that keeps the last saved state.
type memorySessions struct {
	mu    sync.Mutex
	saved []session.State
	err   error
}

func (m *memorySessions) Save(_ context.Context, state session.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, state)
	return nil
}

func (m *memorySessions) last(t *testing.T) session.State {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.saved, "no session saved")
	return m.saved[len(m.saved)-1]
}

// newTestRequest builds a request with chi URL params and session state.
func newTestRequest(
	t *testing.T,
	method, target string,
	body interface{},
	params map[string]string,
	state *session.State,
) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	if state != nil {
		ctx = session.WithState(ctx, *state)
	}
	return req.WithContext(ctx)
}

func testState() *session.State {
	s := session.New("sess-1", timeNow())
	return &s
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func int64Ptr(v int64) *int64 { return &v }

// generationResult builds a one-attempt result.
func generationResult(op string, succeeded bool, payload string) *service.GenerationResult {
	outcome := generation.Outcome{
		Payload:         payload,
		Succeeded:       succeeded,
		AttemptsUsed:    1,
		RawLastResponse: "raw:" + payload,
		Attempts:        []generation.Attempt{{Number: 1}},
	}
	if !succeeded {
		outcome.Failure = &generation.Failure{Validator: generation.ReasonNonEmpty, Message: "payload is empty"}
	}
	return &service.GenerationResult{
		Operation: op,
		Outcome:   outcome,
		Usage:     []usage.Entry{{Operation: op, Iteration: 1, PromptTokens: 100, CompletionTokens: 50}},
		Cost:      usage.Costs{TotalCost: 0.00033, Tokens: 150},
	}
}

type mockProjectService struct {
	CreateFn    func(ctx context.Context, project *domain.Project) error
	GetFn       func(ctx context.Context, id int64) (*domain.Project, error)
	ListFn      func(ctx context.Context) ([]*domain.Project, error)
	UpdateFn    func(ctx context.Context, project *domain.Project) error
	DeleteFn    func(ctx context.Context, id int64) error
	DuplicateFn func(ctx context.Context, id int64, name, changesNote string) (*domain.Project, error)
}

func (m *mockProjectService) Create(ctx context.Context, project *domain.Project) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, project)
	}
	return nil
}

func (m *mockProjectService) Get(ctx context.Context, id int64) (*domain.Project, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProjectService) List(ctx context.Context) ([]*domain.Project, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *mockProjectService) Update(ctx context.Context, project *domain.Project) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, project)
	}
	return nil
}

func (m *mockProjectService) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *mockProjectService) Duplicate(
	ctx context.Context,
	id int64,
	name, changesNote string,
) (*domain.Project, error) {
	if m.DuplicateFn != nil {
		return m.DuplicateFn(ctx, id, name, changesNote)
	}
	return nil, nil
}

type mockKeywordService struct {
	ListFn           func(ctx context.Context, projectID int64) ([]*domain.Keyword, error)
	AddFn            func(ctx context.Context, projectID int64, phrase string, primary bool) (*domain.Keyword, error)
	RemoveFn         func(ctx context.Context, id int64) error
	ResearchFn       func(ctx context.Context, phrase string) (*keywords.Research, error)
	RefreshMetricsFn func(ctx context.Context) (service.RefreshSummary, error)
}

func (m *mockKeywordService) List(ctx context.Context, projectID int64) ([]*domain.Keyword, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, projectID)
	}
	return nil, nil
}

func (m *mockKeywordService) Add(
	ctx context.Context,
	projectID int64,
	phrase string,
	primary bool,
) (*domain.Keyword, error) {
	if m.AddFn != nil {
		return m.AddFn(ctx, projectID, phrase, primary)
	}
	return nil, nil
}

func (m *mockKeywordService) Remove(ctx context.Context, id int64) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, id)
	}
	return nil
}

func (m *mockKeywordService) Research(ctx context.Context, phrase string) (*keywords.Research, error) {
	if m.ResearchFn != nil {
		return m.ResearchFn(ctx, phrase)
	}
	return nil, nil
}

func (m *mockKeywordService) RefreshMetrics(ctx context.Context) (service.RefreshSummary, error) {
	if m.RefreshMetricsFn != nil {
		return m.RefreshMetricsFn(ctx)
	}
	return service.RefreshSummary{}, nil
}

type mockArticleService struct {
	CreateFn               func(ctx context.Context, projectID int64, outline string, length, sections int) (*domain.Article, error)
	GetFn                  func(ctx context.Context, id int64) (*domain.Article, error)
	ListFn                 func(ctx context.Context, projectID int64) ([]*domain.Article, error)
	UpdateSettingsFn       func(ctx context.Context, id int64, outline string, length, sections int) (*domain.Article, error)
	DeleteFn               func(ctx context.Context, id int64) error
	SaveTitleOutlineFn     func(ctx context.Context, id int64, title, outline string) error
	SaveContentFn          func(ctx context.Context, id int64, content string) error
	GenerateTitleOutlineFn func(ctx context.Context, id int64, opts service.GenerateOptions) (*service.TitleOutlineResult, error)
	GenerateContentFn      func(ctx context.Context, id int64, opts service.GenerateOptions) (*service.GenerationResult, error)
	RefineFn               func(ctx context.Context, id int64, content, instructions string, opts service.GenerateOptions) (*service.GenerationResult, error)
	FixFormatFn            func(ctx context.Context, id int64, opts service.GenerateOptions) (*service.GenerationResult, error)
	GenerateMetaFn         func(ctx context.Context, id int64, opts service.GenerateOptions) (*service.MetaResult, error)
	RenderHTMLFn           func(ctx context.Context, id int64) (string, error)
}

func (m *mockArticleService) Create(
	ctx context.Context,
	projectID int64,
	outline string,
	length, sections int,
) (*domain.Article, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, projectID, outline, length, sections)
	}
	return nil, nil
}

func (m *mockArticleService) Get(ctx context.Context, id int64) (*domain.Article, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return nil, nil
}

func (m *mockArticleService) List(ctx context.Context, projectID int64) ([]*domain.Article, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, projectID)
	}
	return nil, nil
}

func (m *mockArticleService) UpdateSettings(
	ctx context.Context,
	id int64,
	outline string,
	length, sections int,
) (*domain.Article, error) {
	if m.UpdateSettingsFn != nil {
		return m.UpdateSettingsFn(ctx, id, outline, length, sections)
	}
	return nil, nil
}

func (m *mockArticleService) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *mockArticleService) SaveTitleOutline(ctx context.Context, id int64, title, outline string) error {
	if m.SaveTitleOutlineFn != nil {
		return m.SaveTitleOutlineFn(ctx, id, title, outline)
	}
	return nil
}

func (m *mockArticleService) SaveContent(ctx context.Context, id int64, content string) error {
	if m.SaveContentFn != nil {
		return m.SaveContentFn(ctx, id, content)
	}
	return nil
}

func (m *mockArticleService) GenerateTitleOutline(
	ctx context.Context,
	id int64,
	opts service.GenerateOptions,
) (*service.TitleOutlineResult, error) {
	if m.GenerateTitleOutlineFn != nil {
		return m.GenerateTitleOutlineFn(ctx, id, opts)
	}
	return nil, nil
}

func (m *mockArticleService) GenerateContent(
	ctx context.Context,
	id int64,
	opts service.GenerateOptions,
) (*service.GenerationResult, error) {
	if m.GenerateContentFn != nil {
		return m.GenerateContentFn(ctx, id, opts)
	}
	return nil, nil
}

func (m *mockArticleService) Refine(
	ctx context.Context,
	id int64,
	content, instructions string,
	opts service.GenerateOptions,
) (*service.GenerationResult, error) {
	if m.RefineFn != nil {
		return m.RefineFn(ctx, id, content, instructions, opts)
	}
	return nil, nil
}

func (m *mockArticleService) FixFormat(
	ctx context.Context,
	id int64,
	opts service.GenerateOptions,
) (*service.GenerationResult, error) {
	if m.FixFormatFn != nil {
		return m.FixFormatFn(ctx, id, opts)
	}
	return nil, nil
}

func (m *mockArticleService) GenerateMeta(
	ctx context.Context,
	id int64,
	opts service.GenerateOptions,
) (*service.MetaResult, error) {
	if m.GenerateMetaFn != nil {
		return m.GenerateMetaFn(ctx, id, opts)
	}
	return nil, nil
}

func (m *mockArticleService) RenderHTML(ctx context.Context, id int64) (string, error) {
	if m.RenderHTMLFn != nil {
		return m.RenderHTMLFn(ctx, id)
	}
	return "", nil
}

type mockCommunityService struct {
	ListCommunitiesFn        func(ctx context.Context) ([]community.Community, error)
	GetCommunityDetailsFn    func(ctx context.Context, communityID int64, careAreas []string) (*community.Details, error)
	ReviseFn                 func(ctx context.Context, articleID, communityID int64, opts service.GenerateOptions) (*service.RevisionResult, error)
	ReviseAndSaveFn          func(ctx context.Context, articleID, communityID int64) (*domain.CommunityArticle, error)
	SubmitBatchRevisionFn    func(ctx context.Context, articleID int64, communityIDs []int64) ([]uuid.UUID, error)
	ListCommunityArticlesFn  func(ctx context.Context, articleID int64) ([]*domain.CommunityArticle, error)
	CreateCommunityArticleFn func(ctx context.Context, articleID, communityID int64, title, content string) (*domain.CommunityArticle, error)
	GetCommunityArticleFn    func(ctx context.Context, id int64) (*domain.CommunityArticle, error)
	UpdateCommunityArticleFn func(ctx context.Context, article *domain.CommunityArticle) error
	DeleteCommunityArticleFn func(ctx context.Context, id int64) error
}

func (m *mockCommunityService) ListCommunities(ctx context.Context) ([]community.Community, error) {
	if m.ListCommunitiesFn != nil {
		return m.ListCommunitiesFn(ctx)
	}
	return nil, nil
}

func (m *mockCommunityService) GetCommunityDetails(
	ctx context.Context,
	communityID int64,
	careAreas []string,
) (*community.Details, error) {
	if m.GetCommunityDetailsFn != nil {
		return m.GetCommunityDetailsFn(ctx, communityID, careAreas)
	}
	return nil, nil
}

func (m *mockCommunityService) Revise(
	ctx context.Context,
	articleID, communityID int64,
	opts service.GenerateOptions,
) (*service.RevisionResult, error) {
	if m.ReviseFn != nil {
		return m.ReviseFn(ctx, articleID, communityID, opts)
	}
	return nil, nil
}

func (m *mockCommunityService) ReviseAndSave(
	ctx context.Context,
	articleID, communityID int64,
) (*domain.CommunityArticle, error) {
	if m.ReviseAndSaveFn != nil {
		return m.ReviseAndSaveFn(ctx, articleID, communityID)
	}
	return nil, nil
}

func (m *mockCommunityService) SubmitBatchRevision(
	ctx context.Context,
	articleID int64,
	communityIDs []int64,
) ([]uuid.UUID, error) {
	if m.SubmitBatchRevisionFn != nil {
		return m.SubmitBatchRevisionFn(ctx, articleID, communityIDs)
	}
	return nil, nil
}

func (m *mockCommunityService) ListCommunityArticles(
	ctx context.Context,
	articleID int64,
) ([]*domain.CommunityArticle, error) {
	if m.ListCommunityArticlesFn != nil {
		return m.ListCommunityArticlesFn(ctx, articleID)
	}
	return nil, nil
}

func (m *mockCommunityService) CreateCommunityArticle(
	ctx context.Context,
	articleID, communityID int64,
	title, content string,
) (*domain.CommunityArticle, error) {
	if m.CreateCommunityArticleFn != nil {
		return m.CreateCommunityArticleFn(ctx, articleID, communityID, title, content)
	}
	return nil, nil
}

func (m *mockCommunityService) GetCommunityArticle(ctx context.Context, id int64) (*domain.CommunityArticle, error) {
	if m.GetCommunityArticleFn != nil {
		return m.GetCommunityArticleFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCommunityService) UpdateCommunityArticle(ctx context.Context, article *domain.CommunityArticle) error {
	if m.UpdateCommunityArticleFn != nil {
		return m.UpdateCommunityArticleFn(ctx, article)
	}
	return nil
}

func (m *mockCommunityService) DeleteCommunityArticle(ctx context.Context, id int64) error {
	if m.DeleteCommunityArticleFn != nil {
		return m.DeleteCommunityArticleFn(ctx, id)
	}
	return nil
}

var (
	_ service.ProjectService   = (*mockProjectService)(nil)
	_ service.KeywordService   = (*mockKeywordService)(nil)
	_ service.ArticleService   = (*mockArticleService)(nil)
	_ service.CommunityService = (*mockCommunityService)(nil)
)
