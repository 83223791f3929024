package api

import (
	"time"

	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/generation"
	"github.com/phrazzld/grover/internal/service"
	"github.com/phrazzld/grover/internal/session"
	"github.com/phrazzld/grover/internal/usage"
)

// Session requests.

type SessionModelRequest struct {
	Model string `json:"model" validate:"max=128"`
}

type SessionDebugRequest struct {
	Debug *bool `json:"debug" validate:"required"`
}

// SessionResponse is the session state with its usage totals.
type SessionResponse struct {
	ProjectID          *int64           `json:"project_id,omitempty"`
	ArticleID          *int64           `json:"article_id,omitempty"`
	CommunityArticleID *int64           `json:"community_article_id,omitempty"`
	Model              string           `json:"model"`
	Debug              bool             `json:"debug"`
	Drafts             map[int64]string `json:"drafts"`
	Refine             map[int64]string `json:"refine"`
	Usage              []usage.Entry    `json:"usage"`
	Totals             usage.Summary    `json:"totals"`
	Options            domain.Options   `json:"options"`
}

func sessionToResponse(s session.State) SessionResponse {
	return SessionResponse{
		ProjectID:          s.ProjectID,
		ArticleID:          s.ArticleID,
		CommunityArticleID: s.CommunityArticleID,
		Model:              s.Model,
		Debug:              s.Debug,
		Drafts:             s.Drafts,
		Refine:             s.Refine,
		Usage:              s.Usage,
		Totals:             usage.Summarize(s.Usage),
		Options:            domain.AllOptions(),
	}
}

// ProjectRequest is the body of project create and update requests.
type ProjectRequest struct {
	Name             string   `json:"name"              validate:"required,max=200"`
	Topic            string   `json:"topic"`
	CareAreas        []string `json:"care_areas"        validate:"required,min=1"`
	JourneyStage     string   `json:"journey_stage"`
	Category         string   `json:"category"`
	FormatType       string   `json:"format_type"`
	BusinessCategory string   `json:"business_category"`
	ConsumerNeed     string   `json:"consumer_need"`
	ToneOfVoice      string   `json:"tone_of_voice"`
	TargetAudiences  []string `json:"target_audiences"`
	Notes            string   `json:"notes"`
}

// apply copies the request fields onto p.
func (req ProjectRequest) apply(p *domain.Project) {
	p.Name = req.Name
	p.Topic = req.Topic
	p.CareAreas = req.CareAreas
	p.JourneyStage = req.JourneyStage
	p.Category = req.Category
	p.FormatType = req.FormatType
	p.BusinessCategory = req.BusinessCategory
	p.ConsumerNeed = req.ConsumerNeed
	p.ToneOfVoice = req.ToneOfVoice
	p.TargetAudiences = req.TargetAudiences
	p.Notes = req.Notes
}

type DuplicateProjectRequest struct {
	Name        string `json:"name"         validate:"required,max=200"`
	ChangesNote string `json:"changes_note"`
}

type KeywordRequest struct {
	Keyword   string `json:"keyword"    validate:"required,max=200"`
	IsPrimary bool   `json:"is_primary"`
}

type KeywordResearchRequest struct {
	Phrase string `json:"phrase" validate:"required,max=200"`
}

// ArticleRequest is the body of article create and settings update requests.
type ArticleRequest struct {
	Outline  string `json:"outline"`
	Length   int    `json:"length"   validate:"gte=0"`
	Sections int    `json:"sections" validate:"gte=0"`
}

type TitleOutlineRequest struct {
	Title   string `json:"title"`
	Outline string `json:"outline"`
}

type ContentRequest struct {
	Content string `json:"content" validate:"required"`
}

// RefineRequest asks for a revision of content. An empty content refines the
// session draft, or the saved article when there is no draft.
type RefineRequest struct {
	Content      string `json:"content"`
	Instructions string `json:"instructions" validate:"required"`
}

type CommunityRevisionRequest struct {
	CommunityID int64 `json:"community_id" validate:"required,gt=0"`
}

type BatchRevisionRequest struct {
	CommunityIDs []int64 `json:"community_ids" validate:"required,min=1,dive,gt=0"`
}

// BatchRevisionResponse lists the tasks queued for a batch revision.
type BatchRevisionResponse struct {
	TaskIDs []string `json:"task_ids"`
}

type CommunityArticleRequest struct {
	CommunityID int64  `json:"community_id" validate:"required,gt=0"`
	Title       string `json:"title"`
	Content     string `json:"content"`
}

type UpdateCommunityArticleRequest struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	Schema          string `json:"schema"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
}

// GenerationResponse reports one generation run. RawLastResponse and
// Attempts are only filled when the session has debug enabled.
type GenerationResponse struct {
	Operation       string               `json:"operation"`
	Payload         string               `json:"payload"`
	Succeeded       bool                 `json:"succeeded"`
	AttemptsUsed    int                  `json:"attempts_used"`
	FailureReason   string               `json:"failure_reason,omitempty"`
	Usage           []usage.Entry        `json:"usage"`
	Cost            usage.Costs          `json:"cost"`
	Title           string               `json:"title,omitempty"`
	Outline         string               `json:"outline,omitempty"`
	MetaTitle       string               `json:"meta_title,omitempty"`
	MetaDescription string               `json:"meta_description,omitempty"`
	CommunityID     int64                `json:"community_id,omitempty"`
	CommunityName   string               `json:"community_name,omitempty"`
	RawLastResponse string               `json:"raw_last_response,omitempty"`
	Attempts        []generation.Attempt `json:"attempts,omitempty"`
}

func newGenerationResponse(res *service.GenerationResult, debug bool) GenerationResponse {
	resp := GenerationResponse{
		Operation:     res.Operation,
		Payload:       res.Outcome.Payload,
		Succeeded:     res.Outcome.Succeeded,
		AttemptsUsed:  res.Outcome.AttemptsUsed,
		FailureReason: res.Outcome.FailureReason(),
		Usage:         res.Usage,
		Cost:          res.Cost,
	}
	if resp.Usage == nil {
		resp.Usage = []usage.Entry{}
	}
	if debug {
		resp.RawLastResponse = res.Outcome.RawLastResponse
		resp.Attempts = res.Outcome.Attempts
	}
	return resp
}

// TaskResponse is the status of a background task.
type TaskResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
