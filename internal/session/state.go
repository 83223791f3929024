package session

import (
	"maps"
	"slices"
	"time"

	"github.com/phrazzld/grover/internal/usage"
)

// State is the working state of one browser session.
type State struct {
	ID                 string           `json:"id"`
	ProjectID          *int64           `json:"project_id,omitempty"`
	ArticleID          *int64           `json:"article_id,omitempty"`
	CommunityArticleID *int64           `json:"community_article_id,omitempty"`
	Model              string           `json:"model,omitempty"`
	Debug              bool             `json:"debug"`
	Drafts             map[int64]string `json:"drafts"`
	Refine             map[int64]string `json:"refine"`
	Usage              []usage.Entry    `json:"usage"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// New returns an empty state with the given id.
func New(id string, now time.Time) State {
	return State{
		ID:        id,
		Drafts:    map[int64]string{},
		Refine:    map[int64]string{},
		Usage:     []usage.Entry{},
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := s
	c.ProjectID = clonePtr(s.ProjectID)
	c.ArticleID = clonePtr(s.ArticleID)
	c.CommunityArticleID = clonePtr(s.CommunityArticleID)
	c.Drafts = maps.Clone(s.Drafts)
	c.Refine = maps.Clone(s.Refine)
	c.Usage = slices.Clone(s.Usage)
	if c.Drafts == nil {
		c.Drafts = map[int64]string{}
	}
	if c.Refine == nil {
		c.Refine = map[int64]string{}
	}
	if c.Usage == nil {
		c.Usage = []usage.Entry{}
	}
	return c
}

// SelectProject selects a project and clears the article selections when the
// project changes.
func (s *State) SelectProject(id int64) {
	if s.ProjectID != nil && *s.ProjectID == id {
		return
	}
	s.ProjectID = &id
	s.ArticleID = nil
	s.CommunityArticleID = nil
}

// SelectArticle selects an article of a project.
func (s *State) SelectArticle(projectID, articleID int64) {
	s.SelectProject(projectID)
	if s.ArticleID == nil || *s.ArticleID != articleID {
		s.CommunityArticleID = nil
	}
	s.ArticleID = &articleID
}

// SelectCommunityArticle selects a community article.
func (s *State) SelectCommunityArticle(id int64) {
	s.CommunityArticleID = &id
}

// SetDraft stores an unsaved draft for an article. An empty draft removes it.
func (s *State) SetDraft(articleID int64, draft string) {
	if s.Drafts == nil {
		s.Drafts = map[int64]string{}
	}
	if draft == "" {
		delete(s.Drafts, articleID)
		return
	}
	s.Drafts[articleID] = draft
}

// SetRefine stores the last refine instructions for an article.
func (s *State) SetRefine(articleID int64, instructions string) {
	if s.Refine == nil {
		s.Refine = map[int64]string{}
	}
	s.Refine[articleID] = instructions
}

// MaxUsageEntries caps the usage history kept in a session. Older entries are
// dropped first.
const MaxUsageEntries = 200

// RecordUsage appends usage entries to the history, keeping only the most
// recent MaxUsageEntries.
func (s *State) RecordUsage(entries ...usage.Entry) {
	s.Usage = append(s.Usage, entries...)
	if over := len(s.Usage) - MaxUsageEntries; over > 0 {
		s.Usage = slices.Clone(s.Usage[over:])
	}
}

// ClearUsage empties the usage history.
func (s *State) ClearUsage() {
	s.Usage = []usage.Entry{}
}

// Forget drops everything kept for a deleted article.
func (s *State) Forget(articleID int64) {
	delete(s.Drafts, articleID)
	delete(s.Refine, articleID)
	if s.ArticleID != nil && *s.ArticleID == articleID {
		s.ArticleID = nil
		s.CommunityArticleID = nil
	}
}

func clonePtr(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
