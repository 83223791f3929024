package domain

import "time"

// CommunityArticle is a base article rewritten for one community.
// There is at most one per (base article, community) pair.
type CommunityArticle struct {
	ID              int64     `json:"id"`
	ProjectID       int64     `json:"project_id"`
	BaseArticleID   int64     `json:"base_article_id"`
	CommunityID     int64     `json:"community_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Schema          string    `json:"schema"`
	MetaTitle       string    `json:"meta_title"`
	MetaDescription string    `json:"meta_description"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewCommunityArticle creates a validated community article derived from base.
func NewCommunityArticle(base *Article, communityID int64, title, content string) (*CommunityArticle, error) {
	now := time.Now().UTC()
	ca := &CommunityArticle{
		ProjectID:     base.ProjectID,
		BaseArticleID: base.ID,
		CommunityID:   communityID,
		Title:         title,
		Content:       content,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := ca.Validate(); err != nil {
		return nil, err
	}
	return ca, nil
}

// Validate checks if the CommunityArticle has valid data.
func (a *CommunityArticle) Validate() error {
	if a.ProjectID <= 0 {
		return ErrInvalidProjectRef
	}
	if a.BaseArticleID <= 0 {
		return ErrInvalidArticleRef
	}
	if a.CommunityID <= 0 {
		return ErrInvalidCommunityID
	}
	return nil
}
