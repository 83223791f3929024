package domain

import "time"

// Article is a base article: the generation settings (outline, length,
// sections) plus the generated title, body, and meta tags.
type Article struct {
	ID              int64     `json:"id"`
	ProjectID       int64     `json:"project_id"`
	Outline         string    `json:"outline"`
	Length          int       `json:"length"`
	Sections        int       `json:"sections"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	MetaTitle       string    `json:"meta_title"`
	MetaDescription string    `json:"meta_description"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewArticle creates validated article settings for a project.
func NewArticle(projectID int64, outline string, length, sections int) (*Article, error) {
	now := time.Now().UTC()
	a := &Article{
		ProjectID: projectID,
		Outline:   outline,
		Length:    length,
		Sections:  sections,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks if the Article has valid data.
func (a *Article) Validate() error {
	if a.ProjectID <= 0 {
		return ErrInvalidProjectRef
	}
	if a.Length < 0 {
		return ErrNegativeLength
	}
	if a.Sections < 0 {
		return ErrNegativeSections
	}
	return nil
}
