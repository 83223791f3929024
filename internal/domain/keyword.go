package domain

import (
	"strings"
	"time"
)

// Keyword is a research phrase attached to a project. Metrics are optional
// because manually added keywords have none until refreshed.
type Keyword struct {
	ID           int64     `json:"id"`
	ProjectID    int64     `json:"project_id"`
	Keyword      string    `json:"keyword"`
	SearchVolume *int      `json:"search_volume,omitempty"`
	SearchIntent string    `json:"search_intent"`
	Difficulty   *int      `json:"keyword_difficulty,omitempty"`
	IsPrimary    bool      `json:"is_primary"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewKeyword creates a validated keyword for a project.
func NewKeyword(projectID int64, phrase string) (*Keyword, error) {
	k := &Keyword{
		ProjectID: projectID,
		Keyword:   strings.TrimSpace(phrase),
		CreatedAt: time.Now().UTC(),
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

// Validate checks if the Keyword has valid data.
func (k *Keyword) Validate() error {
	if k.ProjectID <= 0 {
		return ErrInvalidProjectRef
	}
	if strings.TrimSpace(k.Keyword) == "" {
		return ErrEmptyKeyword
	}
	if (k.SearchVolume != nil && *k.SearchVolume < 0) || (k.Difficulty != nil && *k.Difficulty < 0) {
		return ErrNegativeSearchStats
	}
	return nil
}

// Phrases returns the keyword text of each entry, in order.
func Phrases(keywords []*Keyword) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, k.Keyword)
	}
	return out
}
