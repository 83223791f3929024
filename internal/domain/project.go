package domain

import (
	"fmt"
	"time"
)

// Project groups the targeting settings shared by every article generated
// for one topic.
type Project struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Topic             string    `json:"topic"`
	CareAreas         []string  `json:"care_areas"`
	JourneyStage      string    `json:"journey_stage"`
	Category          string    `json:"category"`
	FormatType        string    `json:"format_type"`
	BusinessCategory  string    `json:"business_category"`
	ConsumerNeed      string    `json:"consumer_need"`
	ToneOfVoice       string    `json:"tone_of_voice"`
	TargetAudiences   []string  `json:"target_audiences"`
	Notes             string    `json:"notes"`
	IsBase            bool      `json:"is_base"`
	IsDuplicate       bool      `json:"is_duplicate"`
	OriginalProjectID *int64    `json:"original_project_id,omitempty"`
	ChangesNote       string    `json:"changes_note"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewProject creates a validated base project. Care areas are normalized to
// their canonical spelling.
func NewProject(name string, careAreas []string) (*Project, error) {
	now := time.Now().UTC()
	p := &Project{
		Name:      name,
		CareAreas: careAreas,
		IsBase:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks required fields and normalizes care areas in place.
func (p *Project) Validate() error {
	if p.Name == "" {
		return ErrEmptyProjectName
	}
	areas := SplitCareAreas(p.CareAreas)
	if len(areas) == 0 {
		return ErrNoCareAreas
	}
	for i, area := range areas {
		canonical, ok := CanonicalCareArea(area)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCareArea, area)
		}
		areas[i] = canonical
	}
	p.CareAreas = areas
	if p.TargetAudiences == nil {
		p.TargetAudiences = []string{}
	}
	return nil
}

// Duplicate returns an unsaved copy of p marked as derived from it.
func (p *Project) Duplicate(name, changesNote string) *Project {
	now := time.Now().UTC()
	cp := *p
	cp.ID = 0
	cp.Name = name
	cp.CareAreas = append([]string(nil), p.CareAreas...)
	cp.TargetAudiences = append([]string(nil), p.TargetAudiences...)
	cp.IsBase = false
	cp.IsDuplicate = true
	original := p.ID
	cp.OriginalProjectID = &original
	cp.ChangesNote = changesNote
	cp.CreatedAt = now
	cp.UpdatedAt = now
	return &cp
}
