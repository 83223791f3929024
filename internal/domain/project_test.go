package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	tests := []struct {
		name      string
		projName  string
		careAreas []string
		wantErr   error
		wantAreas []string
	}{
		{
			name:      "valid",
			projName:  "Fall campaign",
			careAreas: []string{"Memory Care"},
			wantAreas: []string{"Memory Care"},
		},
		{
			name:      "normalizes case and comma lists",
			projName:  "Combo",
			careAreas: []string{"assisted living, MEMORY CARE", " "},
			wantAreas: []string{"Assisted Living", "Memory Care"},
		},
		{
			name:      "empty name",
			careAreas: []string{"Memory Care"},
			wantErr:   ErrEmptyProjectName,
		},
		{
			name:     "no care areas",
			projName: "Nothing",
			wantErr:  ErrNoCareAreas,
		},
		{
			name:      "unknown care area",
			projName:  "Bad",
			careAreas: []string{"Hospice"},
			wantErr:   ErrUnknownCareArea,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewProject(tc.projName, tc.careAreas)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantAreas, p.CareAreas)
			assert.True(t, p.IsBase)
			assert.NotNil(t, p.TargetAudiences)
		})
	}
}

func TestProjectDuplicate(t *testing.T) {
	p, err := NewProject("Original", []string{"Assisted Living"})
	require.NoError(t, err)
	p.ID = 7
	p.TargetAudiences = []string{"Seniors"}

	dup := p.Duplicate("Copy", "switched tone")

	assert.Zero(t, dup.ID)
	assert.Equal(t, "Copy", dup.Name)
	assert.True(t, dup.IsDuplicate)
	assert.False(t, dup.IsBase)
	require.NotNil(t, dup.OriginalProjectID)
	assert.Equal(t, int64(7), *dup.OriginalProjectID)
	assert.Equal(t, "switched tone", dup.ChangesNote)

	dup.CareAreas[0] = "Memory Care"
	assert.Equal(t, "Assisted Living", p.CareAreas[0], "duplicate must not share slices")
}

func TestCanonicalCareArea(t *testing.T) {
	name, ok := CanonicalCareArea(" skilled nursing ")
	assert.True(t, ok)
	assert.Equal(t, "Skilled Nursing", name)

	_, ok = CanonicalCareArea("Respite")
	assert.False(t, ok)
}

func TestAllOptions(t *testing.T) {
	opts := AllOptions()
	assert.Len(t, opts.CareAreas, 4)
	assert.Contains(t, opts.TonesOfVoice, "Empathetic")
	assert.Contains(t, opts.FormatTypes, "Checklist")
}
