package domain

import "strings"

// Known values offered for project targeting. Values outside these lists are
// accepted for every field except care areas, matching the "Other" entries.
var (
	CareAreas = []string{
		"Independent Living",
		"Assisted Living",
		"Memory Care",
		"Skilled Nursing",
	}

	TargetAudiences = []string{"Seniors", "Adult Children", "Caregivers", "Health Professionals", "Other"}

	JourneyStages = []string{"Awareness", "Consideration", "Decision", "Retention", "Advocacy", "Other"}

	ArticleCategories = []string{"Senior Living", "Health/Wellness", "Lifestyle", "Financial", "Other"}

	FormatTypes = []string{
		"Blog", "Case Study", "White Paper", "Guide", "Downloadable Guide", "Review",
		"Interactives", "Brand Content", "Infographic", "E-Book", "Email",
		"Social Media Posts", "User Generated Content", "Meme", "Checklist",
		"Video", "Podcast", "Other",
	}

	BusinessCategories = []string{"Healthcare", "Senior Living", "Housing", "Lifestyle", "Other"}

	ConsumerNeeds = []string{"Educational", "Financial Guidance", "Medical Info", "Lifestyle/Wellness", "Other"}

	TonesOfVoice = []string{"Professional", "Friendly", "Conversational", "Empathetic", "Other"}
)

// Options groups the option lists for clients building project forms.
type Options struct {
	CareAreas          []string `json:"care_areas"`
	TargetAudiences    []string `json:"target_audiences"`
	JourneyStages      []string `json:"journey_stages"`
	ArticleCategories  []string `json:"article_categories"`
	FormatTypes        []string `json:"format_types"`
	BusinessCategories []string `json:"business_categories"`
	ConsumerNeeds      []string `json:"consumer_needs"`
	TonesOfVoice       []string `json:"tones_of_voice"`
}

// AllOptions returns every option list.
func AllOptions() Options {
	return Options{
		CareAreas:          CareAreas,
		TargetAudiences:    TargetAudiences,
		JourneyStages:      JourneyStages,
		ArticleCategories:  ArticleCategories,
		FormatTypes:        FormatTypes,
		BusinessCategories: BusinessCategories,
		ConsumerNeeds:      ConsumerNeeds,
		TonesOfVoice:       TonesOfVoice,
	}
}

// CanonicalCareArea returns the known spelling of name, matched
// case-insensitively, and whether it is known.
func CanonicalCareArea(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, known := range CareAreas {
		if strings.EqualFold(known, name) {
			return known, true
		}
	}
	return name, false
}

// SplitCareAreas flattens entries that hold several comma-separated care
// areas and drops blanks.
func SplitCareAreas(entries []string) []string {
	var out []string
	for _, entry := range entries {
		for _, part := range strings.Split(entry, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
