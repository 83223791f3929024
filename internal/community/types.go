package community

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Value is a scalar that the API may send as a string, a number, or null.
type Value string

// UnmarshalJSON accepts strings, numbers, booleans, and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	*v = Value(data)
	return nil
}

// OrNA returns the value, or "N/A" when empty.
func (v Value) OrNA() string {
	if strings.TrimSpace(string(v)) == "" {
		return "N/A"
	}
	return string(v)
}

// Community is a senior living location.
type Community struct {
	ID                 int64  `json:"id"`
	Name               string `json:"community_name"`
	PrimaryDomain      string `json:"community_primary_domain"`
	Address            string `json:"address"`
	City               string `json:"city"`
	State              string `json:"state"`
	ZipCode            Value  `json:"zip_code"`
	AboutPage          string `json:"about_page"`
	ContactPage        string `json:"contact_page"`
	FloorPlanPage      string `json:"floor_plan_page"`
	DiningPage         string `json:"dining_page"`
	GalleryPage        string `json:"gallery_page"`
	HealthWellnessPage string `json:"health_wellness_page"`
}

// CareArea is a level of care offered by a community.
type CareArea struct {
	ID            int64  `json:"id"`
	CommunityID   int64  `json:"community_id"`
	Name          string `json:"care_area"`
	Description   string `json:"general_floor_plan_description"`
	StartingPrice Value  `json:"floor_plan_starting_at_price"`
	BillingPeriod string `json:"floor_plan_billing_period"`
	URL           string `json:"care_area_url"`
}

// Alias is an alternate community name.
type Alias struct {
	ID          int64  `json:"id"`
	CommunityID int64  `json:"community_id"`
	Alias       string `json:"alias"`
}

// FloorPlan is a unit layout within a care area.
type FloorPlan struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Bedrooms      Value  `json:"bedrooms"`
	Bathrooms     Value  `json:"bathrooms"`
	SquareFootage Value  `json:"square_footage"`
}

// Service is a service, activity, or amenity available in a care area.
type Service struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
}
