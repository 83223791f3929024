package community

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds the per-care-area sub-requests in Details.
const maxConcurrentFetches = 4

// CareAreaDetails is a care area with its floor plans and amenities.
type CareAreaDetails struct {
	CareArea   CareArea    `json:"care_area"`
	FloorPlans []FloorPlan `json:"floor_plans"`
	Services   []Service   `json:"services"`
}

// Details is everything a community revision prompt needs to know about a
// community.
type Details struct {
	Community Community         `json:"community"`
	Aliases   []Alias           `json:"aliases"`
	CareAreas []CareAreaDetails `json:"care_area_details"`
	// Available lists the names of every care area the community offers.
	Available []string `json:"community_care_areas"`
	// Selected lists the care areas requested by the caller.
	Selected []string `json:"selected_care_areas"`
	// Missing lists selected care areas the community does not offer.
	Missing []string `json:"missing_care_areas"`
}

// Details assembles the community, its aliases, and the requested care areas
// with their floor plans and amenities. An empty selected list includes every
// care area. Matching of care area names is case-insensitive.
func (c *Client) Details(ctx context.Context, communityID int64, selected []string) (*Details, error) {
	var (
		community *Community
		aliases   []Alias
		areas     []CareArea
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		community, err = c.Community(gctx, communityID)
		return err
	})
	g.Go(func() error {
		var err error
		aliases, err = c.Aliases(gctx, communityID)
		return err
	})
	g.Go(func() error {
		var err error
		areas, err = c.CareAreas(gctx, communityID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &Details{
		Community: *community,
		Aliases:   aliases,
		Selected:  append([]string{}, selected...),
		Available: make([]string, 0, len(areas)),
	}
	for _, a := range areas {
		d.Available = append(d.Available, a.Name)
	}
	d.Missing = MissingCareAreas(selected, d.Available)

	included := filterCareAreas(areas, selected)
	d.CareAreas = make([]CareAreaDetails, len(included))

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, area := range included {
		d.CareAreas[i].CareArea = area
		g.Go(func() error {
			plans, err := c.FloorPlans(gctx, area.ID)
			if err != nil {
				return err
			}
			d.CareAreas[i].FloorPlans = plans
			return nil
		})
		g.Go(func() error {
			services, err := c.Services(gctx, area.ID)
			if err != nil {
				return err
			}
			d.CareAreas[i].Services = services
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return d, nil
}

// MissingCareAreas returns the entries of selected that do not appear in
// available, compared case-insensitively, in selected order.
func MissingCareAreas(selected, available []string) []string {
	offered := make(map[string]struct{}, len(available))
	for _, name := range available {
		offered[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	missing := []string{}
	for _, name := range selected {
		if _, ok := offered[strings.ToLower(strings.TrimSpace(name))]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func filterCareAreas(areas []CareArea, selected []string) []CareArea {
	if len(selected) == 0 {
		return areas
	}
	wanted := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		wanted[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	var out []CareArea
	for _, a := range areas {
		if _, ok := wanted[strings.ToLower(strings.TrimSpace(a.Name))]; ok {
			out = append(out, a)
		}
	}
	return out
}

// AliasNames returns the alias strings.
func (d *Details) AliasNames() []string {
	out := make([]string, 0, len(d.Aliases))
	for _, a := range d.Aliases {
		if a.Alias != "" {
			out = append(out, a.Alias)
		}
	}
	return out
}

// Text renders the details block spliced into community revision prompts.
func (d *Details) Text() string {
	var b strings.Builder
	c := d.Community

	aliases := "None"
	if names := d.AliasNames(); len(names) > 0 {
		aliases = strings.Join(names, ", ")
	}

	fmt.Fprintf(&b, "- Name: %s\n", c.Name)
	fmt.Fprintf(&b, "- Primary Domain: %s\n", c.PrimaryDomain)
	fmt.Fprintf(&b, "- Location: %s, %s, %s, %s\n", c.City, c.State, c.Address, c.ZipCode.OrNA())
	fmt.Fprintf(&b, "- Aliases: %s\n", aliases)
	b.WriteString("- Page URLs:\n")
	fmt.Fprintf(&b, "    - Home Page: %s\n", c.PrimaryDomain)
	fmt.Fprintf(&b, "    - About Page: %s\n", c.AboutPage)
	fmt.Fprintf(&b, "    - Contact Page: %s\n", c.ContactPage)
	fmt.Fprintf(&b, "    - Floor Plan Page: %s\n", c.FloorPlanPage)
	fmt.Fprintf(&b, "    - Dining Page: %s\n", c.DiningPage)
	fmt.Fprintf(&b, "    - Gallery Page: %s\n", c.GalleryPage)
	fmt.Fprintf(&b, "    - Health & Wellness Page: %s\n", c.HealthWellnessPage)
	b.WriteString("\nCare areas, amenities, and services available at this community:\n")
	for _, area := range d.CareAreas {
		b.WriteString(area.Text())
	}
	return b.String()
}

// Text renders one care area with its floor plans and amenities grouped by type.
func (a CareAreaDetails) Text() string {
	var b strings.Builder
	ca := a.CareArea

	b.WriteString("\n===================================================\n")
	fmt.Fprintf(&b, "Care Area: %s\n", Value(ca.Name).OrNA())
	b.WriteString("---------------------------------------------------\n")
	fmt.Fprintf(&b, "Description:\n%s\n\n", Value(ca.Description).OrNA())
	fmt.Fprintf(&b, "Starting Price: $%s %s\n", ca.StartingPrice.OrNA(), Value(ca.BillingPeriod).OrNA())
	fmt.Fprintf(&b, "Care Area URL: %s\n\n", Value(ca.URL).OrNA())
	b.WriteString("Available Floor Plans:\n")
	if len(a.FloorPlans) == 0 {
		b.WriteString("  - None\n")
	}
	for _, fp := range a.FloorPlans {
		fmt.Fprintf(&b, "  - %s: %s bed / %s bath, %s sq ft\n",
			Value(fp.Name).OrNA(), fp.Bedrooms.OrNA(), fp.Bathrooms.OrNA(), fp.SquareFootage.OrNA())
	}

	if len(a.Services) > 0 {
		b.WriteString("\nServices / Activities / Amenities:\n")
		var order []string
		byType := make(map[string][]string)
		for _, s := range a.Services {
			kind := strings.TrimSpace(s.Type)
			if kind == "" {
				kind = "Other"
			}
			if _, seen := byType[kind]; !seen {
				order = append(order, kind)
			}
			byType[kind] = append(byType[kind], Value(s.Description).OrNA())
		}
		for _, kind := range order {
			fmt.Fprintf(&b, "\n  %s:\n", titleCase(kind))
			for _, desc := range byType[kind] {
				fmt.Fprintf(&b, "    - %s\n", desc)
			}
		}
	}
	return b.String()
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
