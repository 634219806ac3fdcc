package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// CampaignRequirements describes the creator a brand is looking for.
// Every field is optional; an unset field neither filters nor scores.
type CampaignRequirements struct {
	Category        *string  `json:"category,omitempty"`
	MinSubscribers  *int64   `json:"min_subscribers,omitempty"`
	MinAverageViews *int64   `json:"min_average_views,omitempty"`
	Platforms       []string `json:"platforms,omitempty"`
	Location        *string  `json:"location,omitempty"`
}

// Value implements the driver.Valuer interface for CampaignRequirements
func (r CampaignRequirements) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements the sql.Scanner interface for CampaignRequirements
func (r *CampaignRequirements) Scan(value any) error {
	if value == nil {
		*r = CampaignRequirements{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CampaignRequirements", value)
	}

	return json.Unmarshal(bytes, r)
}

// HasCategory reports whether the category criterion is set
func (r CampaignRequirements) HasCategory() bool {
	return r.Category != nil && strings.TrimSpace(*r.Category) != ""
}

// HasLocation reports whether the location criterion is set
func (r CampaignRequirements) HasLocation() bool {
	return r.Location != nil && strings.TrimSpace(*r.Location) != ""
}

// Normalized returns a copy with blank strings cleared and platforms
// trimmed and de-duplicated in first-seen order.
func (r CampaignRequirements) Normalized() CampaignRequirements {
	out := CampaignRequirements{
		MinSubscribers:  copyInt64(r.MinSubscribers),
		MinAverageViews: copyInt64(r.MinAverageViews),
	}
	if r.HasCategory() {
		v := strings.TrimSpace(*r.Category)
		out.Category = &v
	}
	if r.HasLocation() {
		v := strings.TrimSpace(*r.Location)
		out.Location = &v
	}
	for _, p := range r.Platforms {
		p = strings.TrimSpace(p)
		if p == "" || slices.Contains(out.Platforms, p) {
			continue
		}
		out.Platforms = append(out.Platforms, p)
	}
	return out
}

// Validate rejects negative minima
func (r CampaignRequirements) Validate() error {
	if r.MinSubscribers != nil && *r.MinSubscribers < 0 {
		return fmt.Errorf("min_subscribers must not be negative")
	}
	if r.MinAverageViews != nil && *r.MinAverageViews < 0 {
		return fmt.Errorf("min_average_views must not be negative")
	}
	return nil
}

// Merge returns r with every set field of override applied on top.
func (r CampaignRequirements) Merge(override CampaignRequirements) CampaignRequirements {
	out := r
	if override.Category != nil {
		out.Category = override.Category
	}
	if override.MinSubscribers != nil {
		out.MinSubscribers = override.MinSubscribers
	}
	if override.MinAverageViews != nil {
		out.MinAverageViews = override.MinAverageViews
	}
	if override.Platforms != nil {
		out.Platforms = override.Platforms
	}
	if override.Location != nil {
		out.Location = override.Location
	}
	return out.Normalized()
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
