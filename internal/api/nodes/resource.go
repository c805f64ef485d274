package nodes

import (
	"time"

	"property-hierarchy/internal/hierarchy"
)

// Resource is the JSON shape a node is serialized to. Type-specific fields
// appear only for the matching type.
type Resource struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Relationship  string    `json:"relationship_to_parent,omitempty"`
	ParentID      string    `json:"parent_id,omitempty"`
	Height        int       `json:"height"`
	ZipCode       *string   `json:"zip_code,omitempty"`
	MonthlyRent   *float64  `json:"monthly_rent,omitempty"`
	TenancyActive *bool     `json:"tenancy_active,omitempty"`
	MovedInAt     *string   `json:"moved_in_at,omitempty"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewResource maps a node to its response shape.
func NewResource(n *hierarchy.Node) Resource {
	r := Resource{
		ID:           n.ID,
		Name:         n.Name,
		Type:         string(n.Type),
		Relationship: n.Relationship,
		ParentID:     n.ParentID,
		Height:       n.Height,
		CreatedBy:    n.CreatedBy,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
	switch attrs := n.Attributes.(type) {
	case hierarchy.BuildingAttributes:
		r.ZipCode = &attrs.ZipCode
	case hierarchy.PropertyAttributes:
		r.MonthlyRent = &attrs.MonthlyRent
	case hierarchy.TenancyPeriodAttributes:
		r.TenancyActive = &attrs.Active
	case hierarchy.TenantAttributes:
		movedIn := attrs.MovedInAt.Format(moveInDateLayout)
		r.MovedInAt = &movedIn
	}
	return r
}

// NewResourceList maps a node slice to response shapes.
func NewResourceList(ns []*hierarchy.Node) []Resource {
	out := make([]Resource, 0, len(ns))
	for _, n := range ns {
		out = append(out, NewResource(n))
	}
	return out
}
