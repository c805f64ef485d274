package nodes

import (
	"fmt"
	"time"

	"property-hierarchy/internal/common"
	"property-hierarchy/internal/hierarchy"
	nodesvc "property-hierarchy/internal/services/nodes"
)

// NodeRequest is the wire shape for node creation. The type-specific
// fields are pointers so absence is distinguishable from a zero value;
// which ones are required depends on the declared type.
type NodeRequest struct {
	Name          string   `json:"name" binding:"required"`
	Type          string   `json:"type" binding:"required"`
	ParentID      string   `json:"parent_id"`
	Relationship  string   `json:"relationship_to_parent"`
	ZipCode       *string  `json:"zip_code"`
	MonthlyRent   *float64 `json:"monthly_rent"`
	TenancyActive *bool    `json:"tenancy_active"`
	MoveInDate    *string  `json:"move_in_date"`
}

// moveInDateLayout matches the date-only wire format.
const moveInDateLayout = "2006-01-02"

// ToCreateInput enforces the type-conditional required fields and builds
// the typed attributes variant before anything reaches the engine.
func (r *NodeRequest) ToCreateInput() (nodesvc.CreateInput, error) {
	nodeType, ok := hierarchy.ParseNodeType(r.Type)
	if !ok {
		return nodesvc.CreateInput{}, common.ErrInvalidInputError(
			fmt.Sprintf("unknown node type: %s", r.Type))
	}

	attrs, err := r.attributes(nodeType)
	if err != nil {
		return nodesvc.CreateInput{}, err
	}

	return nodesvc.CreateInput{
		Name:         r.Name,
		Type:         nodeType,
		ParentID:     r.ParentID,
		Relationship: r.Relationship,
		Attributes:   attrs,
	}, nil
}

func (r *NodeRequest) attributes(nodeType hierarchy.NodeType) (hierarchy.Attributes, error) {
	switch nodeType {
	case hierarchy.TypeCorporation:
		return hierarchy.CorporationAttributes{}, nil
	case hierarchy.TypeBuilding:
		if r.ZipCode == nil || *r.ZipCode == "" {
			return nil, common.ErrInvalidInputError("zip_code is required for Building nodes")
		}
		return hierarchy.BuildingAttributes{ZipCode: *r.ZipCode}, nil
	case hierarchy.TypeProperty:
		if r.MonthlyRent == nil {
			return nil, common.ErrInvalidInputError("monthly_rent is required for Property nodes")
		}
		if *r.MonthlyRent < 0 {
			return nil, common.ErrInvalidInputError("monthly_rent must not be negative")
		}
		return hierarchy.PropertyAttributes{MonthlyRent: *r.MonthlyRent}, nil
	case hierarchy.TypeTenancyPeriod:
		if r.TenancyActive == nil {
			return nil, common.ErrInvalidInputError("tenancy_active is required for Tenancy Period nodes")
		}
		return hierarchy.TenancyPeriodAttributes{Active: *r.TenancyActive}, nil
	case hierarchy.TypeTenant:
		if r.MoveInDate == nil || *r.MoveInDate == "" {
			return nil, common.ErrInvalidInputError("move_in_date is required for Tenant nodes")
		}
		movedIn, err := time.Parse(moveInDateLayout, *r.MoveInDate)
		if err != nil {
			return nil, common.ErrInvalidInputError(
				fmt.Sprintf("move_in_date must be a %s date", moveInDateLayout))
		}
		return hierarchy.TenantAttributes{MovedInAt: movedIn}, nil
	}
	return nil, common.ErrInvalidInputError(fmt.Sprintf("unknown node type: %s", nodeType))
}

// ChangeParentRequest is the wire shape for a re-parent operation.
type ChangeParentRequest struct {
	ParentID string `json:"parent_id" binding:"required"`
}
