package hierarchy

import (
	"fmt"
	"time"

	"property-hierarchy/internal/common"
)

// NodeType identifies the kind of entity a node represents. The set is
// closed; nothing outside these five values is ever stored.
type NodeType string

const (
	TypeCorporation   NodeType = "Corporation"
	TypeBuilding      NodeType = "Building"
	TypeProperty      NodeType = "Property"
	TypeTenancyPeriod NodeType = "Tenancy Period"
	TypeTenant        NodeType = "Tenant"
)

// AllTypes lists every node type in root-to-leaf order.
var AllTypes = []NodeType{
	TypeCorporation,
	TypeBuilding,
	TypeProperty,
	TypeTenancyPeriod,
	TypeTenant,
}

// ParseNodeType converts a wire value into a NodeType.
func ParseNodeType(s string) (NodeType, bool) {
	t := NodeType(s)
	return t, t.Valid()
}

// Valid reports whether the type is one of the five known values.
func (t NodeType) Valid() bool {
	switch t {
	case TypeCorporation, TypeBuilding, TypeProperty, TypeTenancyPeriod, TypeTenant:
		return true
	}
	return false
}

// Attributes carries the fields that exist only for one node type. Each
// variant implements the interface for exactly its own type, so a Tenant
// can never hold a monthly rent.
type Attributes interface {
	NodeType() NodeType
}

// CorporationAttributes has no type-specific fields.
type CorporationAttributes struct{}

func (CorporationAttributes) NodeType() NodeType { return TypeCorporation }

// BuildingAttributes holds the fields required for Building nodes.
type BuildingAttributes struct {
	ZipCode string `json:"zip_code"`
}

func (BuildingAttributes) NodeType() NodeType { return TypeBuilding }

// PropertyAttributes holds the fields required for Property nodes.
type PropertyAttributes struct {
	MonthlyRent float64 `json:"monthly_rent"`
}

func (PropertyAttributes) NodeType() NodeType { return TypeProperty }

// TenancyPeriodAttributes holds the fields required for TenancyPeriod nodes.
type TenancyPeriodAttributes struct {
	Active bool `json:"tenancy_active"`
}

func (TenancyPeriodAttributes) NodeType() NodeType { return TypeTenancyPeriod }

// TenantAttributes holds the fields required for Tenant nodes.
type TenantAttributes struct {
	MovedInAt time.Time `json:"moved_in_at"`
}

func (TenantAttributes) NodeType() NodeType { return TypeTenant }

// Node is a single entity in the property hierarchy tree.
type Node struct {
	ID           string
	Name         string
	Type         NodeType
	ParentID     string // empty for roots
	Relationship string
	Height       int // derived, parent.Height+1 or 0
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Attributes   Attributes
}

// Clone returns a shallow copy of the node. Attribute variants are value
// types, so a shallow copy is a full copy.
func (n *Node) Clone() *Node {
	c := *n
	return &c
}

// ActiveTenancy reports whether the node is a tenancy period currently
// flagged active.
func (n *Node) ActiveTenancy() bool {
	attrs, ok := n.Attributes.(TenancyPeriodAttributes)
	return ok && attrs.Active
}

// CheckShape verifies the node's basic well-formedness before it enters
// the validation engine: known type, non-empty name, and attributes
// matching the declared type.
func (n *Node) CheckShape() error {
	if n.Name == "" {
		return common.ErrInvalidInputError("node name is required")
	}
	if len(n.Name) > common.MaxNameLength {
		return common.ErrInvalidInputError("node name exceeds maximum length")
	}
	if !n.Type.Valid() {
		return common.ErrInvalidInputError(fmt.Sprintf("unknown node type: %s", n.Type))
	}
	if n.Attributes == nil {
		return common.ErrInvalidInputError("node attributes are required")
	}
	if n.Attributes.NodeType() != n.Type {
		return common.ErrInvalidInputError(fmt.Sprintf(
			"attributes do not match node type %s", n.Type))
	}
	if attrs, ok := n.Attributes.(PropertyAttributes); ok && attrs.MonthlyRent < 0 {
		return common.ErrInvalidInputError("monthly rent must not be negative")
	}
	return nil
}
