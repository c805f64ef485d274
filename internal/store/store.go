// Package store holds the node collection behind the validation engine.
// It exposes point lookup and the filtered count/existence queries the
// capacity rule needs, plus an atomic mutation entry point so the
// check-then-act sequence {validate, insert/update} cannot interleave with
// a concurrent writer.
package store

import (
	"context"
	"fmt"
	"time"

	"property-hierarchy/internal/common"
	"property-hierarchy/internal/hierarchy"
)

func errBadRecord(id, msg string) error {
	return common.NewError(common.ErrSnapshotCorrupted, fmt.Sprintf("record %s: %s", id, msg))
}

// Tx is the mutation surface handed to the function passed to Mutate.
// Reads through a Tx observe writes staged earlier in the same mutation.
type Tx interface {
	hierarchy.StoreView

	Insert(n *hierarchy.Node) error
	Update(n *hierarchy.Node) error
}

// Store is the node collection consumed by the service layer.
type Store interface {
	hierarchy.StoreView

	// Children returns the direct children of a node, name-ordered.
	Children(parentID string) []*hierarchy.Node

	// All returns every node in the store.
	All() []*hierarchy.Node

	// Mutate runs fn under the store's mutation lock. Staged writes are
	// committed only if fn returns nil; on error nothing is applied.
	Mutate(ctx context.Context, fn func(tx Tx) error) error
}

// Record is the flat serializable form of a node, used for snapshots. The
// type-specific attributes collapse into nullable fields on disk and are
// rebuilt into their variant on load.
type Record struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	ParentID      string     `json:"parent_id,omitempty"`
	Relationship  string     `json:"relationship_to_parent,omitempty"`
	Height        int        `json:"height"`
	CreatedBy     string     `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ZipCode       *string    `json:"zip_code,omitempty"`
	MonthlyRent   *float64   `json:"monthly_rent,omitempty"`
	TenancyActive *bool      `json:"tenancy_active,omitempty"`
	MovedInAt     *time.Time `json:"moved_in_at,omitempty"`
}

// RecordFromNode flattens a node into its snapshot form.
func RecordFromNode(n *hierarchy.Node) Record {
	r := Record{
		ID:           n.ID,
		Name:         n.Name,
		Type:         string(n.Type),
		ParentID:     n.ParentID,
		Relationship: n.Relationship,
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
		r.MovedInAt = &attrs.MovedInAt
	}
	return r
}

// Node rebuilds the typed node from its snapshot form.
func (r Record) Node() (*hierarchy.Node, error) {
	nodeType, ok := hierarchy.ParseNodeType(r.Type)
	if !ok {
		return nil, errBadRecord(r.ID, "unknown node type "+r.Type)
	}

	var attrs hierarchy.Attributes
	switch nodeType {
	case hierarchy.TypeCorporation:
		attrs = hierarchy.CorporationAttributes{}
	case hierarchy.TypeBuilding:
		if r.ZipCode == nil {
			return nil, errBadRecord(r.ID, "building record without zip_code")
		}
		attrs = hierarchy.BuildingAttributes{ZipCode: *r.ZipCode}
	case hierarchy.TypeProperty:
		if r.MonthlyRent == nil {
			return nil, errBadRecord(r.ID, "property record without monthly_rent")
		}
		attrs = hierarchy.PropertyAttributes{MonthlyRent: *r.MonthlyRent}
	case hierarchy.TypeTenancyPeriod:
		if r.TenancyActive == nil {
			return nil, errBadRecord(r.ID, "tenancy period record without tenancy_active")
		}
		attrs = hierarchy.TenancyPeriodAttributes{Active: *r.TenancyActive}
	case hierarchy.TypeTenant:
		if r.MovedInAt == nil {
			return nil, errBadRecord(r.ID, "tenant record without moved_in_at")
		}
		attrs = hierarchy.TenantAttributes{MovedInAt: *r.MovedInAt}
	}

	return &hierarchy.Node{
		ID:           r.ID,
		Name:         r.Name,
		Type:         nodeType,
		ParentID:     r.ParentID,
		Relationship: r.Relationship,
		Height:       r.Height,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		Attributes:   attrs,
	}, nil
}
