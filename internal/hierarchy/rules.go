package hierarchy

import "property-hierarchy/internal/common"

// legalParent maps each child type to the single parent type it may be
// attached under. Corporation is absent: corporations are roots.
var legalParent = map[NodeType]NodeType{
	TypeBuilding:      TypeCorporation,
	TypeProperty:      TypeBuilding,
	TypeTenancyPeriod: TypeProperty,
	TypeTenant:        TypeTenancyPeriod,
}

// IsLegalParent decides whether childType may be attached under a parent of
// parentType. hasParent=false means the node is proposed as a root, which is
// legal only for corporations. Pure function over the closed type set.
func IsLegalParent(childType, parentType NodeType, hasParent bool) bool {
	if !hasParent {
		return childType == TypeCorporation
	}
	want, ok := legalParent[childType]
	return ok && parentType == want
}

// StoreView is the read surface the rules need from the node store. The
// store package implements it; tests substitute their own.
type StoreView interface {
	FindByID(id string) (*Node, bool)
	CountWhere(parentID string, t NodeType, active *bool) int
	ExistsWhere(parentID string, t NodeType, active bool, excludeID string) bool
}

// CheckCapacity enforces the sibling-count constraints for the candidate
// node against the view's current state:
//
//   - at most one active tenancy period under a property, the candidate's
//     own id excluded so re-parenting an already persisted period does not
//     collide with itself
//   - at most 4 tenants under a tenancy period
//
// Other types carry no capacity constraint. Read-only against the view.
func CheckCapacity(view StoreView, n *Node) error {
	switch n.Type {
	case TypeTenancyPeriod:
		if !n.ActiveTenancy() {
			return nil
		}
		if view.ExistsWhere(n.ParentID, TypeTenancyPeriod, true, n.ID) {
			return common.NewError(common.ErrExclusiveActiveTenancy,
				"Only one active tenancy period is allowed per property")
		}
	case TypeTenant:
		if view.CountWhere(n.ParentID, TypeTenant, nil) >= common.MaxTenantsPerPeriod {
			return common.NewError(common.ErrTenantCapacityExceeded,
				"Maximum of 4 tenants allowed per tenancy period")
		}
	}
	return nil
}
