package hierarchy

import "property-hierarchy/internal/common"

// Engine runs the full validation pipeline for node mutations. It is
// stateless; every call re-validates against the view it is handed, so a
// stale earlier decision can never leak into a later mutation.
type Engine struct{}

// NewEngine creates a new validation engine
func NewEngine() *Engine {
	return &Engine{}
}

// Validate checks a proposed node state (a new node, or an existing node
// with its parent_id rewritten) and returns a copy with the derived height
// populated, ready for persistence. Pipeline order is fixed:
//
//  1. resolve the parent; a dangling parent_id fails with ErrParentNotFound
//  2. type-chain rule; failure is terminal, capacity is never consulted
//  3. capacity rule
//  4. height derivation from the resolved parent
//
// The view must be a consistent snapshot for the duration of the call; the
// store's mutation lock provides that when validation runs inside a commit.
func (e *Engine) Validate(view StoreView, n *Node) (*Node, error) {
	if err := n.CheckShape(); err != nil {
		return nil, err
	}

	var parent *Node
	if n.ParentID != "" {
		p, ok := view.FindByID(n.ParentID)
		if !ok {
			return nil, common.ErrParentNotFoundError(n.ParentID)
		}
		parent = p
	}

	var parentType NodeType
	if parent != nil {
		parentType = parent.Type
	}
	if !IsLegalParent(n.Type, parentType, parent != nil) {
		return nil, common.NewError(common.ErrInvalidParentChild,
			"Invalid parent-child relationship")
	}

	if err := CheckCapacity(view, n); err != nil {
		return nil, err
	}

	validated := n.Clone()
	if parent != nil {
		validated.Height = parent.Height + 1
	} else {
		validated.Height = 0
	}
	return validated, nil
}
