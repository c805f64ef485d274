// Package policy decides what an acting user may do to nodes. Rules are an
// ordered chain with documented precedence: the admin override is evaluated
// first, then per-action rules. The actor is always an explicit parameter.
package policy

import (
	"fmt"

	"property-hierarchy/internal/common"
)

// Action is an operation on nodes subject to authorization.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actor is the authenticated user a decision is made for.
type Actor struct {
	ID      string
	IsAdmin bool
}

// decision is the outcome of one rule: allow, deny, or pass to the next rule.
type decision int

const (
	pass decision = iota
	allow
	deny
)

type rule struct {
	name string
	eval func(actor Actor, action Action) decision
}

// chain holds the rules in evaluation order.
var chain = []rule{
	{
		// Admins may do everything; evaluated before any per-action rule.
		name: "admin-override",
		eval: func(actor Actor, _ Action) decision {
			if actor.IsAdmin {
				return allow
			}
			return pass
		},
	},
	{
		// Any authenticated user may read.
		name: "read-for-all",
		eval: func(_ Actor, action Action) decision {
			if action == ActionView {
				return allow
			}
			return pass
		},
	},
	{
		// Mutations are admin-only; reaching this rule means the actor is
		// not an admin.
		name: "mutations-admin-only",
		eval: func(_ Actor, action Action) decision {
			switch action {
			case ActionCreate, ActionUpdate, ActionDelete:
				return deny
			}
			return pass
		},
	},
}

// denialMessages mirrors the per-action wording surfaced to clients.
var denialMessages = map[Action]string{
	ActionCreate: "Only admins can create nodes.",
	ActionUpdate: "Only admins can update nodes.",
	ActionDelete: "Only admins can delete nodes.",
}

// Authorize walks the rule chain and returns nil if the action is allowed,
// or a Forbidden error carrying the action-specific message.
func Authorize(actor Actor, action Action) error {
	for _, r := range chain {
		switch r.eval(actor, action) {
		case allow:
			return nil
		case deny:
			msg, ok := denialMessages[action]
			if !ok {
				msg = fmt.Sprintf("Action %s is not permitted.", action)
			}
			return common.ErrForbiddenError(msg)
		}
	}
	// No rule claimed the action; deny by default.
	return common.ErrForbiddenError(fmt.Sprintf("Action %s is not permitted.", action))
}
