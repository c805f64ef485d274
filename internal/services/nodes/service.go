// Package nodes wires the access policy, the validation engine, and the
// node store into the operations the API exposes. Validation and the
// following write always run inside one store mutation, so the capacity
// checks can never act on state another writer changed in between.
package nodes

import (
	"context"
	"fmt"
	"log"
	"time"

	"property-hierarchy/internal/common"
	"property-hierarchy/internal/hierarchy"
	"property-hierarchy/internal/policy"
	"property-hierarchy/internal/store"
)

// Service implements the node operations
type Service struct {
	store  store.Store
	engine *hierarchy.Engine
}

// NewService creates a new node service
func NewService(s store.Store) *Service {
	return &Service{
		store:  s,
		engine: hierarchy.NewEngine(),
	}
}

// CreateInput is the parsed, shape-checked input for a create operation.
// Type-conditional required fields are enforced by the request layer; the
// attributes variant arrives already matched to the type.
type CreateInput struct {
	Name         string
	Type         hierarchy.NodeType
	ParentID     string
	Relationship string
	Attributes   hierarchy.Attributes
}

// Create validates and persists a new node on behalf of the actor.
func (s *Service) Create(ctx context.Context, actor policy.Actor, in CreateInput) (*hierarchy.Node, error) {
	if err := policy.Authorize(actor, policy.ActionCreate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	candidate := &hierarchy.Node{
		ID:           common.GenerateID(),
		Name:         in.Name,
		Type:         in.Type,
		ParentID:     in.ParentID,
		Relationship: in.Relationship,
		CreatedBy:    actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
		Attributes:   in.Attributes,
	}

	var created *hierarchy.Node
	err := s.store.Mutate(ctx, func(tx store.Tx) error {
		validated, err := s.engine.Validate(tx, candidate)
		if err != nil {
			return err
		}
		if err := tx.Insert(validated); err != nil {
			return err
		}
		created = validated
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("nodes: created %s %q under %q (height %d) by %s",
		created.Type, created.Name, created.ParentID, created.Height, actor.ID)
	return created, nil
}

// ChangeParent re-parents an existing node. The full validation pipeline
// runs against the proposed parent; on failure the node keeps its prior
// state.
func (s *Service) ChangeParent(ctx context.Context, actor policy.Actor, nodeID, newParentID string) (*hierarchy.Node, error) {
	if err := policy.Authorize(actor, policy.ActionUpdate); err != nil {
		return nil, err
	}
	if newParentID == "" {
		return nil, common.ErrInvalidInputError("parent_id is required")
	}

	var updated *hierarchy.Node
	err := s.store.Mutate(ctx, func(tx store.Tx) error {
		current, ok := tx.FindByID(nodeID)
		if !ok {
			return common.ErrNotFoundError(fmt.Sprintf("node not found: %s", nodeID))
		}

		proposed := current.Clone()
		proposed.ParentID = newParentID

		validated, err := s.engine.Validate(tx, proposed)
		if err != nil {
			return err
		}
		validated.UpdatedAt = time.Now().UTC()
		if err := tx.Update(validated); err != nil {
			return err
		}
		updated = validated
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("nodes: moved %s %q to parent %q (height %d) by %s",
		updated.Type, updated.Name, updated.ParentID, updated.Height, actor.ID)
	return updated, nil
}

// Children returns the direct children of a node.
func (s *Service) Children(ctx context.Context, actor policy.Actor, nodeID string) ([]*hierarchy.Node, error) {
	if err := policy.Authorize(actor, policy.ActionView); err != nil {
		return nil, err
	}
	if _, ok := s.store.FindByID(nodeID); !ok {
		return nil, common.ErrNotFoundError(fmt.Sprintf("node not found: %s", nodeID))
	}
	return s.store.Children(nodeID), nil
}

// Get returns a single node.
func (s *Service) Get(ctx context.Context, actor policy.Actor, nodeID string) (*hierarchy.Node, error) {
	if err := policy.Authorize(actor, policy.ActionView); err != nil {
		return nil, err
	}
	n, ok := s.store.FindByID(nodeID)
	if !ok {
		return nil, common.ErrNotFoundError(fmt.Sprintf("node not found: %s", nodeID))
	}
	return n, nil
}
