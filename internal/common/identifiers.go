package common

import (
	"time"

	"github.com/google/uuid"
)

// NodeID represents a unique node identifier in the hierarchy
type NodeID string

// UserID represents a unique user identifier
type UserID string

// GenerateID generates a unique identifier
func GenerateID() string {
	return uuid.NewString()
}

// Timestamp represents a point in time
type Timestamp time.Time

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now().UTC())
}

// Unix returns the Unix timestamp
func (t Timestamp) Unix() int64 {
	return time.Time(t).Unix()
}

// String returns a string representation of the timestamp
func (t Timestamp) String() string {
	return time.Time(t).Format(time.RFC3339)
}

// Constants for system limits
const (
	MaxNameLength         = 255
	MaxRelationshipLength = 255
	MaxTenantsPerPeriod   = 4
	DefaultTimeout        = 30 * time.Second
)
