package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// TestID identifies one permutation-test run.
	TestID ID
	// SiteID labels one row of the abundance and structure tables.
	SiteID string
	// SpeciesID labels one column of the abundance table.
	SpeciesID string
	// GroupID labels one group in a structure column.
	GroupID string
)

func (id TestID) String() string    { return ID(id).String() }
func (id SiteID) String() string    { return string(id) }
func (id SpeciesID) String() string { return string(id) }
func (id GroupID) String() string   { return string(id) }

// NewTestID mints a TestID for a fresh run.
func NewTestID() TestID {
	return TestID(NewID())
}

// ParseTestID parses a string into TestID
func ParseTestID(s string) (TestID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("test ID cannot be empty")
	}
	return TestID(s), nil
}
