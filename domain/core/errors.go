package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input validation errors (fatal, reported before any permutation work)
	ErrInvalidStructure      = errors.New("structure is not a row-aligned table")
	ErrRowCountMismatch      = errors.New("structure row count does not match abundance table")
	ErrInconsistentHierarchy = errors.New("structure columns are not strictly nested")
	ErrInvalidLevel          = errors.New("permutation level outside valid range")
	ErrNegativeAbundance     = errors.New("abundance table contains negative entries")
	ErrInvalidDissimilarity  = errors.New("dissimilarity matrix is not symmetric non-negative")
	ErrSpeciesMismatch       = errors.New("dissimilarity dimension does not match species count")
	ErrEmptyTable            = errors.New("abundance table has no sites after filtering")

	// Configuration errors
	ErrUnknownFormula     = errors.New("unknown diversity formula")
	ErrUnknownOption      = errors.New("unknown rescaling option")
	ErrUnknownAlternative = errors.New("unknown alternative hypothesis")
	ErrUnknownMeanType    = errors.New("unknown mean type")
	ErrInvalidRepetitions = errors.New("repetition count must be positive")

	// Persistence errors
	ErrNotFound       = errors.New("resource not found")
	ErrResultNotFound = fmt.Errorf("%w: test result", ErrNotFound)
)

// Error constructors with context
func NewLevelError(level, ncolStructures int) error {
	return fmt.Errorf("%w: level %d with %d structure column(s), want 1..%d",
		ErrInvalidLevel, level, ncolStructures, ncolStructures+1)
}

func NewRowCountError(structureRows, tableRows int) error {
	return fmt.Errorf("%w: structure has %d rows, table has %d",
		ErrRowCountMismatch, structureRows, tableRows)
}

func NewNestingError(fineLevel int, fineGroup string, parents []string) error {
	return fmt.Errorf("%w: group %q at level %d maps to %d parent groups %v",
		ErrInconsistentHierarchy, fineGroup, fineLevel, len(parents), parents)
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidStructure) ||
		errors.Is(err, ErrRowCountMismatch) ||
		errors.Is(err, ErrInconsistentHierarchy) ||
		errors.Is(err, ErrInvalidLevel) ||
		errors.Is(err, ErrNegativeAbundance) ||
		errors.Is(err, ErrInvalidDissimilarity) ||
		errors.Is(err, ErrSpeciesMismatch) ||
		errors.Is(err, ErrEmptyTable)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrUnknownFormula) ||
		errors.Is(err, ErrUnknownOption) ||
		errors.Is(err, ErrUnknownAlternative) ||
		errors.Is(err, ErrUnknownMeanType) ||
		errors.Is(err, ErrInvalidRepetitions)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
