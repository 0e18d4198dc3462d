package ports

import (
	"context"

	"divnest/domain/core"
	"divnest/domain/randtest"
)

// ResultRepository persists finished test results.
type ResultRepository interface {
	SaveResult(ctx context.Context, result *randtest.TestResult) error
	GetResult(ctx context.Context, id core.TestID) (*randtest.TestResult, error)
	ListResults(ctx context.Context, limit int) ([]*randtest.TestResult, error)
}
