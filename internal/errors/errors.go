// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrInvalidRepoFormat is returned when a repository reference is not in 'owner/name' format.
type ErrInvalidRepoFormat struct {
	Repo string
}

func (e *ErrInvalidRepoFormat) Error() string {
	return fmt.Sprintf("invalid repository format: %q, expected 'owner/name'", e.Repo)
}

// InvalidTimeframeError is returned for an unrecognized timeframe token.
type InvalidTimeframeError struct {
	Value string
}

func (e *InvalidTimeframeError) Error() string {
	return fmt.Sprintf("invalid timeframe: %q, expected one of last_day, last_week, last_month, last_year", e.Value)
}

// RepositoryNotAccessibleError is returned when GitHub refuses to hand out a repository.
type RepositoryNotAccessibleError struct {
	Repo   string
	Reason string
	Err    error
}

func (e *RepositoryNotAccessibleError) Error() string {
	return fmt.Sprintf("repository %s is not accessible: %s", e.Repo, e.Reason)
}

func (e *RepositoryNotAccessibleError) Unwrap() error {
	return e.Err
}

var (
	// ErrDependencyMissing is returned when a derived section is requested
	// before the sections it is built from exist.
	ErrDependencyMissing = errors.New("PRs and Issues must be loaded before generating TL;DR")

	// ErrReportNotFound is returned when a section write targets a report row that does not exist.
	ErrReportNotFound = errors.New("report not found")
)

// Pipeline stages.
const (
	StageFetch     = "fetch"
	StageSummarize = "summarize"
	StageAggregate = "aggregate"
)

// PipelineError is a section-scoped failure of an external collaborator or of persistence.
type PipelineError struct {
	Section string
	Stage   string
	Err     error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Stage, e.Section, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

var (
	// ErrGroupNotFound is returned for groups that do not exist or belong to another user.
	ErrGroupNotFound = errors.New("group not found")

	// ErrGroupReadOnly is returned when a system group is modified.
	ErrGroupReadOnly = errors.New("system groups cannot be modified")
)
