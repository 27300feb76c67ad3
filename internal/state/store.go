// Package state keeps the history of link-check runs in SQLite.
//
// Each run records which catalog was checked and one result per URL, so that
// `railcat lint --cached` can report unreachable links without going online.
package state

import (
	"github.com/tc-opendata/railcat/pkg/core"
)

// Type aliases for the persisted types, which are defined in pkg/core.
type (
	// Store is an alias for core.Store.
	Store = core.Store

	// CheckRun is an alias for core.CheckRun.
	CheckRun = core.CheckRun

	// CheckRunStatus is an alias for core.CheckRunStatus.
	CheckRunStatus = core.CheckRunStatus
)

// Check run status values re-exported from core.
const (
	CheckRunRunning   = core.CheckRunRunning
	CheckRunCompleted = core.CheckRunCompleted
	CheckRunFailed    = core.CheckRunFailed
)
