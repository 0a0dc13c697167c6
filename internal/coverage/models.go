package coverage

import "github.com/mountly/coverage-backend/internal/zcta"

// Source names which signal produced a coverage verdict.
type Source string

const (
	SourceBoth     Source = "both"
	SourceDatabase Source = "database"
	SourceZcta     Source = "zcta"
	SourceNone     Source = "none"
)

// Info is the answer of the authoritative database query: whether any active
// worker explicitly serves the ZIP, and how many do.
type Info struct {
	HasServiceCoverage bool `json:"hasServiceCoverage"`
	WorkerCount        int  `json:"workerCount"`
}

// Result is the reconciled coverage verdict for one ZIP.
//
// SourceZcta is never produced; geometry alone does not unlock booking. It is
// kept so clients matching on the full set of values still compile.
type Result struct {
	HasServiceCoverage bool             `json:"hasServiceCoverage"`
	WorkerCount        int              `json:"workerCount"`
	CoverageSource     Source           `json:"coverageSource"`
	ZctaData           *zcta.Validation `json:"zctaData,omitempty"`
	Timestamp          int64            `json:"_timestamp"`
}
