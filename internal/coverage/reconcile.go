package coverage

import (
	"github.com/mountly/coverage-backend/internal/logging"
	"github.com/mountly/coverage-backend/internal/zcta"
)

// Reconcile merges the ZCTA and database outcomes for zip.
//
// The database is authoritative: coverage is granted only when it says so,
// and the worker count always comes from it. A valid ZCTA upgrades the source
// to "both". A geometric overlap the database does not confirm is reported as
// no coverage, usually because a drawn area was never expanded into ZIP rows.
// The returned Result has no timestamp.
func Reconcile(zip string, z Outcome[zcta.Validation], db Outcome[Info]) Result {
	var out Result
	if z.OK() {
		v := z.Value
		out.ZctaData = &v
	}
	if db.OK() {
		out.WorkerCount = db.Value.WorkerCount
	}

	dbCovered := db.OK() && db.Value.HasServiceCoverage
	zctaValid := z.OK() && z.Value.IsValid
	overlap := z.OK() && z.Value.GeometricOverlap

	switch {
	case dbCovered && zctaValid:
		out.HasServiceCoverage = true
		out.CoverageSource = SourceBoth
	case dbCovered:
		out.HasServiceCoverage = true
		out.CoverageSource = SourceDatabase
	case overlap:
		logging.LogWarn("coverage", "zip=%s geometric overlap (%d workers) without explicit ZIP rows; treating as uncovered",
			zip, z.Value.OverlapWorkers)
		out.CoverageSource = SourceNone
	default:
		out.CoverageSource = SourceNone
	}
	return out
}
