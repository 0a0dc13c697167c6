package coverage

import (
	"context"
	"fmt"
)

// WorkerCounter counts active workers with an explicit service row for a ZIP.
type WorkerCounter interface {
	CountCoveringWorkers(ctx context.Context, zip string) (int, error)
}

// DBSource is the database coverage query over explicit worker-to-ZIP rows.
type DBSource struct {
	counter WorkerCounter
}

func NewDBSource(counter WorkerCounter) *DBSource {
	return &DBSource{counter: counter}
}

func (s *DBSource) ServiceCoverageInfo(ctx context.Context, zip string) (Info, error) {
	n, err := s.counter.CountCoveringWorkers(ctx, zip)
	if err != nil {
		return Info{}, fmt.Errorf("count covering workers: %w", err)
	}
	return Info{HasServiceCoverage: n > 0, WorkerCount: n}, nil
}
