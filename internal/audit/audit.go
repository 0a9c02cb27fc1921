package audit

import (
	"context"
	"errors"
	"time"
)

// Record is the audit entry of one gate run.
type Record struct {
	RunID       string
	Branch      string
	OldRevision string
	NewRevision string
	State       string
	ExitCode    int
	Violations  int
	Report      string
	CreatedAt   time.Time
}

// Sink stores audit records. Sinks run after the decision and never change it.
type Sink interface {
	Record(ctx context.Context, rec Record) error
	Close() error
}

// Multi fans a record out to several sinks and joins their errors.
type Multi []Sink

func (m Multi) Record(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
