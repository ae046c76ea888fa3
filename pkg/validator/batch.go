package validator

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome for one path of a batch.
type FileResult struct {
	Path   string  `json:"path"`
	Report *Report `json:"report,omitempty"`
	// Err is set when the file could not be read at all.
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// OK reports whether the file was read and produced no errors.
func (f FileResult) OK() bool { return f.Err == nil && f.Report != nil && f.Report.Valid() }

// BatchResult holds the outcomes of a batch in input order.
type BatchResult struct {
	RunID   string       `json:"run_id"`
	Results []FileResult `json:"results"`
	Passed  int          `json:"passed"`
	Failed  int          `json:"failed"`
}

// ValidateBatch validates paths concurrently. Results are aligned with
// paths. A canceled context stops scheduling new files and is returned.
func (v *Validator) ValidateBatch(ctx context.Context, paths []string, opts Options) (*BatchResult, error) {
	res := &BatchResult{
		RunID:   uuid.New().String(),
		Results: make([]FileResult, len(paths)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)

	var passed atomic.Int64
	for i, p := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fr := FileResult{Path: p}
			report, err := v.ValidateFile(gctx, p, opts)
			if err != nil {
				fr.Err = err
				fr.Error = err.Error()
			} else {
				fr.Report = report
			}
			if fr.OK() {
				passed.Add(1)
			}
			res.Results[i] = fr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Passed = int(passed.Load())
	res.Failed = len(paths) - res.Passed
	v.logger.InfoContext(ctx, "batch validated", "run_id", res.RunID,
		"files", len(paths), "passed", res.Passed, "failed", res.Failed)
	return res, nil
}
