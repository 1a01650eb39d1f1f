package sweep

import "github.com/tabfm-labs/evalsweep/internal/domain"

// Result is the outcome of one sweep run.
type Result struct {
	SweepID     string
	Submissions []domain.Submission
}

// Failed returns the submissions that did not reach the scheduler.
func (r Result) Failed() []domain.Submission {
	var failed []domain.Submission
	for _, sub := range r.Submissions {
		if sub.Status == domain.SubmissionFailed {
			failed = append(failed, sub)
		}
	}
	return failed
}

// Summary counts submissions by status.
type Summary struct {
	Total         int
	Queued        int
	AlreadyQueued int
	Skipped       int
	Failed        int
}

func (r Result) Summary() Summary {
	s := Summary{Total: len(r.Submissions)}
	for _, sub := range r.Submissions {
		switch sub.Status {
		case domain.SubmissionQueued:
			s.Queued++
		case domain.SubmissionAlreadyQueued:
			s.AlreadyQueued++
		case domain.SubmissionSkipped:
			s.Skipped++
		case domain.SubmissionFailed:
			s.Failed++
		}
	}
	return s
}

// Ok reports whether every point either reached the scheduler or was
// deliberately skipped.
func (s Summary) Ok() bool {
	return s.Failed == 0
}
