package domain

// Submission statuses.
const (
	SubmissionQueued        = "queued"
	SubmissionAlreadyQueued = "already_queued"
	SubmissionSkipped       = "skipped"
	SubmissionFailed        = "failed"
)

// SweepPoint is one cell of the task x strategy grid, the unit of
// submission. Strategy is empty when strategy sweeping is disabled.
type SweepPoint struct {
	Task     TaskID
	Strategy string
}

// JobName is the scheduler job name for the point: the task identifier,
// unchanged.
func (p SweepPoint) JobName() string {
	return string(p.Task)
}

// Submission records the outcome of submitting one sweep point. Err is
// nil unless Status is SubmissionFailed.
type Submission struct {
	Point     SweepPoint
	Scheduler string
	Status    string
	Err       error
}
