package model

// JobState is the observable state of an asynchronous backtest job.
type JobState string

const (
	JobStatePending JobState = "PENDING"
	JobStateRunning JobState = "RUNNING"
	JobStateSuccess JobState = "SUCCESS"
	JobStateFailure JobState = "FAILURE"
)

// Terminal reports whether the state is final.
func (s JobState) Terminal() bool {
	return s == JobStateSuccess || s == JobStateFailure
}

// Job is one asynchronous backtest execution unit. Error is set only when
// the state is FAILURE.
type Job struct {
	JobID string   `json:"job_id"`
	State JobState `json:"status"`
	Error string   `json:"error,omitempty"`
}

// JobSubmitResponse is returned when a backtest job is accepted.
type JobSubmitResponse struct {
	JobID string `json:"job_id"`
}

// JobStatusResponse is the status polling response.
type JobStatusResponse struct {
	JobID  string   `json:"job_id"`
	Status JobState `json:"status"`
	Error  string   `json:"error,omitempty"`
}

// JobResultResponse is the result polling response. Result is present only
// after a successful run.
type JobResultResponse struct {
	JobID  string          `json:"job_id"`
	Status JobState        `json:"status"`
	Result *BacktestResult `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}
