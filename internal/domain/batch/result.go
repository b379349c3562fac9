// Package batch describes per-record outcomes of bulk recipe operations.
package batch

// ItemStatus is the processing outcome of a single record.
type ItemStatus string

// Record status values.
const (
	StatusOK      ItemStatus = "ok"
	StatusSkipped ItemStatus = "skipped"
	StatusError   ItemStatus = "error"
)

// Result is the outcome of one record. Index is its position in the input.
type Result struct {
	index  int
	id     string
	status ItemStatus
	err    error
}

// NewOK records an inserted record.
func NewOK(index int, id string) Result {
	return Result{index: index, id: id, status: StatusOK}
}

// NewSkipped records a record left out because its id already exists.
func NewSkipped(index int, id string, err error) Result {
	return Result{index: index, id: id, status: StatusSkipped, err: err}
}

// NewError records a rejected record. id is empty when the record had none.
func NewError(index int, id string, err error) Result {
	return Result{index: index, id: id, status: StatusError, err: err}
}

// Index returns the record position in the input.
func (r Result) Index() int { return r.index }

// ID returns the record id, if it had one.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Count tallies results by status.
func Count(results []Result) map[ItemStatus]int {
	out := make(map[ItemStatus]int, 3)
	for _, r := range results {
		out[r.status]++
	}
	return out
}
