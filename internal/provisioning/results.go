package provisioning

import (
	"time"

	"github.com/imamik/dkimctl/internal/resource"
)

// Result records the outcome of one resource or handler.
type Result struct {
	Phase    string
	Kind     string
	Resource string
	Status   resource.Status
	Message  string
	Duration time.Duration
	Err      error
}

// Recap counts results by status.
type Recap struct {
	OK      int
	Changed int
	Skipped int
	Failed  int
}

// Total returns the number of results counted.
func (r Recap) Total() int {
	return r.OK + r.Changed + r.Skipped + r.Failed
}

// Results accumulates the results of a run in order.
type Results struct {
	items []Result
}

// NewResults creates an empty result list.
func NewResults() *Results {
	return &Results{}
}

// Add appends a result.
func (r *Results) Add(res Result) {
	r.items = append(r.items, res)
}

// All returns the results in the order they were recorded.
func (r *Results) All() []Result {
	return append([]Result(nil), r.items...)
}

// Filter returns the results with the given status.
func (r *Results) Filter(status resource.Status) []Result {
	var out []Result
	for _, res := range r.items {
		if res.Status == status {
			out = append(out, res)
		}
	}
	return out
}

// Recap counts the results by status.
func (r *Results) Recap() Recap {
	var recap Recap
	for _, res := range r.items {
		switch res.Status {
		case resource.StatusOK:
			recap.OK++
		case resource.StatusChanged:
			recap.Changed++
		case resource.StatusSkipped:
			recap.Skipped++
		case resource.StatusFailed:
			recap.Failed++
		}
	}
	return recap
}
