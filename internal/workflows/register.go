package workflows

import "go.temporal.io/sdk/worker"

// Register attaches every workflow to a worker.
func Register(w worker.Worker) {
	w.RegisterWorkflow(BrochureIntakeWorkflow)
	w.RegisterWorkflow(BrochureImageWorkflow)
}
