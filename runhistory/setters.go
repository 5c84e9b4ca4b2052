package runhistory

import "time"

// UpdateSetter changes one aspect of a run before it is saved.
type UpdateSetter func(*ScenarioRun) error

// SetReportName returns an UpdateSetter that links the run to a report file.
func SetReportName(name string) UpdateSetter {
	return func(r *ScenarioRun) error {
		r.ReportName = name
		return nil
	}
}

// SetErrorMessage returns an UpdateSetter that replaces the failure text.
func SetErrorMessage(msg string) UpdateSetter {
	return func(r *ScenarioRun) error {
		r.ErrorMessage = msg
		return nil
	}
}

// SetCompleted returns an UpdateSetter that finishes a running run.
func SetCompleted(status Status, errorMessage string, at time.Time) UpdateSetter {
	return func(r *ScenarioRun) error {
		return r.Complete(status, errorMessage, at)
	}
}
