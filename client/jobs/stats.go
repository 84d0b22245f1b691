package jobs

import "gigflow/client"

// Stats are the dashboard aggregates, recomputed from the full list on
// every refresh rather than merged incrementally.
type Stats struct {
	Pending   int
	Active    int
	Completed int
	PaidTotal int
}

// ComputeStats derives aggregates from a job list.
func ComputeStats(list []client.Job) Stats {
	var s Stats
	for _, job := range list {
		switch job.Status {
		case client.JobPending:
			s.Pending++
		case client.JobActive:
			s.Active++
		case client.JobCompleted:
			s.Completed++
		}
		if job.Paid && job.Price != nil {
			s.PaidTotal += *job.Price
		}
	}
	return s
}

// Stats computes aggregates over the current cache.
func (m *Model) Stats() Stats {
	return ComputeStats(m.Jobs())
}
