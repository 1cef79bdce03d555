package framework

import (
	"time"

	"casegraph/internal/model"
)

const (
	day           = 24 * time.Hour
	secondsPerDay = 24 * 60 * 60
)

// timeline summarises date-ordered events. Significance must already be
// applied to them.
func (a *Analyzer) timeline(events []*model.Event) TimelineAnalysis {
	out := TimelineAnalysis{
		TotalEvents: len(events),
		Clusters:    []Cluster{},
	}
	if len(events) == 0 {
		return out
	}

	earliest, latest := events[0].Date, events[len(events)-1].Date
	out.Earliest = &earliest
	out.Latest = &latest
	out.SpanDays = int((latest.Unix() - earliest.Unix()) / secondsPerDay)

	for _, e := range events {
		if max(e.CriminalSignificance, e.CommercialSignificance) >= a.opts.SignificantThreshold {
			out.SignificantEvents++
		}
	}
	out.Clusters = clusters(events, time.Duration(a.opts.ClusterWindowDays)*day)
	return out
}

// clusters groups consecutive events no further apart than window. Runs of a
// single event are not reported.
func clusters(events []*model.Event, window time.Duration) []Cluster {
	out := []Cluster{}
	if window <= 0 {
		return out
	}
	var current *Cluster
	flush := func() {
		if current != nil && len(current.Events) > 1 {
			out = append(out, *current)
		}
		current = nil
	}
	for _, e := range events {
		if current != nil && e.Date.Sub(current.End) <= window {
			current.End = e.Date
			current.Events = append(current.Events, e.ID)
			continue
		}
		flush()
		current = &Cluster{Start: e.Date, End: e.Date, Events: []string{e.ID}}
	}
	flush()
	return out
}
