package scraper

import (
	log "github.com/sirupsen/logrus"
)

// Kind classifies a progress event
type Kind string

const (
	KindPageStarted   Kind = "page_started"
	KindPageCompleted Kind = "page_completed"
	KindRetry         Kind = "retry"
	KindPageReloaded  Kind = "page_reloaded"
	KindWarning       Kind = "warning"
	KindTerminated    Kind = "terminated"
)

// Event is a progress notification from a running scrape
type Event struct {
	Kind    Kind
	Page    int
	Message string
	// Records is the running total of emitted listings
	Records int
	Err     error
}

// Reporter receives progress events. Report is called from the scraping
// goroutine and should return quickly.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to the Reporter interface
type ReporterFunc func(Event)

// Report calls f(e)
func (f ReporterFunc) Report(e Event) { f(e) }

// LogReporter writes events to the process logger
type LogReporter struct{}

// Report logs e at info level, or warn level for warnings
func (LogReporter) Report(e Event) {
	entry := log.WithFields(log.Fields{
		"event":   string(e.Kind),
		"page":    e.Page,
		"records": e.Records,
	})
	if e.Err != nil {
		entry = entry.WithError(e.Err)
	}

	if e.Kind == KindWarning {
		entry.Warn(e.Message)
		return
	}
	entry.Info(e.Message)
}

// MultiReporter fans events out to every non-nil reporter in order
func MultiReporter(reporters ...Reporter) Reporter {
	var rs []Reporter
	for _, r := range reporters {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return ReporterFunc(func(e Event) {
		for _, r := range rs {
			r.Report(e)
		}
	})
}

var discard = ReporterFunc(func(Event) {})
