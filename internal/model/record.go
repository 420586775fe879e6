package model

import "time"

// ResultRecord is the persisted result of checking one site.
type ResultRecord struct {
	// Site is the prepared seed URL.
	Site string `json:"site"`

	// Outcome is the crawl result for Site.
	Outcome CrawlOutcome `json:"outcome"`

	// Timestamp is when the outcome was recorded, truncated to the second.
	Timestamp time.Time `json:"timestamp"`
}

// NewResultRecord creates a record stamped at the given time.
// Sub-second precision is dropped so that records round-trip through the
// CSV Time and Date columns unchanged.
func NewResultRecord(site string, outcome CrawlOutcome, at time.Time) ResultRecord {
	return ResultRecord{
		Site:      site,
		Outcome:   outcome,
		Timestamp: at.Truncate(time.Second),
	}
}

// ResultLog is the ordered, append-only sequence of records for a batch.
// It is owned by a single runner and is not safe for concurrent use.
type ResultLog struct {
	records []ResultRecord
}

// NewResultLog creates an empty ResultLog.
func NewResultLog() *ResultLog {
	return &ResultLog{records: make([]ResultRecord, 0)}
}

// Append adds a record to the end of the log.
func (l *ResultLog) Append(record ResultRecord) {
	l.records = append(l.records, record)
}

// Records returns a copy of all records in append order.
func (l *ResultLog) Records() []ResultRecord {
	out := make([]ResultRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records.
func (l *ResultLog) Len() int {
	return len(l.records)
}

// Last returns the most recent record.
func (l *ResultLog) Last() (ResultRecord, bool) {
	if len(l.records) == 0 {
		return ResultRecord{}, false
	}
	return l.records[len(l.records)-1], true
}

// Summary counts records by outcome kind.
type Summary struct {
	Total    int `json:"total"`
	Found    int `json:"found"`
	NotFound int `json:"not_found"`
	Errors   int `json:"errors"`
}

// Summarize counts the records by outcome kind.
func Summarize(records []ResultRecord) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Outcome.Kind {
		case OutcomeFound:
			s.Found++
		case OutcomeError:
			s.Errors++
		default:
			s.NotFound++
		}
	}
	return s
}
