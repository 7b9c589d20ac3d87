package domain

import "time"

// Audit statuses. A null status means "reviewed, no verdict yet" and is
// distinct from both pass and fail.
const (
	AuditStatusPass = "pass"
	AuditStatusFail = "fail"
)

// AuditSubmission is one auditor's full set of per-item judgments for a
// document. Exactly one submission exists per (DocId, AuditorId); writes
// are last-writer-wins upserts.
type AuditSubmission struct {
	DocId     DocumentId `json:"docId"`
	AuditorId UserId     `json:"auditorId"`
	Username  Username   `json:"username"`
	Data      string     `json:"data"` // JSON: itemId -> {description, status, updated}
	Created   time.Time  `json:"created"`
	Updated   time.Time  `json:"updated"`
}

// AuditItem is a single per-item judgment inside a submission's Data.
// Status is a pointer so null survives the round trip.
type AuditItem struct {
	Description string  `json:"description"`
	Status      *string `json:"status"`
	Updated     int64   `json:"updated"`
}

// AuditEntry is one auditor's verdict on one item, as it appears in the
// aggregated report.
type AuditEntry struct {
	Username    Username `json:"username"`
	Description string   `json:"description"`
	Updated     int64    `json:"updated"`
}

// ItemReport buckets entries for a single item. Items referenced only by
// null-status judgments keep both lists empty.
type ItemReport struct {
	Pass []AuditEntry `json:"pass"`
	Fail []AuditEntry `json:"fail"`
}

// AggregatedReport maps item id to its pass/fail buckets. Derived on
// demand, never persisted.
type AggregatedReport = map[string]*ItemReport
