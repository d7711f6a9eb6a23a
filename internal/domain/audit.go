package domain

import "time"

// AuditAction names the kind of change an audit entry records.
type AuditAction string

const AuditActionUpdate AuditAction = "update"

// AuditEntry is an immutable record of a successful Salesforce write. UserID becomes nil when
// the acting principal is hard deleted.
type AuditEntry struct {
	ID         string
	UserID     *string
	SFRecordID string
	Action     AuditAction
	Before     map[string]any
	After      map[string]any
	CreatedAt  time.Time
	IP         string
	UserAgent  string
}
