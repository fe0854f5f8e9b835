package models

import "time"

// AuditEvent records one authenticated request. No request bodies and no
// secrets are kept, so events are stored in the clear.
type AuditEvent struct {
	Time      time.Time `json:"time"`
	AccountID string    `json:"accountId"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
}
