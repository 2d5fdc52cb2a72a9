// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns them into the staff notification log.
package queue

// LeadSubmittedQueue is the durable queue carrying LeadSubmittedEvent.
const LeadSubmittedQueue = "lead.submitted"

// LeadSubmittedEvent is published after a public lead submission has been
// stored. It carries enough for staff to follow up without querying the
// database.
type LeadSubmittedEvent struct {
	LeadID      string `json:"lead_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Course      string `json:"course"`
	Source      string `json:"source"`
	SubmittedAt string `json:"submitted_at"` // RFC 3339, UTC
}
