// Package queue defines message payloads exchanged over the message broker.
package queue

// ProvisioningEvent records one successful SCIM mutation for downstream
// audit consumers. It is an activity log record, not a provisioning
// trigger; nothing in the system consumes these events to mutate state.
type ProvisioningEvent struct {
	Resource   string `json:"resource"`    // "User" or "Group"
	ResourceID string `json:"resource_id"` // store-assigned id
	Operation  string `json:"operation"`   // create | patch | replace | delete
	Status     string `json:"status"`
	OccurredAt string `json:"occurred_at"` // RFC 3339 UTC
	Detail     string `json:"detail,omitempty"`
}
