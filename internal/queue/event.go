package queue

// StatusChangedEvent is published every time an application leaves one
// status for another: admin updates and owner cancellations alike. It is
// the audit trail of the lifecycle; downstream consumers can log or
// notify without querying the primary database.
type StatusChangedEvent struct {
	ApplicationID uint64 `json:"application_id"`
	UserID        uint64 `json:"user_id"`  // owner of the application
	ActorID       uint64 `json:"actor_id"` // who performed the change
	ActorRole     string `json:"actor_role"`
	Status        string `json:"status"`
	Comment       string `json:"comment,omitempty"`
	ChangedAt     string `json:"changed_at"`
}
