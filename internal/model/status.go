package model

// Status is the lifecycle state of an application. The vocabulary is
// closed: every value written to applications.status must be one of
// the constants below.
type Status string

const (
	StatusPending    Status = "На рассмотрении"
	StatusPurchasing Status = "Закупаем"
	StatusAwaiting   Status = "Ждём поставку"
	StatusReady      Status = "Готов к получению"
	StatusReceived   Status = "Получено"
	StatusPaused     Status = "Пауза"
	StatusRejected   Status = "Отклонена"
)

// FilterAll is the pseudo-value the admin filter UI uses to request
// every active status at once. It is never stored.
const FilterAll = "Все"

// CancelComment is written to manager_comment when the owner cancels
// their own application.
const CancelComment = "Отменена пользователем"

// statuses holds the vocabulary in presentation order: the admin
// filter renders them in exactly this sequence.
var statuses = []Status{
	StatusPending,
	StatusPurchasing,
	StatusAwaiting,
	StatusReady,
	StatusReceived,
	StatusPaused,
	StatusRejected,
}

// archived marks the terminal partition. Records with these statuses
// leave the active listings and appear only in the archive.
var archived = map[Status]bool{
	StatusReceived: true,
	StatusRejected: true,
}

// AllStatuses returns the full vocabulary in presentation order. The
// returned slice is a copy and safe to modify.
func AllStatuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// IsArchived reports whether s belongs to the terminal partition.
func IsArchived(s Status) bool { return archived[s] }

// ArchivedStatuses returns the terminal partition in presentation
// order. The repository binds these when building active/archive
// WHERE clauses, so order stability matters for tests.
func ArchivedStatuses() []Status {
	out := make([]Status, 0, len(archived))
	for _, s := range statuses {
		if archived[s] {
			out = append(out, s)
		}
	}
	return out
}

// ValidStatus reports whether s is a member of the vocabulary.
func ValidStatus(s Status) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

// FilterableStatuses returns the values offered by the admin filter:
// the FilterAll pseudo-value followed by every non-archived status in
// presentation order.
func FilterableStatuses() []string {
	out := make([]string, 0, len(statuses))
	out = append(out, FilterAll)
	for _, s := range statuses {
		if !archived[s] {
			out = append(out, string(s))
		}
	}
	return out
}
