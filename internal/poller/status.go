package poller

// Status is the execution status reported by Systems Manager for an
// association or command.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "InProgress"
	StatusSuccess    Status = "Success"
	StatusFailed     Status = "Failed"
	StatusCancelled  Status = "Cancelled"
	StatusTimedOut   Status = "TimedOut"
)

var knownStatuses = map[Status]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusSuccess:    true,
	StatusFailed:     true,
	StatusCancelled:  true,
	StatusTimedOut:   true,
}

// ParseStatus maps an API status string onto Status. Unknown values map to
// StatusPending with ok=false so the caller keeps waiting.
func ParseStatus(s string) (st Status, ok bool) {
	st = Status(s)
	if knownStatuses[st] {
		return st, true
	}
	return StatusPending, false
}

// Terminal reports whether no further transition is expected.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusCancelled, StatusTimedOut:
		return true
	}
	return false
}
