package recommendation

// allowedTransitions is the strict lifecycle applied when transitions are enforced.
// Implemented and expired are terminal; dismissed recommendations may be reopened.
var allowedTransitions = map[Status][]Status{
	StatusPending:     {StatusInProgress, StatusImplemented, StatusDismissed, StatusExpired},
	StatusInProgress:  {StatusPending, StatusImplemented, StatusDismissed},
	StatusDismissed:   {StatusPending},
	StatusImplemented: {},
	StatusExpired:     {},
}

// CanTransition reports whether the strict lifecycle permits from -> to.
// Setting the current status again is always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
