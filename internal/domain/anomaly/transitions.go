package anomaly

// allowedTransitions is the strict lifecycle applied when transitions are enforced.
// Resolved and false-positive anomalies may only be reopened for investigation.
var allowedTransitions = map[Status][]Status{
	StatusDetected:      {StatusInvestigating, StatusResolved, StatusFalsePositive},
	StatusInvestigating: {StatusDetected, StatusResolved, StatusFalsePositive},
	StatusResolved:      {StatusInvestigating},
	StatusFalsePositive: {StatusInvestigating},
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
