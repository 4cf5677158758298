package review

// Outcome is the terminal state of a review.
type Outcome int

const (
	Accepted Outcome = iota
	Rejected
	Regenerate
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Regenerate:
		return "regenerate"
	default:
		return "unknown"
	}
}

// Decision is the result of a review. Message is set only when the
// outcome is Accepted and is never empty in that case.
type Decision struct {
	Outcome Outcome
	Message string
}
