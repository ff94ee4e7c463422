package bfvm

// Reason is why a run stopped.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonCompleted
	ReasonInputClosed
	ReasonOutputClosed
	ReasonCanceled
	ReasonMalformed
	ReasonFaulted
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonCompleted:
		return "completed"
	case ReasonInputClosed:
		return "input closed"
	case ReasonOutputClosed:
		return "output closed"
	case ReasonCanceled:
		return "canceled"
	case ReasonMalformed:
		return "malformed"
	case ReasonFaulted:
		return "faulted"
	}
	return "unknown"
}

// Clean reports whether r is a normal stop rather than a failure.
func (r Reason) Clean() bool {
	switch r {
	case ReasonCompleted, ReasonInputClosed, ReasonOutputClosed, ReasonCanceled:
		return true
	}
	return false
}
