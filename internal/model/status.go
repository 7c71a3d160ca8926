package model

// Phase identifies which of the mutually exclusive submission states is
// active.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseSucceeded
	PhaseFailed
)

// String returns a lowercase label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrorKind distinguishes the three ways a submission can fail.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	// ErrorLocalValidation is raised before any network call.
	ErrorLocalValidation
	// ErrorRemoteService means the service answered with a failure.
	ErrorRemoteService
	// ErrorTransport means the HTTP exchange could not be completed.
	ErrorTransport
)

// String returns a lowercase label for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorLocalValidation:
		return "local_validation"
	case ErrorRemoteService:
		return "remote_service"
	case ErrorTransport:
		return "transport"
	default:
		return "none"
	}
}

// SubmissionStatus is the controller's current phase. Fields are
// unexported so a status can only be built through the constructors
// below, which keeps a result and an error from ever coexisting.
type SubmissionStatus struct {
	phase   Phase
	result  *ClassificationResult
	kind    ErrorKind
	message string
}

// Idle returns the initial status.
func Idle() SubmissionStatus {
	return SubmissionStatus{phase: PhaseIdle}
}

// Pending returns the in-flight status.
func Pending() SubmissionStatus {
	return SubmissionStatus{phase: PhasePending}
}

// Succeeded returns a completed status carrying the service result.
func Succeeded(result *ClassificationResult) SubmissionStatus {
	return SubmissionStatus{phase: PhaseSucceeded, result: result}
}

// Failed returns a failed status with a user-facing message.
func Failed(kind ErrorKind, message string) SubmissionStatus {
	return SubmissionStatus{phase: PhaseFailed, kind: kind, message: message}
}

// Phase reports which state is active.
func (s SubmissionStatus) Phase() Phase {
	return s.phase
}

// IsPending reports whether a request is in flight.
func (s SubmissionStatus) IsPending() bool {
	return s.phase == PhasePending
}

// Result returns the classification result when the status is Succeeded.
func (s SubmissionStatus) Result() (*ClassificationResult, bool) {
	if s.phase != PhaseSucceeded {
		return nil, false
	}
	return s.result, true
}

// Failure returns the error kind and message when the status is Failed.
func (s SubmissionStatus) Failure() (ErrorKind, string, bool) {
	if s.phase != PhaseFailed {
		return ErrorNone, "", false
	}
	return s.kind, s.message, true
}
