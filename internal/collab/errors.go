package collab

import "fmt"

// NetworkError indicates the collaborator was unreachable or returned a
// non-2xx status. Surfaced to the learner with a manual retry affordance;
// the engine never retries automatically.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError indicates the collaborator rejected the answer or goal.
// Local state is left unchanged until a successful response arrives.
type ValidationError struct {
	QuestionID string
	Err        error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate question %s: %v", e.QuestionID, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// SessionAllocationError blocks entry into the assessment flow: later
// steps depend on a session ID, so allocation failure fails closed.
type SessionAllocationError struct {
	Err error
}

func (e *SessionAllocationError) Error() string {
	return fmt.Sprintf("allocate session: %v", e.Err)
}

func (e *SessionAllocationError) Unwrap() error { return e.Err }
