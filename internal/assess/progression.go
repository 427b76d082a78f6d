package assess

// AdvanceResult reports what an Advance call did.
type AdvanceResult int

const (
	// AdvancedComponent means the next component in the same domain is active.
	AdvancedComponent AdvanceResult = iota

	// AdvancedDomain means the next domain's first component is active.
	AdvancedDomain

	// AssessmentComplete means the last domain's last component was just
	// finished; the caller should transition to submission.
	AssessmentComplete
)

// Advance moves to the next component within the current domain, or to the
// next domain's first component when the current domain is exhausted, or
// signals completion after the last domain's last component. Every advance
// bumps the request generation so stale in-flight responses are discarded.
func (s *State) Advance() AdvanceResult {
	s.Generation++
	s.CurrentQuestion = nil
	s.AnsweredInComponent = 0

	domain := s.CurrentDomain()
	if s.ComponentIndex+1 < len(domain.Components) {
		s.ComponentIndex++
		return AdvancedComponent
	}

	if s.DomainIndex+1 < len(s.Config.Domains) {
		s.DomainIndex++
		s.ComponentIndex = 0
		return AdvancedDomain
	}

	return AssessmentComplete
}

// GoBack moves to the previous component, crossing a domain boundary onto
// the previous domain's last component. At the very first component of the
// very first domain it is a no-op.
func (s *State) GoBack() {
	if s.DomainIndex == 0 && s.ComponentIndex == 0 {
		return
	}

	s.Generation++
	s.CurrentQuestion = nil
	s.AnsweredInComponent = 0

	if s.ComponentIndex > 0 {
		s.ComponentIndex--
		return
	}

	s.DomainIndex--
	s.ComponentIndex = len(s.CurrentDomain().Components) - 1
}
