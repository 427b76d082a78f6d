package assessment

import "github.com/oakline/baseline/internal/collab"

// questionMsg is sent when the question collaborator responds.
type questionMsg struct {
	Question *collab.Question
	Gen      uint64
	Err      error
}

// validatedMsg is sent when the validation collaborator responds.
type validatedMsg struct {
	Answer string
	Result *collab.ValidationResult
	Gen    uint64
	Err    error
}

// audioLoadedMsg is sent when a recording has been read from disk.
type audioLoadedMsg struct {
	Data []byte
	Err  error
}

// speechMsg is sent when the speech-analysis collaborator responds.
type speechMsg struct {
	Analysis *collab.SpeechAnalysis
	Gen      uint64
	Err      error
}

// submittedMsg is sent when the completion collaborator responds.
type submittedMsg struct {
	Result *collab.CompletionResult
	Err    error
}
