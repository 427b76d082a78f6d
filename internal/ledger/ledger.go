// Package ledger assembles the question/response ledger for submission and
// groups returned results into the per-domain capability report.
package ledger

import (
	"math"

	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/flow"
)

// Build assembles the submission payload from the accumulated questions
// and responses. The ledger is submitted verbatim; resubmitting the same
// ledger after a failure is safe.
func Build(learnerID string, questionsByDomain map[flow.Domain][]collab.Question, responses map[string]collab.Response) collab.Submission {
	if questionsByDomain == nil {
		questionsByDomain = make(map[flow.Domain][]collab.Question)
	}
	if responses == nil {
		responses = make(map[string]collab.Response)
	}
	return collab.Submission{
		LearnerID: learnerID,
		Questions: questionsByDomain,
		Responses: responses,
	}
}

// Entry is one question/response pair in the report, with correctness
// joined from the detailed-responses map by question ID.
type Entry struct {
	Question  collab.Question
	Answer    string
	IsCorrect *bool
}

// GroupByDomain joins the returned question ledger with the detailed
// responses. Domains present in the config but absent from the ledger get
// an empty slice so the report renders "no prompt history yet" rather
// than an error.
func GroupByDomain(questionLedger map[flow.Domain][]collab.Question, detailedResponses map[string]collab.Response) map[flow.Domain][]Entry {
	grouped := make(map[flow.Domain][]Entry, len(questionLedger))
	for domain, questions := range questionLedger {
		entries := make([]Entry, 0, len(questions))
		for _, q := range questions {
			e := Entry{Question: q}
			if resp, ok := detailedResponses[q.ID]; ok {
				e.Answer = resp.Answer
				e.IsCorrect = resp.IsCorrect
			}
			entries = append(entries, e)
		}
		grouped[domain] = entries
	}
	return grouped
}

// Accuracy returns round(100 * correct / total) over the entries, or
// (0, false) when there are no entries. Entries without a correctness
// verdict count as incorrect.
func Accuracy(entries []Entry) (int, bool) {
	if len(entries) == 0 {
		return 0, false
	}
	correct := 0
	for _, e := range entries {
		if e.IsCorrect != nil && *e.IsCorrect {
			correct++
		}
	}
	return int(math.Round(100 * float64(correct) / float64(len(entries)))), true
}
