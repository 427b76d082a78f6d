package questiongen

import (
	"fmt"
	"strings"

	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/flow"
)

const systemPrompt = `You are an assessment author creating baseline screening questions for young learners.

Rules:
- Generate a single question for the given domain at the given difficulty level.
- Difficulty runs from 1 (early kindergarten) to 12 (upper elementary). Calibrate vocabulary, numbers, and concepts to the level.
- Use plain ASCII text. No LaTeX, no Unicode symbols. Use / for fractions and standard operators.
- The question text should be clear, self-contained, and age-appropriate.
- The answer must be correct and in its simplest form.
- Choose "OPEN_ENDED" for computation or short-response questions (the learner types the answer).
- Choose "MULTIPLE_CHOICE" for conceptual, comparison, or identification questions (the learner picks from 4 options).
- Choose "AUDIO_RESPONSE" only when the domain guidance asks for a spoken task; leave the answer empty for those.
- For multiple choice, provide exactly 4 options where exactly one is correct. Distractors should reflect common mistakes, not random values.
- Do not repeat any question from the "already asked" list.`

// domainGuidance steers question content per assessed domain.
var domainGuidance = map[flow.Domain]string{
	flow.DomainReading: "Letter recognition, sight words, phonics, and short reading comprehension. Prefer multiple choice at low levels.",
	flow.DomainMath:    "Counting, number sense, arithmetic, and simple word problems. Prefer open-ended computation.",
	flow.DomainSpeech:  "Articulation and expressive language. Ask the learner to say a word or describe a picture aloud; use AUDIO_RESPONSE.",
	flow.DomainSEL:     "Social and emotional scenarios: naming feelings, taking turns, responding to others. Use multiple choice with one clearly best response.",
	flow.DomainScience: "Everyday observations: animals, weather, plants, simple cause and effect. Multiple choice or short open-ended.",
}

// buildUserMessage constructs the user message from the question request,
// the questions already asked in this domain, and Config limits.
func buildUserMessage(req collab.QuestionRequest, prior []string, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Domain: %s\n", req.Domain)
	fmt.Fprintf(&b, "Difficulty level: %d\n", req.GradeLevel)
	fmt.Fprintf(&b, "Question number: %d\n", req.QuestionNumber)

	if g, ok := domainGuidance[req.Domain]; ok {
		fmt.Fprintf(&b, "Guidance: %s\n", g)
	}

	if req.PreviousResult != nil {
		if *req.PreviousResult {
			b.WriteString("The learner answered the previous question correctly.\n")
		} else {
			b.WriteString("The learner answered the previous question incorrectly.\n")
		}
	}

	b.WriteString("\nAlready asked in this session:\n")
	b.WriteString(buildDedup(prior, cfg.MaxPriorQuestions))

	return b.String()
}

// buildDedup formats prior questions for the prompt, respecting the max
// limit. Returns "None" if there are no prior questions.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "None"
	}

	// Keep only the most recent N questions.
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
