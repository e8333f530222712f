package devserver

import (
	"fmt"
	"strings"
)

// Answerer produces the assistant reply for /chat. The dev server has no
// retrieval pipeline behind it, so the default implementation is a canned
// responder in the spirit of the production service's mock retriever: it
// keys simple civic topics and otherwise echoes the question back.
type Answerer interface {
	Answer(message string) string
}

type cannedAnswerer struct{}

var cannedTopics = map[string]string{
	"legislative": "Bills are drafted, debated in committee, voted on by both chambers, and signed into law by the executive.",
	"voting":      "Every registered citizen has the right to a free, secret ballot in local and national elections.",
	"supreme":     "The Supreme Court reviews laws and government acts for constitutionality and settles final appeals.",
}

func (cannedAnswerer) Answer(message string) string {
	lowered := strings.ToLower(message)
	for key, answer := range cannedTopics {
		if strings.Contains(lowered, key) {
			return answer
		}
	}
	return fmt.Sprintf("You asked: %q. The local dev server has no retrieval pipeline; connect to the production backend for real answers.", message)
}
