package ocr

import "strings"

// topicTable maps a topic to the keywords that select it. Declaration
// order is the output order.
var topicTable = []struct {
	name     string
	keywords []string
}{
	{"financial", []string{"invoice", "payment", "amount", "tax", "price", "cost"}},
	{"medical", []string{"patient", "doctor", "hospital", "medical", "health"}},
	{"legal", []string{"contract", "agreement", "law", "legal", "court"}},
	{"technical", []string{"software", "hardware", "system", "technical", "specification"}},
	{"educational", []string{"school", "university", "student", "education", "course"}},
	{"business", []string{"company", "business", "corporate", "meeting", "client"}},
}

// detectTopics reports every topic with at least one keyword appearing as
// a substring of the lower-cased text.
func detectTopics(text string) []string {
	topics := []string{}
	lower := strings.ToLower(text)
	for _, t := range topicTable {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				topics = append(topics, t.name)
				break
			}
		}
	}
	return topics
}
