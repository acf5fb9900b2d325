package callflow

// specialtyKeywords maps utterance words to the canonical specialty names
// the scheduling service understands.
var specialtyKeywords = map[string]string{
	"dermatology":   "dermatology",
	"dermatologist": "dermatology",
	"skin":          "dermatology",
	"cardiology":    "cardiology",
	"cardiologist":  "cardiology",
	"heart":         "cardiology",
	"pediatrics":    "pediatrics",
	"pediatrician":  "pediatrics",
	"child":         "pediatrics",
	"kids":          "pediatrics",
	"traumatology":  "traumatology",
	"orthopedics":   "traumatology",
	"bone":          "traumatology",
	"fracture":      "traumatology",
	"ophthalmology": "ophthalmology",
	"eye":           "ophthalmology",
	"eyes":          "ophthalmology",
	"general":       "general medicine",
	"gp":            "general medicine",
	"physician":     "general medicine",
	"checkup":       "general medicine",
}

// matchSpecialty resolves an utterance to a canonical specialty name.
func matchSpecialty(text string) (string, bool) {
	for _, word := range tokenize(text) {
		if name, ok := specialtyKeywords[word]; ok {
			return name, true
		}
	}
	return "", false
}
