package callflow

import "time"

// earliestWords mark a request for the first available slot regardless of
// date.
var earliestWords = map[string]bool{
	"earliest": true, "soonest": true, "first": true, "whenever": true,
	"any": true, "anytime": true, "asap": true,
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// parseDatePhrase extracts a requested appointment date from an utterance.
// Returns the date (midnight UTC), whether the caller asked for the
// earliest available slot instead, and whether anything was recognized.
// Deterministic keyword matching only; this is not a natural-language date
// parser.
func parseDatePhrase(text string, now time.Time) (time.Time, bool, bool) {
	today := now.UTC().Truncate(24 * time.Hour)
	tokens := tokenize(text)

	for i, word := range tokens {
		if earliestWords[word] {
			return time.Time{}, true, true
		}
		switch word {
		case "today":
			return today, false, true
		case "tomorrow":
			// "day after tomorrow" is matched at "after".
			return today.AddDate(0, 0, 1), false, true
		case "after":
			if i > 0 && tokens[i-1] == "day" && i+1 < len(tokens) && tokens[i+1] == "tomorrow" {
				return today.AddDate(0, 0, 2), false, true
			}
		}
		if wd, ok := weekdays[word]; ok {
			days := int(wd-today.Weekday()+7) % 7
			if days == 0 {
				days = 7
			}
			return today.AddDate(0, 0, days), false, true
		}
	}
	return time.Time{}, false, false
}

// formatDate renders a stored requested date for delegate payloads.
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// spokenDate renders a slot time for speech, e.g.
// "Tuesday, March 3rd at 10:30".
func spokenDate(t time.Time) string {
	day := t.Day()
	suffix := "th"
	switch {
	case day%10 == 1 && day != 11:
		suffix = "st"
	case day%10 == 2 && day != 12:
		suffix = "nd"
	case day%10 == 3 && day != 13:
		suffix = "rd"
	}
	return t.Format("Monday, January 2") + suffix + t.Format(" at 15:04")
}
