package delegate

import (
	"context"
	"strings"

	"github.com/clinivoice/callflow/internal/callflow"
	"github.com/clinivoice/callflow/pkg/logging"
)

// FormatFallback wraps a Delegator and substitutes a local deterministic
// normalization when a FORMAT_ID call fails. This is a property of the
// FORMAT_ID delegate, not a gateway retry: other delegations pass through
// untouched, and the network is never attempted twice.
type FormatFallback struct {
	next   callflow.Delegator
	logger *logging.Logger
}

// NewFormatFallback wraps next with the local FORMAT_ID fallback.
func NewFormatFallback(next callflow.Delegator, logger *logging.Logger) *FormatFallback {
	if logger == nil {
		logger = logging.Default()
	}
	return &FormatFallback{next: next, logger: logger}
}

var _ callflow.Delegator = (*FormatFallback)(nil)

func (f *FormatFallback) Call(ctx context.Context, req callflow.DelegateRequest) callflow.DelegateResult {
	res := f.next.Call(ctx, req)
	if req.Name != callflow.DelegateFormatID || res.OK {
		return res
	}

	text, _ := req.Payload["text"].(string)
	if text == "" {
		text = req.Transcript
	}
	body, check, ok := LocalFormatID(text)
	if !ok {
		return res
	}
	f.logger.Info("delegate: FORMAT_ID fell back to local normalization",
		"call_id", req.SessionID,
	)
	return callflow.DelegateResult{
		OK: true,
		Data: map[string]any{
			"ok":          true,
			"body":        body,
			"check_digit": check,
			"source":      "local",
		},
	}
}

// spokenDigits maps digit words a recognizer may emit to their characters.
var spokenDigits = map[string]string{
	"zero": "0", "oh": "0",
	"one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
	"k": "K", "kay": "K",
}

// LocalFormatID deterministically normalizes a spoken or dictated ID into
// body and check digit. It accepts digit characters, spoken digit words,
// and the usual separators; the last character is the check digit.
func LocalFormatID(text string) (body, check string, ok bool) {
	var b strings.Builder
	for _, token := range strings.Fields(strings.ToLower(text)) {
		if mapped, found := spokenDigits[strings.Trim(token, ".,-")]; found {
			b.WriteString(mapped)
			continue
		}
		for _, r := range token {
			switch {
			case r >= '0' && r <= '9':
				b.WriteRune(r)
			case r == 'k':
				b.WriteString("K")
			}
		}
	}
	normalized := b.String()
	if len(normalized) < 3 {
		return "", "", false
	}
	return normalized[:len(normalized)-1], normalized[len(normalized)-1:], true
}
