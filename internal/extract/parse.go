package extract

import (
	"encoding/json"
	"strings"

	"eventcal/internal/errs"
	"eventcal/internal/model"
)

// parseCandidates decodes the model's reply into raw candidates.
// Models wrap JSON in ``` fences despite instructions, so fences are
// stripped before decoding. A reply that is not a JSON array is a
// permanent failure; retrying the same prompt yields the same shape.
func parseCandidates(reply string) ([]model.RawEventCandidate, error) {
	body := stripFences(reply)
	if body == "" {
		return nil, errs.New(errs.CodePermanentCall, "model returned an empty reply")
	}

	var candidates []model.RawEventCandidate
	if err := json.Unmarshal([]byte(body), &candidates); err != nil {
		return nil, errs.Wrap(err, errs.CodePermanentCall, "model reply is not a JSON array")
	}
	return candidates, nil
}

// stripFences removes a surrounding markdown code fence, with or
// without a language tag, and trims whitespace.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" on the opening fence line.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if len(first) <= 10 && !strings.ContainsAny(first, "[{") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
