// Package parse extracts a subject/body pair from raw model output. A
// malformed response degrades into something a human reviewer can still fix;
// parsing never fails outright.
package parse

import (
	"encoding/json"
	"strings"
)

// PlaceholderSubject is assigned when no subject can be recovered at all.
const PlaceholderSubject = "Quick note"

// Outcome distinguishes a clean parse from a best-effort one.
type Outcome int

const (
	// Parsed means the JSON object was extracted as instructed.
	Parsed Outcome = iota
	// Fallback means the line-oriented heuristic recovered the fields.
	Fallback
	// Unparseable means nothing usable was found; the result carries the
	// placeholder subject and the raw text as body.
	Unparseable
)

func (o Outcome) String() string {
	switch o {
	case Parsed:
		return "parsed"
	case Fallback:
		return "fallback"
	default:
		return "unparseable"
	}
}

// Result is the parsed subject/body pair with its provenance.
type Result struct {
	Subject string
	Body    string
	Outcome Outcome
}

type emailJSON struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Parse extracts a subject and body from raw model output. Strategy one
// scans for an embedded JSON object with both keys; strategy two treats the
// text as lines with a leading "subject:" marker. Parse never returns an
// error: the worst case is a placeholder subject over the raw text.
func Parse(raw string) Result {
	if subject, body, ok := extractJSON(raw); ok {
		return Result{Subject: subject, Body: body, Outcome: Parsed}
	}
	if subject, body, ok := extractLines(raw); ok {
		return Result{Subject: subject, Body: body, Outcome: Fallback}
	}
	return Result{
		Subject: PlaceholderSubject,
		Body:    strings.TrimSpace(raw),
		Outcome: Unparseable,
	}
}

// extractJSON scans for balanced {...} spans and unmarshals each candidate
// until one yields both a subject and a body. A structural scan is used
// instead of whole-document parsing because the model may wrap the object in
// prose or code fences.
func extractJSON(raw string) (subject, body string, ok bool) {
	for start := 0; start < len(raw); start++ {
		if raw[start] != '{' {
			continue
		}
		end, found := matchBrace(raw, start)
		if !found {
			continue
		}
		var e emailJSON
		if err := json.Unmarshal([]byte(raw[start:end+1]), &e); err != nil {
			continue
		}
		if e.Subject != "" && e.Body != "" {
			return strings.TrimSpace(e.Subject), strings.TrimSpace(e.Body), true
		}
	}
	return "", "", false
}

// matchBrace returns the index of the brace closing the one at start,
// skipping braces inside JSON string literals.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return i, true
				}
			}
		}
	}
	return 0, false
}

// extractLines recovers a subject from a "subject:" line (case-insensitive)
// and joins all remaining non-empty lines into the body.
func extractLines(raw string) (subject, body string, ok bool) {
	var bodyLines []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if subject == "" {
			lower := strings.ToLower(trimmed)
			if strings.HasPrefix(lower, "subject:") {
				subject = strings.TrimSpace(trimmed[len("subject:"):])
				continue
			}
		}
		if trimmed != "" {
			bodyLines = append(bodyLines, trimmed)
		}
	}
	if subject == "" {
		return "", "", false
	}
	return subject, strings.Join(bodyLines, "\n"), true
}
