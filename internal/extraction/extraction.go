// Package extraction turns raw agent output into knowledge payloads.
//
// Agents are asked to reply with a single JSON object, but in practice
// the object arrives wrapped in prose, markdown fences, or preamble.
// Parse is deliberately lenient about the wrapping and strict about the
// payload: it recovers the outermost JSON object from the text, and
// anything that still fails to decode is an upstream parse error, never
// a partial merge.
package extraction

import (
	"encoding/json"
	"strings"

	"roadmap/internal/errs"
	"roadmap/internal/knowledge"
)

// rawPayload mirrors the JSON contract agents are prompted to produce.
type rawPayload struct {
	Facts []struct {
		Category   string  `json:"category"`
		Fact       string  `json:"fact"`
		Confidence float64 `json:"confidence"`
	} `json:"facts"`
	Sources []struct {
		System      string `json:"system"`
		Description string `json:"description"`
	} `json:"sources"`
	Exceptions []string `json:"exceptions"`
	Unknowns   []string `json:"unknowns"`
}

// Parse extracts a knowledge payload from raw agent output. The source
// label is stamped onto every fact for provenance.
func Parse(raw, source string) (knowledge.Payload, error) {
	body, ok := extractObject(raw)
	if !ok {
		return knowledge.Payload{}, errs.New(errs.UpstreamParse, "no JSON object found in agent output")
	}

	var rp rawPayload
	if err := json.Unmarshal([]byte(body), &rp); err != nil {
		return knowledge.Payload{}, errs.Wrap(errs.UpstreamParse, err, "decoding agent output")
	}

	p := knowledge.Payload{
		Exceptions: rp.Exceptions,
		Unknowns:   rp.Unknowns,
	}
	for _, f := range rp.Facts {
		p.Facts = append(p.Facts, knowledge.Fact{
			Category:   f.Category,
			Text:       f.Fact,
			Confidence: f.Confidence,
			Source:     source,
		})
	}
	for _, s := range rp.Sources {
		p.Sources = append(p.Sources, knowledge.SourceRef{
			System:      s.System,
			Description: s.Description,
		})
	}
	return p, nil
}

// extractObject finds the outermost {...} span in text. It tolerates
// markdown fences and surrounding prose, and tracks strings so braces
// inside quoted values don't end the object early.
func extractObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
					return text[start : i+1], true
				}
			}
		}
	}
	return "", false
}
