package inference

import (
	"encoding/json"
	"regexp"
	"strings"
)

// CardContent is the structured result of parsing provider output for a full
// flashcard. Examples is always a list by the time it leaves this package,
// even when the provider returned a single string.
type CardContent struct {
	Text             string   `json:"text"`
	Transcription    string   `json:"transcription"`
	Translation      string   `json:"translation"`
	ShortDescription string   `json:"shortDescription"`
	Explanation      string   `json:"explanation"`
	Examples         []string `json:"examples"`
	Notes            string   `json:"notes"`
}

// MaxExamples bounds the example list on a card.
const MaxExamples = 3

// The provider is not contractually obligated to return valid JSON. Parsing
// is an ordered list of extractor attempts; the first candidate that decodes
// wins, and the terminal branch is raw passthrough handled by the caller.
type extractor func(raw string) (string, bool)

var cardExtractors = []extractor{extractFencedBlock, extractBraceSpan, extractWhole}

// ParseCardResponse recovers a structured card from free-text provider
// output. ok=false means no candidate decoded; the caller surfaces the raw
// text instead of failing. On success Text is forced back to originalText,
// since the provider's echo of the word is never trusted.
func ParseCardResponse(raw, originalText string) (CardContent, bool) {
	for _, extract := range cardExtractors {
		candidate, found := extract(raw)
		if !found {
			continue
		}
		content, err := decodeCardContent(stripFenceMarkers(candidate))
		if err != nil {
			continue
		}
		content.Text = originalText
		return content, true
	}
	return CardContent{}, false
}

// ParseExamplesResponse recovers a list of example sentences. It first tries
// structured decoding of a fenced block or a top-level array span; when
// neither yields anything it falls back to line-oriented extraction. The
// fallback is the same whether decoding failed or no array was found.
func ParseExamplesResponse(raw string) []string {
	for _, extract := range []extractor{extractFencedBlock, extractBracketSpan, extractWhole} {
		candidate, found := extract(raw)
		if !found {
			continue
		}
		var decoded []string
		if err := json.Unmarshal([]byte(stripFenceMarkers(candidate)), &decoded); err != nil {
			continue
		}
		if cleaned := cleanExamples(decoded); len(cleaned) > 0 {
			return cleaned
		}
	}
	return extractExampleLines(raw)
}

// cardContentJSON tolerates both list and bare-string examples, plus the
// legacy singular field older prompt shapes produced.
type cardContentJSON struct {
	Text             string          `json:"text"`
	Transcription    string          `json:"transcription"`
	Translation      string          `json:"translation"`
	ShortDescription string          `json:"shortDescription"`
	Explanation      string          `json:"explanation"`
	Examples         json.RawMessage `json:"examples"`
	Example          string          `json:"example"`
	Notes            string          `json:"notes"`
}

func decodeCardContent(candidate string) (CardContent, error) {
	var decoded cardContentJSON
	if err := json.Unmarshal([]byte(candidate), &decoded); err != nil {
		return CardContent{}, err
	}

	return CardContent{
		Text:             decoded.Text,
		Transcription:    decoded.Transcription,
		Translation:      decoded.Translation,
		ShortDescription: decoded.ShortDescription,
		Explanation:      decoded.Explanation,
		Examples:         normalizeExamples(decoded.Examples, decoded.Example),
		Notes:            decoded.Notes,
	}, nil
}

// normalizeExamples coerces whatever the provider put in "examples" into a
// list: a JSON array stays a list, a bare string becomes a one-element list,
// anything else defaults to empty. The legacy singular field fills in only
// when the list form is absent.
func normalizeExamples(rawExamples json.RawMessage, legacySingular string) []string {
	if len(rawExamples) > 0 {
		var list []string
		if err := json.Unmarshal(rawExamples, &list); err == nil {
			return cleanExamples(list)
		}
		var single string
		if err := json.Unmarshal(rawExamples, &single); err == nil {
			return cleanExamples([]string{single})
		}
		return []string{}
	}
	if strings.TrimSpace(legacySingular) != "" {
		return []string{strings.TrimSpace(legacySingular)}
	}
	return []string{}
}

func cleanExamples(examples []string) []string {
	cleaned := make([]string, 0, MaxExamples)
	for _, example := range examples {
		example = strings.TrimSpace(example)
		if example == "" {
			continue
		}
		cleaned = append(cleaned, example)
		if len(cleaned) == MaxExamples {
			break
		}
	}
	return cleaned
}

var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")

func extractFencedBlock(raw string) (string, bool) {
	match := fencedBlockPattern.FindStringSubmatch(raw)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// extractBraceSpan locates the first top-level {...} span, counting braces
// outside of JSON strings so that braces inside values do not break the
// match.
func extractBraceSpan(raw string) (string, bool) {
	return extractDelimitedSpan(raw, '{', '}')
}

// extractBracketSpan locates the first top-level [...] span.
func extractBracketSpan(raw string) (string, bool) {
	return extractDelimitedSpan(raw, '[', ']')
}

func extractDelimitedSpan(raw string, open, closing rune) (string, bool) {
	first := -1
	depth := 0
	inString := false
	escapeNext := false

	for i, ch := range raw {
		if escapeNext {
			escapeNext = false
			continue
		}
		if ch == '\\' && inString {
			escapeNext = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case open:
			if first == -1 {
				first = i
			}
			depth++
		case closing:
			if first == -1 {
				continue
			}
			depth--
			if depth == 0 {
				return raw[first : i+1], true
			}
		}
	}
	return "", false
}

func extractWhole(raw string) (string, bool) {
	return raw, true
}

func stripFenceMarkers(candidate string) string {
	candidate = strings.ReplaceAll(candidate, "```json", "")
	candidate = strings.ReplaceAll(candidate, "```", "")
	return strings.TrimSpace(candidate)
}

var (
	ordinalMarkerPattern = regexp.MustCompile(`^(?:\d+[.)]\s*|[-*•]\s*)`)
	edgeQuotePattern     = regexp.MustCompile(`^["'“”‘’]+|["'“”‘’]+$`)
)

// extractExampleLines is the line-oriented fallback for example lists: drop
// blank lines, strip leading ordinal markers and surrounding quotes, keep at
// most MaxExamples results.
func extractExampleLines(raw string) []string {
	results := make([]string, 0, MaxExamples)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = ordinalMarkerPattern.ReplaceAllString(line, "")
		line = edgeQuotePattern.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		results = append(results, line)
		if len(results) == MaxExamples {
			break
		}
	}
	return results
}
