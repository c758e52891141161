package enricher

import "encoding/json"

// Salvaged holds the outcome of tolerant parsing: every complete JSON object
// found in the input, plus the spans that could not be parsed.
type Salvaged struct {
	Objects  []json.RawMessage
	Unparsed []string
}

// Salvage extracts JSON objects from free text without assuming
// well-formedness. It locates JSON-like substrings by bracket/brace scanning
// (string- and escape-aware). Top-level arrays contribute their object
// elements individually, so a response truncated mid-array still yields every
// element that was complete before the truncation point; the cut-off trailing
// structure is reported as an unparsed span, never completed into fabricated
// data. Prose around and between structures is ignored.
func Salvage(text string) Salvaged {
	var out Salvaged
	i := 0
	for i < len(text) {
		switch text[i] {
		case '[':
			i = salvageArray(text, i, &out)
		case '{':
			raw, complete, next := scanStructure(text, i)
			if complete && json.Valid([]byte(raw)) {
				out.Objects = append(out.Objects, json.RawMessage(raw))
			} else {
				out.Unparsed = append(out.Unparsed, raw)
			}
			i = next
		default:
			i++
		}
	}
	return out
}

// salvageArray walks the elements of a top-level array starting at
// text[start] == '[', appending complete object elements to out. Returns the
// index to resume scanning from.
func salvageArray(text string, start int, out *Salvaged) int {
	i := start + 1
	for i < len(text) {
		switch text[i] {
		case ']':
			return i + 1
		case '{', '[':
			raw, complete, next := scanStructure(text, i)
			if complete && text[i] == '{' && json.Valid([]byte(raw)) {
				out.Objects = append(out.Objects, json.RawMessage(raw))
			} else if !complete {
				out.Unparsed = append(out.Unparsed, raw)
			}
			i = next
		case '"':
			// Scalar string element: skip it.
			_, _, next := scanString(text, i)
			i = next
		default:
			i++
		}
	}
	return i
}

// scanStructure scans one balanced JSON structure ('{' or '[') starting at
// text[start]. It returns the raw span, whether a balanced closing bracket
// was found, and the index after the structure (or len(text) on truncation).
func scanStructure(text string, start int) (raw string, complete bool, next int) {
	depth := 0
	i := start
	for i < len(text) {
		switch text[i] {
		case '"':
			_, ok, n := scanString(text, i)
			i = n
			if !ok {
				// Truncated inside a string literal: no bracket repair can
				// recover this structure.
				return text[start:], false, len(text)
			}
			continue
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return text[start : i+1], true, i + 1
			}
		}
		i++
	}
	return text[start:], false, len(text)
}

// scanString scans a JSON string literal starting at text[start] == '"'.
// Returns the literal, whether the closing quote was found, and the index
// after it.
func scanString(text string, start int) (string, bool, int) {
	i := start + 1
	for i < len(text) {
		switch text[i] {
		case '\\':
			i += 2
			continue
		case '"':
			return text[start : i+1], true, i + 1
		}
		i++
	}
	return text[start:], false, len(text)
}
