package keywords

import (
	"strconv"
	"strings"
)

// Result is one keyword row.
type Result struct {
	Phrase       string `json:"keyword"`
	SearchVolume int    `json:"search_volume"`
	Difficulty   int    `json:"keyword_difficulty"`
	Intent       string `json:"search_intent"`
}

var headerCodes = map[string]string{
	"Keyword":                  "Ph",
	"Search Volume":            "Nq",
	"Keyword Difficulty Index": "Kd",
	"Keyword Difficulty":       "Kd",
	"Intent":                   "In",
}

var intentNames = map[string]string{
	"0": "Commercial",
	"1": "Informational",
	"2": "Navigational",
	"3": "Transactional",
}

// Parse decodes a semicolon-delimited SEMrush response. Rows whose column
// count does not match the header are skipped.
func Parse(body string) []Result {
	lines := strings.Split(strings.TrimSpace(strings.ReplaceAll(body, "\r\n", "\n")), "\n")
	if len(lines) <= 1 {
		return []Result{}
	}

	headers := strings.Split(lines[0], ";")
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if code, ok := headerCodes[h]; ok {
			h = code
		}
		headers[i] = h
	}

	results := make([]Result, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := strings.Split(line, ";")
		if len(values) != len(headers) {
			continue
		}
		var r Result
		for i, h := range headers {
			v := strings.TrimSpace(values[i])
			switch h {
			case "Ph":
				r.Phrase = v
			case "Nq":
				r.SearchVolume = atoi(v)
			case "Kd":
				r.Difficulty = atoi(v)
			case "In":
				r.Intent = IntentLabel(v)
			}
		}
		if r.Phrase == "" {
			continue
		}
		results = append(results, r)
	}
	return results
}

// IntentLabel turns SEMrush intent codes ("1" or "0,3") into names.
// Unknown codes are kept as they are.
func IntentLabel(codes string) string {
	if codes == "" {
		return ""
	}
	parts := strings.Split(codes, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if name, ok := intentNames[p]; ok {
			p = name
		}
		parts[i] = p
	}
	return strings.Join(parts, ", ")
}

func atoi(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
