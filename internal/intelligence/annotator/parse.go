package annotator

import (
	"encoding/json"
	"strconv"
	"strings"
)

// stripCodeFences removes a ```json ... ``` or ``` ... ``` wrapper that some
// models emit despite being told not to.  Text without fences is returned
// trimmed but otherwise untouched.
func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if idx := strings.Index(cleaned, "```json"); idx >= 0 {
		start := idx + len("```json")
		end := strings.LastIndex(cleaned, "```")
		if end > start {
			return strings.TrimSpace(cleaned[start:end])
		}
	}

	if strings.HasPrefix(cleaned, "```") {
		lines := strings.Split(cleaned, "\n")
		if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
			lines = lines[1:]
		}
		if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
			lines = lines[:len(lines)-1]
		}
		return strings.TrimSpace(strings.Join(lines, "\n"))
	}

	return cleaned
}

// parseAnalysis decodes the model output into an Analysis, tolerating the
// sloppiness LLMs produce: code fences, non-string list entries, numeric
// adjustments encoded as strings.  Any field that cannot be salvaged keeps
// its neutral zero value; a completely undecodable payload yields the
// neutral analysis with ok=false.
func parseAnalysis(raw string) (analysis *Analysis, ok bool) {
	analysis = NeutralAnalysis()

	var loose struct {
		RiskFactors          []json.RawMessage `json:"risk_factors"`
		Opportunities        []json.RawMessage `json:"opportunities"`
		StrategicAdvice      json.RawMessage   `json:"strategic_advice"`
		ConfidenceAdjustment json.RawMessage   `json:"confidence_adjustment"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &loose); err != nil {
		return analysis, false
	}

	analysis.RiskFactors = stringItems(loose.RiskFactors)
	analysis.Opportunities = stringItems(loose.Opportunities)

	if len(loose.StrategicAdvice) > 0 {
		var advice string
		if err := json.Unmarshal(loose.StrategicAdvice, &advice); err == nil {
			analysis.StrategicAdvice = advice
		} else {
			analysis.StrategicAdvice = string(loose.StrategicAdvice)
		}
	}

	analysis.ConfidenceAdjustment = clampAdjustment(coerceFloat(loose.ConfidenceAdjustment))
	return analysis, true
}

// stringItems keeps only the entries that decode as JSON strings.
func stringItems(items []json.RawMessage) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// coerceFloat decodes a JSON number, or a number hiding inside a string.
// Anything else coerces to 0.
func coerceFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, perr := strconv.ParseFloat(strings.TrimSpace(s), 64); perr == nil {
			return parsed
		}
	}
	return 0
}

// clampAdjustment bounds the model's adjustment to the permitted range.
func clampAdjustment(v float64) float64 {
	if v > AdjustmentBound {
		return AdjustmentBound
	}
	if v < -AdjustmentBound {
		return -AdjustmentBound
	}
	return v
}
