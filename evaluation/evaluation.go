// Package evaluation provides lightweight quality checks for generated
// study material: topic coverage of a plan and wall-clock latency.
package evaluation

import (
	"strings"
	"time"
)

// CoverageReport describes which required topics a generated text mentions.
type CoverageReport struct {
	Ratio   float64  `json:"ratio"`
	Covered []string `json:"covered"`
	Missing []string `json:"missing"`
}

// Coverage checks, case-insensitively, how many required topics appear in
// the text. An empty topic list yields full coverage.
func Coverage(text string, requiredTopics []string) CoverageReport {
	report := CoverageReport{Ratio: 1}
	if len(requiredTopics) == 0 {
		return report
	}

	lower := strings.ToLower(text)
	for _, topic := range requiredTopics {
		trimmed := strings.TrimSpace(topic)
		if trimmed == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(trimmed)) {
			report.Covered = append(report.Covered, trimmed)
		} else {
			report.Missing = append(report.Missing, trimmed)
		}
	}

	total := len(report.Covered) + len(report.Missing)
	if total == 0 {
		return CoverageReport{Ratio: 1}
	}
	report.Ratio = float64(len(report.Covered)) / float64(total)
	return report
}

// LatencyMS returns the elapsed time since start in milliseconds.
func LatencyMS(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
