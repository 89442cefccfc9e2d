package pipeline

import (
	"regexp"

	"github.com/opencouncil/crux/internal/model"
)

// Sanitizer strips residual PII from a result before it leaves this
// subsystem. Applied once, last; treated as a pure, always-succeeding
// transform.
type Sanitizer interface {
	Sanitize(result *model.PipelineResult) *model.PipelineResult
}

// RegexSanitizer scrubs emails, URLs and phone-shaped digit runs from
// model-authored free text. Speaker tags are left alone: they carry the
// display names the report is expected to show.
type RegexSanitizer struct {
	patterns []*regexp.Regexp
}

// NewRegexSanitizer builds the default sanitizer.
func NewRegexSanitizer() *RegexSanitizer {
	return &RegexSanitizer{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
			regexp.MustCompile(`https?://[^\s)]+`),
			regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`),
		},
	}
}

const redacted = "[redacted]"

// Sanitize scrubs the model-authored fields in place and returns the
// result for chaining.
func (s *RegexSanitizer) Sanitize(result *model.PipelineResult) *model.PipelineResult {
	for i := range result.SubtopicCruxes {
		result.SubtopicCruxes[i].CruxClaim = s.scrub(result.SubtopicCruxes[i].CruxClaim)
		result.SubtopicCruxes[i].Explanation = s.scrub(result.SubtopicCruxes[i].Explanation)
	}
	return result
}

func (s *RegexSanitizer) scrub(text string) string {
	for _, p := range s.patterns {
		text = p.ReplaceAllString(text, redacted)
	}
	return text
}
