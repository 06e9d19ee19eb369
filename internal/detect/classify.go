package detect

import "strings"

// Classification is the result of one sampling pass.
type Classification string

// Classification results.
const (
	ClassificationNoResult Classification = "no_result"
	ClassificationTestRun  Classification = "test_run"
	ClassificationAccepted Classification = "accepted"
	ClassificationFailed   Classification = "failed"
)

// failureKeywords veto acceptance anywhere on the page.
var failureKeywords = []string{
	"Wrong Answer",
	"Time Limit Exceeded",
	"Runtime Error",
	"Compilation Error",
	"Memory Limit Exceeded",
}

// submissionIndicators only appear on a genuine submission result, never on
// a plain test run.
var submissionIndicators = []string{
	"beats",
	"Beats",
	"faster than",
	"less than",
	"Runtime Distribution",
	"Memory Distribution",
}

// testRunMarkers appear on the run-code panel.
var testRunMarkers = []string{
	"Testcase",
	"Test case",
	"Run Code Results",
	"Case ",
}

// verdictFailureMarkers disqualify a verdict node whose container carries
// any failure wording.
var verdictFailureMarkers = []string{
	"Wrong",
	"Error",
	"Exceeded",
	"Failed",
	"Time Limit",
	"Memory Limit",
}

// Classify is a pure classification of one page observation. Only a verdict
// node reading exactly "Accepted", on a problem page with genuine-submission
// indicators and no failure wording anywhere, classifies as accepted.
func Classify(state PageState) Classification {
	if !strings.Contains(state.URL, "/problems/") {
		return ClassificationNoResult
	}

	// Submission-history views repeat old verdicts.
	if strings.Contains(state.URL, "/submissions/") {
		return ClassificationNoResult
	}

	if containsAny(state.BodyText, failureKeywords) {
		return ClassificationFailed
	}

	hasIndicator := containsAny(state.BodyText, submissionIndicators)
	if containsAny(state.BodyText, testRunMarkers) && !hasIndicator {
		return ClassificationTestRun
	}

	if !hasIndicator {
		return ClassificationNoResult
	}

	for _, verdict := range state.Verdicts {
		if strings.TrimSpace(verdict.Text) != "Accepted" {
			continue
		}
		if containsAny(verdict.ContainerText, verdictFailureMarkers) {
			continue
		}
		return ClassificationAccepted
	}

	return ClassificationNoResult
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}

	return false
}
