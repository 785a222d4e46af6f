package ai

import "strings"

// Shared prompt template used by every provider adapter so that scores stay
// comparable across models.

func evaluationSystemPrompt() string {
	return "You are an expert reviewer for a challenge-based hiring platform. Score the candidate submission " +
		"against the challenge and respond with a single JSON object containing technicalScore, clarityScore and " +
		"communicationScore (integers 0-100), feedback (string), strengths (array of strings) and improvements " +
		"(array of strings). Do not include any text outside the JSON object."
}

func buildEvaluationPrompt(req EvaluationRequest) string {
	builder := strings.Builder{}
	builder.WriteString("# Challenge\n")
	builder.WriteString(req.ChallengeTitle)
	builder.WriteString("\n\n## Description\n")
	builder.WriteString(req.ChallengeDescription)
	if req.Difficulty != "" {
		builder.WriteString("\n\n## Difficulty\n")
		builder.WriteString(req.Difficulty)
	}
	if req.Category != "" {
		builder.WriteString("\n\n## Category\n")
		builder.WriteString(req.Category)
	}
	if len(req.Tags) > 0 {
		builder.WriteString("\n\n## Tags\n")
		builder.WriteString(strings.Join(req.Tags, ", "))
	}
	builder.WriteString("\n\n# Submission\n")
	if req.SubmissionLink != "" {
		builder.WriteString("Link: ")
		builder.WriteString(req.SubmissionLink)
		builder.WriteString("\n")
	}
	if req.SubmissionText != "" {
		builder.WriteString(req.SubmissionText)
	}
	if req.VideoTranscript != "" {
		builder.WriteString("\n\n## Video Walkthrough Transcript\n")
		builder.WriteString(req.VideoTranscript)
	}
	builder.WriteString("\n\nReturn JSON.")
	return builder.String()
}
