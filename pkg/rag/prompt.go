package rag

import "fmt"

// DefaultSystemPrompt frames the model as a clinical documentation
// assistant. Callers may substitute their own system prompt per call.
const DefaultSystemPrompt = `You are a medical clinical documentation assistant.
Your role is to help doctors write clinical notes by analyzing similar cases and
providing structured documentation suggestions based on the retrieved medical cases.

Use the provided similar cases as reference, but adapt your response to the specific
patient case. Provide clear, concise, and clinically accurate documentation.`

// buildUserPrompt embeds the patient case and the retrieved-case context in
// the fixed instructional template requesting four structured sections.
func buildUserPrompt(query, contextText string) string {
	return fmt.Sprintf(`Based on the following similar medical cases, provide clinical
documentation suggestions for this patient case:

Patient Case:
%s

Similar Cases for Reference:
%s

Please provide:
1. Key findings and observations
2. Differential diagnosis considerations
3. Recommended diagnostic approach
4. Treatment considerations

Format your response as clear, professional clinical documentation.`, query, contextText)
}
