package matches

import "fmt"

func buildMatchPrompt(schemaJSON, resumeJSON, jobJSON string) string {
	return fmt.Sprintf(`You are an expert, unbiased HR recruitment analyst.
Your task is to perform a detailed, quantitative, and qualitative match
between the provided candidate's resume and the job description.

You must generate a 'matchedAt' timestamp in ISO 8601 format.
The 'resumeId' must be copied from the input resume data 'id' field.
The 'jobTitle' and 'company' must be copied from the input job description.

Return your analysis *only* as a JSON object adhering strictly to the
provided JSON schema. Do not include any other text or markdown.

Here is the JSON schema you *must* follow:
%s

Here is the candidate's resume data (in JSON format):
---
%s
---

Here is the job description (in JSON format):
---
%s
---`, schemaJSON, resumeJSON, jobJSON)
}
