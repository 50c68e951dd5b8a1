package enrich

import "fmt"

func buildParsePrompt(schemaJSON, rawText string) string {
	return fmt.Sprintf(`You are an expert resume parser. Your job is to extract information from the
provided resume text and format it *perfectly* as a JSON object.
You must adhere strictly to the provided JSON schema. Do not add any extra
text or explanations outside of the JSON structure.

Here is the JSON schema you *must* follow:
%s

Here is the resume text to parse:
---
%s
---`, schemaJSON, rawText)
}

func buildBiasPrompt(schemaJSON, rawText string) string {
	return fmt.Sprintf(`You are an expert, unbiased HR screening assistant. Your job is to analyze
the provided resume text *only* for potential hiring biases.
Look for language related to:
- Gender (e.g., pronouns, names that strongly imply gender)
- Age (e.g., graduation dates far in the past, age-related terms)
- Ethnicity or National Origin (e.g., names, locations)
- Marital or Family Status

Return your findings *only* as a JSON object adhering to this schema:
%s

If no biases are found, return:
{"biasDetected": false, "findings": []}

Here is the resume text to analyze:
---
%s
---`, schemaJSON, rawText)
}

func buildAnonymizePrompt(schemaJSON, recordJSON string) string {
	return fmt.Sprintf(`You are an expert data anonymizer. Your job is to take the provided
JSON object and remove all Personally Identifiable Information (PII).

You must redact the following fields by replacing them with "[REDACTED]":
- All fields within 'personalInfo.name' (first, last, full)
- All fields within 'personalInfo.contact' (email, phone, address, linkedin, website)

Return the *entire*, *original* JSON structure, but with only those
specific fields redacted.

Here is the JSON schema to follow (the same as the input):
%s

Here is the JSON object to anonymize:
---
%s
---`, schemaJSON, recordJSON)
}

func buildSalaryPrompt(schemaJSON, recordJSON string) string {
	return fmt.Sprintf(`You are an expert financial analyst and HR compensation specialist.
Your job is to provide a salary estimation for the candidate based
on their parsed resume data.

Consider their:
- Experience level
- Industry
- Location
- Key skills

Return your estimation *only* as a JSON object adhering to this schema:
%s

Use the currency appropriate for the candidate's location (e.g., INR, USD, EUR).
If location is [REDACTED], default to USD.
Provide brief comments explaining your reasoning.

Here is the parsed (and anonymized) resume data:
---
%s
---`, schemaJSON, recordJSON)
}

func buildCareerPrompt(schemaJSON, recordJSON string) string {
	return fmt.Sprintf(`You are an expert career coach and industry analyst.
Your job is to analyze the provided parsed resume and suggest
a future career path.

Based on the candidate's experience, skills, and industry, provide:
1. A list of 3-5 realistic 'next-step' job titles.
2. A list of 2-3 key skills or technologies they should learn to advance.
3. A brief comment explaining your reasoning.

Return your analysis *only* as a JSON object adhering to this schema:
%s

Here is the parsed (and anonymized) resume data:
---
%s
---`, schemaJSON, recordJSON)
}
