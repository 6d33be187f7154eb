package eval

// Sample is one validation query with the themes a good answer should
// touch.
type Sample struct {
	Query          string
	ExpectedThemes []string
}

// DefaultValidationSet holds ten standard 10-K analysis queries used by
// the evaluation runner.
func DefaultValidationSet() []Sample {
	return []Sample{
		{
			Query:          "What are the key risks the company faces in FY2024?",
			ExpectedThemes: []string{"cybersecurity", "regulation", "competition", "supply chain", "AI"},
		},
		{
			Query:          "What is the company's cloud strategy?",
			ExpectedThemes: []string{"cloud", "AI", "infrastructure", "data centre"},
		},
		{
			Query:          "How does leadership describe its AI investments?",
			ExpectedThemes: []string{"AI", "investment", "infrastructure", "research"},
		},
		{
			Query:          "What are the main competition risks described in the filings?",
			ExpectedThemes: []string{"competition", "market share", "pricing"},
		},
		{
			Query:          "How has revenue changed between FY2023 and FY2025?",
			ExpectedThemes: []string{"revenue", "growth", "fiscal year"},
		},
		{
			Query:          "Compare operating income over the last three fiscal years.",
			ExpectedThemes: []string{"operating income", "growth", "margin"},
		},
		{
			Query:          "What is the year-over-year revenue growth?",
			ExpectedThemes: []string{"revenue", "yoy", "growth"},
		},
		{
			Query:          "Show a chart of the revenue trend.",
			ExpectedThemes: []string{"revenue", "trend", "chart"},
		},
		{
			Query:          "What does management say about regulatory and legal exposure?",
			ExpectedThemes: []string{"regulation", "legal", "compliance"},
		},
		{
			Query:          "Describe the capital return programme mentioned in the reports.",
			ExpectedThemes: []string{"dividend", "buyback", "capital"},
		},
	}
}
