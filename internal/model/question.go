package model

// TestCase is a single input/expected-output pair attached to a question.
// Both sides are opaque text supplied by the question-generation backend.
type TestCase struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Question is one generated coding challenge. Immutable once received from
// the question-generation backend; the ordinal position in the session's
// question list is its implicit index.
type Question struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category,omitempty"`
	FunctionName string     `json:"functionName,omitempty"`
	TestCases    []TestCase `json:"testCases"`
	Hints        []string   `json:"hints,omitempty"`
}
