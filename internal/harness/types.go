package harness

// Case kinds.
const (
	KindFilter = "filter"
	KindSelect = "select"
	KindFuzzy  = "fuzzy"
)

// CaseResult is the outcome of one scenario case.
type CaseResult struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Input string `json:"input"`
	Text  string `json:"text"`

	// Codes lists the diagnostic codes in clause order.
	Codes []string `json:"codes,omitempty"`

	// Params are placeholder values in literal form.
	Params []string `json:"params,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	Strategy string       `json:"strategy"`
	Cases    []CaseResult `json:"cases"`

	// Errors holds one message per failed expectation.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCase appends a case outcome.
func (r *Result) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
}
