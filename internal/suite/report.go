package suite

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// CaseResult is the outcome of one test case.
type CaseResult struct {
	Position    int      `json:"position"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Program     string   `json:"program"`
	Harness     string   `json:"harness,omitempty"`
	Success     bool     `json:"success"`
	Score       float64  `json:"score"`
	Messages    []string `json:"messages"`

	// Error is set when the case could not be graded at all.
	Error string `json:"error,omitempty"`

	// ExpectedDigest fingerprints the expected state.
	ExpectedDigest string `json:"expected_digest,omitempty"`
}

// Passed reports whether the case was graded with full marks.
func (c CaseResult) Passed() bool {
	return c.Error == "" && c.Success && c.Score == 1
}

// Report is the outcome of running a suite.
type Report struct {
	RunID  string       `json:"run_id"`
	Suite  string       `json:"suite"`
	Cases  []CaseResult `json:"cases"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Total  int          `json:"total"`
}

func (r *Report) tally() {
	r.Passed, r.Failed = 0, 0
	for _, c := range r.Cases {
		if c.Passed() {
			r.Passed++
		} else {
			r.Failed++
		}
	}
	r.Total = len(r.Cases)
}

// OK reports whether every case passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Tree renders the report as a text tree: one branch per case, with its
// messages or error as leaves.
//
//	factorial (1/2 passed)
//	├── ✓ factorial of 5
//	└── ✗ factorial of 0 (score 0.50)
//	    └── Incorrect value in $v0! Expected: 1 Actual: 0x00000000
func (r *Report) Tree() string {
	tree := treeprint.NewWithRoot(fmt.Sprintf("%s (%d/%d passed)", r.Suite, r.Passed, r.Total))
	for _, c := range r.Cases {
		switch {
		case c.Error != "":
			branch := tree.AddBranch(fmt.Sprintf("✗ %s (error)", c.Name))
			branch.AddNode(c.Error)
		case c.Passed():
			tree.AddNode(fmt.Sprintf("✓ %s", c.Name))
		default:
			label := fmt.Sprintf("✗ %s (score %.2f)", c.Name, c.Score)
			if len(c.Messages) == 0 {
				tree.AddNode(label)
				continue
			}
			branch := tree.AddBranch(label)
			for _, m := range c.Messages {
				branch.AddNode(m)
			}
		}
	}
	return tree.String()
}
