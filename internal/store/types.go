package store

import "time"

// Run is one execution of a suite.
type Run struct {
	ID        string    `json:"id"`
	Suite     string    `json:"suite"`
	StartedAt time.Time `json:"started_at"`

	// Seq is assigned by BeginRun and orders runs.
	Seq int64 `json:"seq"`

	Total    int  `json:"total"`
	Passed   int  `json:"passed"`
	Finished bool `json:"finished"`
}

// Result is one graded test case within a run.
type Result struct {
	ID       string   `json:"id"`
	RunID    string   `json:"run_id"`
	Position int      `json:"position"`
	Name     string   `json:"name"`
	Program  string   `json:"program"`
	Success  bool     `json:"success"`
	Score    float64  `json:"score"`
	Messages []string `json:"messages"`

	// Error holds a validation or protocol error that prevented grading.
	Error string `json:"error,omitempty"`

	// ExpectedDigest fingerprints the expected state the case was graded against.
	ExpectedDigest string `json:"expected_digest,omitempty"`
}
