package grader

// Result is the outcome of one grading step.
//
// Success means every gate passed and the program was scored; Score is then
// the fraction of expected cells and registers that matched. A failed gate
// always has Score 0 and exactly one message.
type Result struct {
	Success  bool     `json:"success"`
	Score    float64  `json:"score"`
	Messages []string `json:"messages"`
}

// Failed returns a gate failure.
func Failed(message string) *Result {
	return &Result{Success: false, Score: 0, Messages: []string{message}}
}

// Passed returns a gate success with full marks.
func Passed() *Result {
	return &Result{Success: true, Score: 1, Messages: []string{}}
}

// Scored returns the outcome of comparing attempted checks. Nothing attempted
// is a vacuous pass.
func Scored(matched, attempted int, messages []string) *Result {
	if messages == nil {
		messages = []string{}
	}
	score := 1.0
	if attempted > 0 {
		score = float64(matched) / float64(attempted)
	}
	return &Result{Success: true, Score: score, Messages: messages}
}

// Perfect reports whether the result passed with full marks.
func (r *Result) Perfect() bool {
	return r.Success && r.Score == 1
}
