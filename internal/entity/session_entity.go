package entity

import "time"

// Session is one in-progress questionnaire.
type Session struct {
	ID         string
	Task       string
	Questions  []string
	Answers    []string
	LastActive time.Time
	CreatedAt  time.Time
	// Generating is set while a document is being built from this session.
	Generating bool
}

// IsComplete reports whether every question has an answer.
func (s *Session) IsComplete() bool {
	return len(s.Answers) >= len(s.Questions)
}

// NextQuestion returns the first unanswered question and its 1-based index.
func (s *Session) NextQuestion() (string, int, bool) {
	if s.IsComplete() {
		return "", 0, false
	}
	i := len(s.Answers)
	return s.Questions[i], i + 1, true
}

func (s *Session) Clone() *Session {
	c := *s
	c.Questions = append([]string(nil), s.Questions...)
	c.Answers = append([]string(nil), s.Answers...)
	return &c
}
