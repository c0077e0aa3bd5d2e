package dto

type StartSessionRequest struct {
	Task string `json:"task" validate:"required,max=4000"`
}

type StartSessionResponse struct {
	SessionId string `json:"session_id"`
	Question  string `json:"question"`
	Index     int    `json:"index"`
	Total     int    `json:"total"`
}

// SubmitAnswerRequest falls back to the session cookie when SessionId is empty.
type SubmitAnswerRequest struct {
	SessionId string `json:"session_id"`
	Answer    string `json:"answer" validate:"required,max=8000"`
}

// SubmitAnswerResponse carries the next question, or only Complete once the
// last answer is in.
type SubmitAnswerResponse struct {
	Question string `json:"question,omitempty"`
	Index    int    `json:"index,omitempty"`
	Total    int    `json:"total,omitempty"`
	Complete bool   `json:"complete"`
}

type SessionStatusResponse struct {
	SessionId string `json:"session_id"`
	Task      string `json:"task"`
	Answered  int    `json:"answered"`
	Total     int    `json:"total"`
	Complete  bool   `json:"complete"`
	Question  string `json:"question,omitempty"`
	Index     int    `json:"index,omitempty"`
}

type GenerateRequest struct {
	SessionId string `json:"session_id" query:"session_id"`
}

type GenerateFromAnswersRequest struct {
	Task    string   `json:"task"`
	Answers []string `json:"answers" validate:"required"`
}

// RenderSectionRequest carries section text; empty content removes the
// placeholder and inserts nothing.
type RenderSectionRequest struct {
	Content string `json:"content"`
}

type HealthResponse struct {
	Message string `json:"message"`
}
