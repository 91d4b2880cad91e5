package domain

const VoiceStepCompleted = "completed"

type VoiceStartResponse struct {
	SessionID    string   `json:"session_id"`
	NextStep     string   `json:"next_step"`
	Message      string   `json:"message"`
	ValidAnswers []string `json:"valid_answers,omitempty"`
}

type VoiceProcessRequest struct {
	SessionID   string `json:"session_id"`
	Text        string `json:"text"`
	CurrentStep string `json:"current_step"`
}

type VoiceProcessResponse struct {
	Text         string   `json:"text"`
	NextStep     string   `json:"next_step"`
	ValidAnswers []string `json:"valid_answers,omitempty"`
}
