package types

import "time"

type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
	Intent    string `json:"intent,omitempty"`
	State     string `json:"state"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type UnlockRequest struct {
	Secret string `json:"secret"`
}

type UnlockResponse struct {
	Unlocked bool `json:"unlocked"`
}

type KnowledgeResponse struct {
	Knowledge string `json:"knowledge"`
	Chars     int    `json:"chars"`
}

type SetKnowledgeRequest struct {
	Text string `json:"text"`
}

type AppointmentView struct {
	Name      string    `json:"name"`
	DateTime  string    `json:"datetime"`
	Purpose   string    `json:"purpose"`
	CreatedAt time.Time `json:"created_at"`
}
