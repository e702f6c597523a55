// internal/agent/chat/models.go
package chat

import "fmt"

type completionRequest struct {
	Messages []message `json:"messages"`
}

type message struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body accepted by POST /api/chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// UpstreamError is a non-2xx answer from the agent service.
type UpstreamError struct {
	Status  int
	Details interface{}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("agent returned status %d: %v", e.Status, e.Details)
}
