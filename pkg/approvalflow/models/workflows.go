package models

// CreateWorkflowRequest is the payload for creating a workflow.
type CreateWorkflowRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

// UpdateStatusRequest asks for a status change, the status is matched case-insensitively.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UserSummary is the creator block embedded in a WorkflowView.
type UserSummary struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// WorkflowView is the external representation of a workflow. Timestamps are RFC 3339.
type WorkflowView struct {
	ID                  string       `json:"id"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	Status              string       `json:"status"`
	Priority            string       `json:"priority"`
	Category            string       `json:"category"`
	CreatedBy           *UserSummary `json:"createdBy"`
	CreatedAt           string       `json:"createdAt"`
	UpdatedAt           string       `json:"updatedAt"`
	AllowedNextStatuses []string     `json:"allowedNextStatuses"`
}

// TransitionEventView is one entry of GET /api/workflows/{id}/history.
type TransitionEventView struct {
	ID         int64  `json:"id"`
	WorkflowID string `json:"workflowId"`
	Kind       string `json:"kind"`
	From       string `json:"from,omitempty"`
	To         string `json:"to"`
	ActorID    int64  `json:"actorId"`
	ActorRole  string `json:"actorRole"`
	Text       string `json:"text"`
	At         string `json:"at"`
}
