package model

const (
	StateOpen       = "open"
	StateInProgress = "in_progress"
	StateClosed     = "closed"
)

// ValidState reports whether s is one of the allowed status states.
func ValidState(s string) bool {
	switch s {
	case StateOpen, StateInProgress, StateClosed:
		return true
	}
	return false
}

type Status struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	State       string  `json:"state"`
	UserID      int64   `json:"user_id"`
	Timestamps
}

type CreateStatusRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	State       string  `json:"state"`
}

// UpdateStatusRequest carries a partial update: nil fields are left
// untouched.
type UpdateStatusRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	State       *string `json:"state"`
}

// StatusFilter narrows list queries. UserID 0 means no ownership filter
// (admin listing); State "" means all states.
type StatusFilter struct {
	UserID int64
	State  string
}
