package domain

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a conversation. Callers own the ordering: a history
// slice is always chronological.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Identity is the authenticated caller as reported by the API Gateway
// authorizer. It is used for logging only.
type Identity struct {
	Email    string
	Username string
}

// Name returns the best available display name for the identity.
func (i Identity) Name() string {
	if i.Email != "" {
		return i.Email
	}
	return i.Username
}

func (i Identity) IsZero() bool {
	return i.Email == "" && i.Username == ""
}
