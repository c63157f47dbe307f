// Package domain contains entity without logic, just meta-data
package domain

const (
	MaxUsernameLen  = 36
	DefaultUsername = "Anonymous"
)

// ConnID identifies one transport-level connection. Stable for the
// connection's lifetime and unique process-wide.
type ConnID string

type User struct {
	ID       ConnID `json:"id"`
	Username string `json:"username"`
	Color    Color  `json:"color"`
}

// NewUser avoids raw literals in adapters and keeps construction obvious.
// Blank names fall back to the placeholder, overlong names get truncated.
func NewUser(id ConnID, username string, color Color) *User {
	if username == "" {
		username = DefaultUsername
	}
	if len(username) > MaxUsernameLen {
		username = username[:MaxUsernameLen]
	}
	return &User{ID: id, Username: username, Color: color}
}
