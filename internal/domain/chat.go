package domain

// Role is the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is one turn of a conversation. Model turns are assembled by
// appending streamed fragments to Text.
type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}
