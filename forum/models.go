package forum

// User is a forum account. Passwords are stored and compared in plain text;
// this is a simulated backend, not an authentication system.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Topic is a named discussion thread.
type Topic struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Creator     string `json:"creator"`
	Description string `json:"description"`
	Hidden      bool   `json:"hidden"`
}

// Message is a single post within a topic.
type Message struct {
	ID      string `json:"id"`
	TopicID string `json:"topicId"`
	Author  string `json:"author"`
	Text    string `json:"text"`
	Hidden  bool   `json:"hidden"`
	// Time is an ISO-8601 timestamp.
	Time string `json:"time"`
}

// LogEntry is an immutable record of a user-initiated action.
type LogEntry struct {
	Username string         `json:"username"`
	Action   string         `json:"action"`
	Details  map[string]any `json:"details"`
	// Time is an ISO-8601 timestamp.
	Time string `json:"time"`
}

// Actions recorded in the activity log.
const (
	ActionRegister          = "register"
	ActionLogin             = "login"
	ActionLogout            = "logout"
	ActionChangeCredentials = "change_credentials"
	ActionCreateTopic       = "create_topic"
	ActionSendMessage       = "send_message"
)

// IsAdmin reports whether the user exists and has the admin flag set.
func IsAdmin(u *User) bool {
	return u != nil && u.IsAdmin
}
