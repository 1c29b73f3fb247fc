package voice

// Event names for frontend communication.
const (
	EventUser     = "voice-user"
	EventChannel  = "voice-channel"
	EventMembers  = "voice-members"
	EventSpeaking = "voice-speaking"
)

// SpeakingEvent is a typed event for speaking flag changes.
type SpeakingEvent struct {
	UserID   string `json:"userId"`
	Speaking bool   `json:"speaking"`
}
