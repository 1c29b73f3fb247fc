// Package voice tracks the voice channel the overlay mirrors: the
// authenticated user, the current channel, and per-member speaking flags.
package voice

import (
	"slices"
	"strings"
	"sync"

	"go.aimuz.me/overvoice/discordrpc"
)

// Member is one user in the mirrored voice channel.
type Member struct {
	User     discordrpc.User `json:"user"`
	Nick     string          `json:"nick,omitempty"`
	Speaking bool            `json:"speaking"`
}

// Snapshot is the frontend-facing view of the current voice state.
type Snapshot struct {
	User      *discordrpc.User `json:"user,omitempty"`
	ChannelID string           `json:"channelId"`
	Members   []Member         `json:"members"`
}

// Emitter delivers a named event to the overlay frontend.
type Emitter func(name string, data any)

// State is the shared voice store. The RPC session is its only writer; the
// frontend reads snapshots, so access is guarded.
type State struct {
	mu        sync.RWMutex
	user      *discordrpc.User
	channelID string
	members   map[string]*Member
	emit      Emitter
}

// NewState creates an empty State emitting change events through emit.
// A nil emitter is allowed for headless use.
func NewState(emit Emitter) *State {
	if emit == nil {
		emit = func(string, any) {}
	}
	return &State{
		members: make(map[string]*Member),
		emit:    emit,
	}
}

// SetCurrentUser records the authenticated user.
func (s *State) SetCurrentUser(u discordrpc.User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()

	s.emit(EventUser, u)
}

// SetChannel replaces the membership set with states and switches the
// current channel to channelID.
func (s *State) SetChannel(channelID string, states []discordrpc.VoiceState) {
	s.mu.Lock()
	s.channelID = channelID
	s.members = make(map[string]*Member, len(states))
	for _, vs := range states {
		s.members[vs.User.ID] = &Member{User: vs.User, Nick: vs.Nick}
	}
	members := s.memberListLocked()
	s.mu.Unlock()

	s.emit(EventChannel, channelID)
	s.emit(EventMembers, members)
}

// SetChannelID updates the current channel without touching membership.
func (s *State) SetChannelID(channelID string) {
	s.mu.Lock()
	s.channelID = channelID
	s.mu.Unlock()

	s.emit(EventChannel, channelID)
}

// SetSpeaking flips the speaking flag for userID. Unknown users are ignored.
func (s *State) SetSpeaking(userID string, speaking bool) {
	s.mu.Lock()
	m, ok := s.members[userID]
	if ok {
		m.Speaking = speaking
	}
	s.mu.Unlock()

	if ok {
		s.emit(EventSpeaking, SpeakingEvent{UserID: userID, Speaking: speaking})
	}
}

// UpsertVoiceState adds or replaces the member for the given voice state.
func (s *State) UpsertVoiceState(vs discordrpc.VoiceState) {
	s.mu.Lock()
	s.members[vs.User.ID] = &Member{User: vs.User, Nick: vs.Nick}
	members := s.memberListLocked()
	s.mu.Unlock()

	s.emit(EventMembers, members)
}

// RemoveVoiceState removes the member with userID from the channel.
func (s *State) RemoveVoiceState(userID string) {
	s.mu.Lock()
	delete(s.members, userID)
	members := s.memberListLocked()
	s.mu.Unlock()

	s.emit(EventMembers, members)
}

// Snapshot returns a copy of the current state for the frontend.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		ChannelID: s.channelID,
		Members:   s.memberListLocked(),
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// memberListLocked returns members sorted by display name for stable rendering.
// Callers must hold at least the read lock.
func (s *State) memberListLocked() []Member {
	members := make([]Member, 0, len(s.members))
	for _, m := range s.members {
		members = append(members, *m)
	}
	slices.SortFunc(members, func(a, b Member) int {
		if c := strings.Compare(displayName(a), displayName(b)); c != 0 {
			return c
		}
		return strings.Compare(a.User.ID, b.User.ID)
	})
	return members
}

func displayName(m Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	return m.User.Username
}
