package voice

import (
	"testing"

	"go.aimuz.me/overvoice/discordrpc"
)

type emitted struct {
	name string
	data any
}

func newRecordingState() (*State, *[]emitted) {
	var events []emitted
	state := NewState(func(name string, data any) {
		events = append(events, emitted{name: name, data: data})
	})
	return state, &events
}

func TestSetChannelReplacesMembership(t *testing.T) {
	state, events := newRecordingState()

	state.SetChannel("1", []discordrpc.VoiceState{
		{User: discordrpc.User{ID: "u1", Username: "alice"}},
	})
	state.SetChannel("2", []discordrpc.VoiceState{
		{User: discordrpc.User{ID: "u2", Username: "bob"}, Nick: "Bobby"},
		{User: discordrpc.User{ID: "u3", Username: "carol"}},
	})

	snap := state.Snapshot()
	if snap.ChannelID != "2" {
		t.Errorf("ChannelID = %q, want %q", snap.ChannelID, "2")
	}
	if len(snap.Members) != 2 {
		t.Fatalf("len(Members) = %d, want 2", len(snap.Members))
	}
	// Sorted by display name: "Bobby" before "carol".
	if snap.Members[0].User.ID != "u2" || snap.Members[1].User.ID != "u3" {
		t.Errorf("member order = [%s %s], want [u2 u3]",
			snap.Members[0].User.ID, snap.Members[1].User.ID)
	}

	var channelEvents, memberEvents int
	for _, e := range *events {
		switch e.name {
		case EventChannel:
			channelEvents++
		case EventMembers:
			memberEvents++
		}
	}
	if channelEvents != 2 || memberEvents != 2 {
		t.Errorf("events = %d channel / %d members, want 2/2", channelEvents, memberEvents)
	}
}

func TestSetSpeaking(t *testing.T) {
	state, events := newRecordingState()
	state.SetChannel("1", []discordrpc.VoiceState{
		{User: discordrpc.User{ID: "u1", Username: "alice"}},
	})

	state.SetSpeaking("u1", true)

	snap := state.Snapshot()
	if !snap.Members[0].Speaking {
		t.Error("Speaking = false after SetSpeaking(true)")
	}

	last := (*events)[len(*events)-1]
	if last.name != EventSpeaking {
		t.Fatalf("last event = %q, want %q", last.name, EventSpeaking)
	}
	se, ok := last.data.(SpeakingEvent)
	if !ok {
		t.Fatalf("event data = %T, want SpeakingEvent", last.data)
	}
	if se.UserID != "u1" || !se.Speaking {
		t.Errorf("event = %+v, want u1 speaking", se)
	}

	state.SetSpeaking("u1", false)
	if state.Snapshot().Members[0].Speaking {
		t.Error("Speaking = true after SetSpeaking(false)")
	}
}

func TestSetSpeakingUnknownUser(t *testing.T) {
	state, events := newRecordingState()
	before := len(*events)

	state.SetSpeaking("ghost", true)

	if len(*events) != before {
		t.Errorf("events emitted for unknown user: %v", (*events)[before:])
	}
}

func TestUpsertAndRemove(t *testing.T) {
	state, _ := newRecordingState()

	state.UpsertVoiceState(discordrpc.VoiceState{User: discordrpc.User{ID: "u1", Username: "alice"}})
	state.UpsertVoiceState(discordrpc.VoiceState{
		User: discordrpc.User{ID: "u1", Username: "alice"},
		Nick: "Al",
	})

	snap := state.Snapshot()
	if len(snap.Members) != 1 {
		t.Fatalf("len(Members) = %d, want 1 after upsert of same user", len(snap.Members))
	}
	if snap.Members[0].Nick != "Al" {
		t.Errorf("Nick = %q, want %q", snap.Members[0].Nick, "Al")
	}

	state.RemoveVoiceState("u1")
	if got := len(state.Snapshot().Members); got != 0 {
		t.Errorf("len(Members) = %d after remove, want 0", got)
	}
}

func TestSetCurrentUser(t *testing.T) {
	state, events := newRecordingState()

	state.SetCurrentUser(discordrpc.User{ID: "me", Username: "alice"})

	snap := state.Snapshot()
	if snap.User == nil || snap.User.ID != "me" {
		t.Errorf("User = %+v, want me", snap.User)
	}
	if len(*events) != 1 || (*events)[0].name != EventUser {
		t.Errorf("events = %+v, want one %q", *events, EventUser)
	}
}

func TestNilEmitter(t *testing.T) {
	state := NewState(nil)
	state.SetChannel("1", nil)
	state.SetSpeaking("u1", true)
	if state.Snapshot().ChannelID != "1" {
		t.Error("state not updated with nil emitter")
	}
}
