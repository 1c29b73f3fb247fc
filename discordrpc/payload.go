package discordrpc

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Command and event names from the Discord RPC vocabulary used by the overlay.
const (
	CmdAuthorize               = "AUTHORIZE"
	CmdAuthenticate            = "AUTHENTICATE"
	CmdGetSelectedVoiceChannel = "GET_SELECTED_VOICE_CHANNEL"
	CmdGetChannel              = "GET_CHANNEL"
	CmdSubscribe               = "SUBSCRIBE"
	CmdUnsubscribe             = "UNSUBSCRIBE"

	EvtReady              = "READY"
	EvtSpeakingStart      = "SPEAKING_START"
	EvtSpeakingStop       = "SPEAKING_STOP"
	EvtVoiceStateCreate   = "VOICE_STATE_CREATE"
	EvtVoiceStateDelete   = "VOICE_STATE_DELETE"
	EvtVoiceChannelSelect = "VOICE_CHANNEL_SELECT"
)

// User is the Discord user attached to authentication and voice state payloads.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
}

// VoiceState is one member's presence in a voice channel.
type VoiceState struct {
	Nick string `json:"nick,omitempty"`
	Mute bool   `json:"mute,omitempty"`
	User User   `json:"user"`
}

// Outbound is the frame shape written to the RPC socket.
// Nonce is generated per frame and never correlated against responses.
type Outbound struct {
	Cmd   string `json:"cmd,omitempty"`
	Args  any    `json:"args,omitempty"`
	Evt   string `json:"evt,omitempty"`
	Nonce string `json:"nonce"`
}

func newCommand(cmd string, args any) Outbound {
	return Outbound{Cmd: cmd, Args: args, Nonce: uuid.NewString()}
}

func newSubscription(evt string, args any) Outbound {
	return Outbound{Cmd: CmdSubscribe, Evt: evt, Args: args, Nonce: uuid.NewString()}
}

func newUnsubscription(evt string, args any) Outbound {
	return Outbound{Cmd: CmdUnsubscribe, Evt: evt, Args: args, Nonce: uuid.NewString()}
}

// Command argument shapes.

type authorizeArgs struct {
	ClientID string   `json:"client_id"`
	Scopes   []string `json:"scopes"`
}

type authenticateArgs struct {
	AccessToken string `json:"access_token"`
}

type channelArgs struct {
	ChannelID string `json:"channel_id"`
}

// Payload is a discriminated union over the inbound (cmd, evt) vocabulary.
// Check the concrete type via type switch; exactly one variant matches a frame.
type Payload interface {
	payloadKind() string
}

// ReadyPayload is delivered once when the local client accepts the connection.
type ReadyPayload struct {
	Version int `json:"v"`
}

func (ReadyPayload) payloadKind() string { return EvtReady }

// AuthorizePayload carries the one-time code from an AUTHORIZE response.
type AuthorizePayload struct {
	Code string `json:"code"`
}

func (AuthorizePayload) payloadKind() string { return CmdAuthorize }

// AuthenticatePayload acknowledges AUTHENTICATE with the authenticated user.
type AuthenticatePayload struct {
	User User `json:"user"`
}

func (AuthenticatePayload) payloadKind() string { return CmdAuthenticate }

// SelectedVoiceChannelPayload answers GET_SELECTED_VOICE_CHANNEL.
// ID is empty when the user is not in a voice channel.
type SelectedVoiceChannelPayload struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	VoiceStates []VoiceState `json:"voice_states"`
}

func (SelectedVoiceChannelPayload) payloadKind() string { return CmdGetSelectedVoiceChannel }

// ChannelPayload answers GET_CHANNEL.
type ChannelPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (ChannelPayload) payloadKind() string { return CmdGetChannel }

// SubscribeAckPayload acknowledges a SUBSCRIBE command.
type SubscribeAckPayload struct {
	Event string `json:"evt"`
}

func (SubscribeAckPayload) payloadKind() string { return CmdSubscribe }

// UnsubscribeAckPayload acknowledges an UNSUBSCRIBE command.
type UnsubscribeAckPayload struct {
	Event string `json:"evt"`
}

func (UnsubscribeAckPayload) payloadKind() string { return CmdUnsubscribe }

// SpeakingStartPayload marks a user as speaking in the subscribed channel.
type SpeakingStartPayload struct {
	UserID string `json:"user_id"`
}

func (SpeakingStartPayload) payloadKind() string { return EvtSpeakingStart }

// SpeakingStopPayload marks a user as no longer speaking.
type SpeakingStopPayload struct {
	UserID string `json:"user_id"`
}

func (SpeakingStopPayload) payloadKind() string { return EvtSpeakingStop }

// VoiceStateCreatePayload is delivered when a member joins the channel.
type VoiceStateCreatePayload struct {
	VoiceState
}

func (VoiceStateCreatePayload) payloadKind() string { return EvtVoiceStateCreate }

// VoiceStateDeletePayload is delivered when a member leaves the channel.
type VoiceStateDeletePayload struct {
	VoiceState
}

func (VoiceStateDeletePayload) payloadKind() string { return EvtVoiceStateDelete }

// VoiceChannelSelectPayload is delivered when the user switches voice channels.
// ChannelID is empty when the user disconnects from voice entirely.
type VoiceChannelSelectPayload struct {
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id,omitempty"`
}

func (VoiceChannelSelectPayload) payloadKind() string { return EvtVoiceChannelSelect }

// UnknownPayload holds frames outside the vocabulary above.
type UnknownPayload struct {
	Cmd string
	Evt string
	Raw json.RawMessage
}

func (p UnknownPayload) payloadKind() string {
	if p.Evt != "" {
		return p.Evt
	}
	return p.Cmd
}

// ParsePayload unmarshals an inbound frame into the appropriate Payload type.
// Events take precedence over the command tag, so event frames wrapped in a
// dispatch command still resolve to their event variant.
func ParsePayload(data []byte) (Payload, error) {
	var header struct {
		Cmd  string          `json:"cmd"`
		Evt  string          `json:"evt"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, err
	}

	switch header.Evt {
	case EvtReady:
		var p ReadyPayload
		if err := unmarshalData(header.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EvtSpeakingStart:
		var p SpeakingStartPayload
		if err := unmarshalData(header.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EvtSpeakingStop:
		var p SpeakingStopPayload
		if err := unmarshalData(header.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EvtVoiceStateCreate:
		var p VoiceStateCreatePayload
		if err := unmarshalData(header.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EvtVoiceStateDelete:
		var p VoiceStateDeletePayload
		if err := unmarshalData(header.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EvtVoiceChannelSelect:
		var p VoiceChannelSelectPayload
		if err := unmarshalData(header.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	}

	switch header.Cmd {
	case CmdAuthorize:
		var p AuthorizePayload
		if err := unmarshalData(header.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case CmdAuthenticate:
		var p AuthenticatePayload
		if err := unmarshalData(header.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case CmdGetSelectedVoiceChannel:
		var p SelectedVoiceChannelPayload
		if err := unmarshalData(header.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case CmdGetChannel:
		var p ChannelPayload
		if err := unmarshalData(header.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case CmdSubscribe:
		var p SubscribeAckPayload
		if err := unmarshalData(header.Data, &p); err != nil {
			return nil, err
		}
		if p.Event == "" {
			p.Event = header.Evt
		}
		return p, nil
	case CmdUnsubscribe:
		var p UnsubscribeAckPayload
		if err := unmarshalData(header.Data, &p); err != nil {
			return nil, err
		}
		if p.Event == "" {
			p.Event = header.Evt
		}
		return p, nil
	}

	return UnknownPayload{Cmd: header.Cmd, Evt: header.Evt, Raw: data}, nil
}

// unmarshalData tolerates absent or null data; the zero value stands in.
func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
