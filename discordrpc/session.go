package discordrpc

import (
	"context"
	"fmt"
	"log/slog"
)

// StateSink is the mutation surface the session drives. The session never
// reads the store back; it only pushes what the protocol delivers.
type StateSink interface {
	SetCurrentUser(u User)
	SetChannel(channelID string, states []VoiceState)
	SetChannelID(channelID string)
	SetSpeaking(userID string, speaking bool)
	UpsertVoiceState(state VoiceState)
	RemoveVoiceState(userID string)
}

// TokenStore persists the single cached access token across restarts.
// Get returns the empty string when no token has been stored.
type TokenStore interface {
	Get() (string, error)
	Set(token string) error
}

// Conn is the outbound half of the RPC socket the session writes to.
type Conn interface {
	Send(ctx context.Context, out Outbound) error
}

// channelEvents are the per-channel subscriptions issued on every channel
// transition, one SUBSCRIBE frame per entry.
// TODO: VOICE_STATE_DELETE is listed twice; confirm whether the duplicate
// subscription is load-bearing before removing it.
var channelEvents = []string{
	EvtSpeakingStart,
	EvtSpeakingStop,
	EvtVoiceStateCreate,
	EvtVoiceStateDelete,
	EvtVoiceStateDelete,
}

// Session drives the RPC handshake and reacts to inbound payloads: it
// authenticates with a cached token or a fresh authorization, subscribes to
// channel-scoped events, and pushes membership changes into the state sink.
// One Session per connection; a dropped connection ends the session.
type Session struct {
	clientID  string
	conn      Conn
	tokens    TokenStore
	exchanger *TokenExchanger
	state     StateSink

	channelID string
}

// SessionConfig holds the collaborators a Session is constructed with.
type SessionConfig struct {
	ClientID  string
	Conn      Conn
	Tokens    TokenStore
	Exchanger *TokenExchanger
	State     StateSink
}

// NewSession creates a new Session.
func NewSession(cfg SessionConfig) *Session {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}
	exchanger := cfg.Exchanger
	if exchanger == nil {
		exchanger = NewTokenExchanger("")
	}
	return &Session{
		clientID:  clientID,
		conn:      cfg.Conn,
		tokens:    cfg.Tokens,
		exchanger: exchanger,
		state:     cfg.State,
	}
}

// Run consumes inbound payloads one at a time in arrival order until the
// channel closes or the context is cancelled. A failed handler terminates
// only that payload's handling, not the session.
func (s *Session) Run(ctx context.Context, msgs <-chan Payload) {
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-msgs:
			if !ok {
				slog.Info("rpc session ended")
				return
			}
			if err := s.handle(ctx, p); err != nil {
				slog.Error("handle payload", "kind", p.payloadKind(), "error", err)
			}
		}
	}
}

func (s *Session) handle(ctx context.Context, payload Payload) error {
	switch p := payload.(type) {
	case ReadyPayload:
		token, err := s.tokens.Get()
		if err != nil {
			return fmt.Errorf("read cached token: %w", err)
		}
		if token != "" {
			return s.authenticate(ctx, token)
		}
		return s.authorize(ctx)

	case AuthorizePayload:
		token, err := s.exchanger.Exchange(ctx, p.Code)
		if err != nil {
			return fmt.Errorf("exchange code: %w", err)
		}
		if err := s.tokens.Set(token); err != nil {
			return fmt.Errorf("persist token: %w", err)
		}
		return s.authenticate(ctx, token)

	case AuthenticatePayload:
		s.state.SetCurrentUser(p.User)
		if err := s.requestSelectedChannel(ctx); err != nil {
			return err
		}
		return s.conn.Send(ctx, newSubscription(EvtVoiceChannelSelect, nil))

	case SelectedVoiceChannelPayload:
		if p.ID != "" {
			if err := s.Subscribe(ctx, p.ID); err != nil {
				return err
			}
		}
		s.channelID = p.ID
		s.state.SetChannel(p.ID, p.VoiceStates)
		return nil

	case SpeakingStartPayload:
		s.state.SetSpeaking(p.UserID, true)
		return nil

	case SpeakingStopPayload:
		s.state.SetSpeaking(p.UserID, false)
		return nil

	case VoiceStateCreatePayload:
		s.state.UpsertVoiceState(p.VoiceState)
		return nil

	case VoiceStateDeletePayload:
		s.state.RemoveVoiceState(p.User.ID)
		return nil

	case ChannelPayload:
		// Refresh membership after a channel switch.
		return s.requestSelectedChannel(ctx)

	case VoiceChannelSelectPayload:
		if err := s.requestSelectedChannel(ctx); err != nil {
			return err
		}
		s.channelID = p.ChannelID
		s.state.SetChannelID(p.ChannelID)
		if p.ChannelID != "" {
			return s.conn.Send(ctx, newCommand(CmdGetChannel, channelArgs{ChannelID: p.ChannelID}))
		}
		return nil

	case SubscribeAckPayload, UnsubscribeAckPayload:
		return nil

	default:
		slog.Debug("unhandled rpc payload", "kind", payload.payloadKind())
		return nil
	}
}

// ChannelID returns the voice channel the session currently tracks.
func (s *Session) ChannelID() string {
	return s.channelID
}

// Subscribe issues the per-channel event subscriptions for channelID.
// Previous subscriptions are not torn down before switching.
func (s *Session) Subscribe(ctx context.Context, channelID string) error {
	for _, evt := range channelEvents {
		if err := s.conn.Send(ctx, newSubscription(evt, channelArgs{ChannelID: channelID})); err != nil {
			return fmt.Errorf("subscribe %s: %w", evt, err)
		}
	}
	return nil
}

// Unsubscribe tears down the per-channel event subscriptions for channelID.
func (s *Session) Unsubscribe(ctx context.Context, channelID string) error {
	for _, evt := range channelEvents {
		if err := s.conn.Send(ctx, newUnsubscription(evt, channelArgs{ChannelID: channelID})); err != nil {
			return fmt.Errorf("unsubscribe %s: %w", evt, err)
		}
	}
	return nil
}

func (s *Session) authenticate(ctx context.Context, token string) error {
	return s.conn.Send(ctx, newCommand(CmdAuthenticate, authenticateArgs{AccessToken: token}))
}

func (s *Session) authorize(ctx context.Context) error {
	return s.conn.Send(ctx, newCommand(CmdAuthorize, authorizeArgs{
		ClientID: s.clientID,
		Scopes:   []string{"rpc"},
	}))
}

func (s *Session) requestSelectedChannel(ctx context.Context) error {
	return s.conn.Send(ctx, newCommand(CmdGetSelectedVoiceChannel, nil))
}
