// Package app provides the core application service for Wails bindings.
package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/wailsapp/wails/v3/pkg/application"

	"go.aimuz.me/overvoice/config"
	"go.aimuz.me/overvoice/discordrpc"
	"go.aimuz.me/overvoice/hotkey"
	"go.aimuz.me/overvoice/internal/voice"
	"go.aimuz.me/overvoice/tokenstore"
)

// Service provides application functionality bound to Wails.
// This struct focuses on orchestration; the protocol lives in discordrpc.
type Service struct {
	cfg    *config.Config
	tokens *tokenstore.Store
	state  *voice.State
	hotkey *hotkey.Manager

	client *discordrpc.Client
	cancel context.CancelFunc

	// UI references - set via Init
	app    *application.App
	window application.Window

	mu     sync.Mutex
	hidden bool

	// Version info (set by caller)
	version string
}

// New creates a new Service. Call Init() after Wails app is created.
func New(version string) *Service {
	return &Service{version: version}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init initializes the service with app and window references.
// Must be called after Wails application is created.
func (s *Service) Init(app *application.App, window application.Window) {
	s.app = app
	s.window = window

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = &config.Config{}
	}
	s.cfg = cfg

	s.state = voice.NewState(func(name string, data any) {
		if s.app != nil {
			s.app.Event.Emit(name, data)
		}
	})

	s.setupTokens()

	if cfg.HotkeyEnabled {
		s.setupHotkey()
	}

	s.startSession()
}

// Shutdown cleans up resources.
func (s *Service) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			slog.Error("close rpc socket", "error", err)
		}
	}
	if s.hotkey != nil {
		s.hotkey.Stop()
	}
	if s.tokens != nil {
		if err := s.tokens.Close(); err != nil {
			slog.Error("close token store", "error", err)
		}
	}
}

func (s *Service) setupTokens() {
	dataDir, err := config.DataDir()
	if err != nil {
		slog.Error("get data dir for token store", "error", err)
		return
	}

	storePath := filepath.Join(dataDir, "tokens")
	store, err := tokenstore.Open(storePath)
	if err != nil {
		slog.Error("init token store", "error", err)
		return
	}
	s.tokens = store
	slog.Info("token store initialized", "path", storePath)
}

func (s *Service) setupHotkey() {
	s.hotkey = hotkey.NewManager(func() {
		s.ToggleOverlay()
	})

	if err := s.hotkey.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
	}
}

// startSession dials the local RPC socket and runs the session until the
// socket closes. There is no reconnect; restarting the app reconnects.
func (s *Service) startSession() {
	if s.tokens == nil {
		slog.Error("token store unavailable, rpc session not started")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	client := discordrpc.NewClient(discordrpc.ClientConfig{
		ClientID: s.cfg.ClientID,
		Endpoint: s.cfg.RPCEndpoint,
		Origin:   s.cfg.RPCOrigin,
	})
	s.client = client

	session := discordrpc.NewSession(discordrpc.SessionConfig{
		ClientID:  s.cfg.ClientID,
		Conn:      client,
		Tokens:    s.tokens,
		Exchanger: discordrpc.NewTokenExchanger(s.cfg.TokenURL),
		State:     s.state,
	})

	go func() {
		if err := client.Connect(ctx); err != nil {
			slog.Error("connect rpc socket", "error", err)
			return
		}
		slog.Info("rpc socket connected")

		go func() {
			select {
			case err := <-client.Errors():
				slog.Error("rpc socket", "error", err)
			case <-ctx.Done():
			}
		}()

		session.Run(ctx, client.Messages())
	}()
}

// GetVoiceState returns the current voice snapshot for the frontend.
func (s *Service) GetVoiceState() voice.Snapshot {
	if s.state == nil {
		return voice.Snapshot{}
	}
	return s.state.Snapshot()
}

// ToggleOverlay flips overlay window visibility.
func (s *Service) ToggleOverlay() {
	if s.window == nil {
		return
	}

	s.mu.Lock()
	s.hidden = !s.hidden
	hidden := s.hidden
	s.mu.Unlock()

	if hidden {
		s.window.Hide()
	} else {
		s.window.Show()
		s.window.Focus()
	}
}

// ShowOverlay brings the overlay window back.
func (s *Service) ShowOverlay() {
	if s.window == nil {
		return
	}

	s.mu.Lock()
	s.hidden = false
	s.mu.Unlock()

	s.window.Show()
	s.window.Focus()
}
