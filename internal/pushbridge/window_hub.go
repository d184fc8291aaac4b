package pushbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/security"
)

// ErrWindowNotFound is returned when a command targets a window that is no longer attached.
var ErrWindowNotFound = errors.New("window not found")

const (
	windowWriteTimeout = 5 * time.Second
	windowPongWait     = 60 * time.Second
	windowPingPeriod   = windowPongWait * 9 / 10
	windowMaxMessage   = 4096

	frameRegistered = "registered"
	frameLocation   = "location"
	frameFocus      = "focus"
	frameNavigate   = "navigate"
)

// WindowOpener opens a new application window on the user's devices when none is attached.
type WindowOpener interface {
	OpenWindow(ctx context.Context, userID, target string) error
}

// TokenVerifier validates the identity token a window presents when it attaches.
type TokenVerifier interface {
	Verify(token string) (*security.IdentityClaims, error)
}

type windowFrame struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	URL     string `json:"url,omitempty"`
	Focused bool   `json:"focused,omitempty"`
}

type windowConn struct {
	id      string
	userID  string
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	url     string
	focused bool
}

func (w *windowConn) snapshot() domain.ClientWindow {
	w.mu.Lock()
	defer w.mu.Unlock()
	return domain.ClientWindow{ID: w.id, UserID: w.userID, URL: w.url, Focused: w.focused}
}

func (w *windowConn) write(frame windowFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if err := w.conn.SetWriteDeadline(time.Now().Add(windowWriteTimeout)); err != nil {
		return err
	}
	return w.conn.WriteMessage(websocket.TextMessage, payload)
}

func (w *windowConn) ping() error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(windowWriteTimeout))
}

// WindowHub tracks application windows attached over WebSocket and drives them on behalf of the bridge.
type WindowHub struct {
	upgrader websocket.Upgrader
	verifier TokenVerifier
	opener   WindowOpener
	logger   *zap.Logger

	mu      sync.RWMutex
	windows map[string]*windowConn
}

// NewWindowHub constructs a hub. Connections are accepted from origin only, unless origin is empty,
// and must present an identity token accepted by verifier.
func NewWindowHub(origin string, verifier TokenVerifier, opener WindowOpener, logger *zap.Logger) *WindowHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WindowHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if origin == "" {
					return true
				}
				return strings.EqualFold(r.Header.Get("Origin"), strings.TrimRight(origin, "/"))
			},
		},
		verifier: verifier,
		opener:   opener,
		logger:   logger,
		windows:  make(map[string]*windowConn),
	}
}

// ServeHTTP authenticates the request, upgrades it and keeps the window attached until its connection drops.
// The identity token comes from a Bearer Authorization header or the "token" query parameter,
// since browsers cannot set headers on a WebSocket handshake. The initial location may be passed
// in the "url" query parameter.
func (h *WindowHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.authenticate(r)
	if err != nil {
		h.logger.Debug("window authentication failed", zap.Error(err))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("window upgrade rejected", zap.Error(err))
		return
	}

	win := &windowConn{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		url:    r.URL.Query().Get("url"),
	}
	if err := win.write(windowFrame{Type: frameRegistered, ID: win.id}); err != nil {
		_ = conn.Close()
		return
	}

	h.mu.Lock()
	h.windows[win.id] = win
	h.mu.Unlock()
	h.logger.Debug("window attached", zap.String("window_id", win.id), zap.String("user_id", userID))

	done := make(chan struct{})
	go h.keepAlive(win, done)

	h.readLoop(win)

	close(done)
	h.mu.Lock()
	delete(h.windows, win.id)
	h.mu.Unlock()
	_ = conn.Close()
	h.logger.Debug("window detached", zap.String("window_id", win.id))
}

func (h *WindowHub) authenticate(r *http.Request) (string, error) {
	if h.verifier == nil {
		return "", errors.New("no token verifier configured")
	}
	token := r.URL.Query().Get("token")
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return "", errors.New("invalid authorization format")
		}
		token = strings.TrimSpace(value)
	}
	if token == "" {
		return "", errors.New("missing identity token")
	}
	claims, err := h.verifier.Verify(token)
	if err != nil {
		return "", err
	}
	userID := claims.UserID()
	if userID == "" {
		return "", errors.New("identity token has no subject")
	}
	return userID, nil
}

func (h *WindowHub) readLoop(win *windowConn) {
	win.conn.SetReadLimit(windowMaxMessage)
	_ = win.conn.SetReadDeadline(time.Now().Add(windowPongWait))
	win.conn.SetPongHandler(func(string) error {
		return win.conn.SetReadDeadline(time.Now().Add(windowPongWait))
	})

	for {
		_, payload, err := win.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("window read failed", zap.String("window_id", win.id), zap.Error(err))
			}
			return
		}
		_ = win.conn.SetReadDeadline(time.Now().Add(windowPongWait))

		var frame windowFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			h.logger.Debug("discard malformed window frame", zap.String("window_id", win.id), zap.Error(err))
			continue
		}
		if frame.Type != frameLocation {
			continue
		}
		win.mu.Lock()
		win.url = frame.URL
		win.focused = frame.Focused
		win.mu.Unlock()
	}
}

func (h *WindowHub) keepAlive(win *windowConn, done <-chan struct{}) {
	ticker := time.NewTicker(windowPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := win.ping(); err != nil {
				return
			}
		}
	}
}

// MatchAll lists the windows attached by userID, focused windows first.
func (h *WindowHub) MatchAll(_ context.Context, userID string) ([]domain.ClientWindow, error) {
	h.mu.RLock()
	windows := make([]domain.ClientWindow, 0, len(h.windows))
	for _, win := range h.windows {
		if win.userID != userID {
			continue
		}
		windows = append(windows, win.snapshot())
	}
	h.mu.RUnlock()

	sort.SliceStable(windows, func(i, j int) bool {
		if windows[i].Focused != windows[j].Focused {
			return windows[i].Focused
		}
		return windows[i].ID < windows[j].ID
	})
	return windows, nil
}

// Focus asks a window to take focus.
func (h *WindowHub) Focus(_ context.Context, windowID string) error {
	win, err := h.window(windowID)
	if err != nil {
		return err
	}
	if err := win.write(windowFrame{Type: frameFocus}); err != nil {
		return fmt.Errorf("focus window %s: %w", windowID, err)
	}
	return nil
}

// Navigate asks a window to load target in place.
func (h *WindowHub) Navigate(_ context.Context, windowID, target string) error {
	if _, err := url.Parse(target); err != nil {
		return fmt.Errorf("invalid navigation target: %w", err)
	}
	win, err := h.window(windowID)
	if err != nil {
		return err
	}
	if err := win.write(windowFrame{Type: frameNavigate, URL: target}); err != nil {
		return fmt.Errorf("navigate window %s: %w", windowID, err)
	}
	return nil
}

// OpenWindow delegates to the device opener since no attached window can open another.
func (h *WindowHub) OpenWindow(ctx context.Context, userID, target string) error {
	if h.opener == nil {
		return fmt.Errorf("no window opener configured")
	}
	return h.opener.OpenWindow(ctx, userID, target)
}

// Count returns the number of attached windows.
func (h *WindowHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.windows)
}

func (h *WindowHub) window(id string) (*windowConn, error) {
	h.mu.RLock()
	win, ok := h.windows[id]
	h.mu.RUnlock()
	if !ok {
		return nil, ErrWindowNotFound
	}
	return win, nil
}
