// Package hotreload pushes layout, style and script changes to running apps.
// Clients hold a WebSocket open and receive one message per changed file;
// they then fetch the new body over plain HTTP.
package hotreload

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dejo1307/sjui/internal/config"
)

// Server polls the project directories and notifies connected clients.
type Server struct {
	cfg      *config.Config
	watcher  *Watcher
	interval time.Duration
	echo     *echo.Echo
	upgrader websocket.Upgrader

	// OnChange runs after clients were notified of a batch of changes.
	OnChange func(ctx context.Context, changes []Change)

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *client) send(msg []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.ws.WriteJSON(msg)
}

// NewServer creates a server watching the layouts, styles and scripts
// directories of the project at root.
func NewServer(cfg *config.Config, root string) *Server {
	dirs := make(map[string]string)
	for _, d := range []string{cfg.Layouts, cfg.Styles, cfg.Scripts} {
		if d == "" {
			continue
		}
		dirs[d] = cfg.Path(root, d)
	}
	interval := time.Duration(cfg.HotLoader.PollInterval) * time.Millisecond
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	s := &Server{
		cfg:      cfg,
		watcher:  NewWatcher(dirs),
		interval: interval,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
		clients: make(map[*client]struct{}),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler
	e.Use(middleware.Recover())
	s.RegisterRoutes(e)
	s.echo = e
	return s
}

// RegisterRoutes registers the hot reload routes.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.HandleHealth)
	e.GET("/websocket", s.HandleWebSocket)
	e.GET("/layout_json", s.HandleFile)
	e.GET("/file", s.HandleFile)
}

// Echo returns the underlying echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.HotLoader.Host, s.cfg.HotLoader.Port)
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.watcher.Prime()
	go s.poll(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[hotreload] listening on %s", s.Addr())
		errCh <- s.echo.Start(s.Addr())
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeClients()
		return s.echo.Shutdown(shutdownCtx)
	}
}

func (s *Server) poll(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			changes := s.watcher.Scan()
			s.Notify(changes)
			if len(changes) > 0 && s.OnChange != nil {
				s.OnChange(ctx, changes)
			}
		}
	}
}

// Notify sends every change to every connected client. Clients that fail to
// receive are dropped.
func (s *Server) Notify(changes []Change) {
	if len(changes) == 0 {
		return
	}
	s.mu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, ch := range changes {
		log.Printf("[hotreload] changed %s/%s", ch.Dir, ch.Path)
		for _, c := range targets {
			if err := c.send(ch.Message()); err != nil {
				log.Printf("[hotreload] dropping client: %v", err)
				s.remove(c)
			}
		}
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		c.ws.Close()
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()
	for c := range clients {
		c.mu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		c.ws.Close()
	}
}

// HandleHealth handles GET /health.
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.Clients(),
	})
}

// HandleWebSocket handles GET /websocket. The connection only carries
// server pushes; anything the client sends is read and discarded.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	cl := &client{ws: ws}
	s.mu.Lock()
	s.clients[cl] = struct{}{}
	s.mu.Unlock()
	log.Printf("[hotreload] client connected from %s", c.RealIP())

	defer s.remove(cl)
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[hotreload] websocket error: %v", err)
			}
			return nil
		}
	}
}

// HandleFile handles GET /layout_json?file_path=...&dir_name=....
// dir_name defaults to the layouts directory.
func (s *Server) HandleFile(c echo.Context) error {
	rel := c.QueryParam("file_path")
	if rel == "" {
		return NewBadRequestError("file_path is required", nil)
	}
	dir := c.QueryParam("dir_name")
	if dir == "" {
		dir = s.cfg.Layouts
	}
	p, err := s.watcher.Resolve(dir, rel)
	switch {
	case errors.Is(err, errUnknownDir):
		return NewBadRequestError("unknown dir_name", fmt.Errorf("%q", dir))
	case errors.Is(err, errBadPath):
		return NewBadRequestError("invalid file_path", fmt.Errorf("%q", rel))
	case errors.Is(err, os.ErrNotExist):
		return NewNotFoundError("file", dir+"/"+rel)
	case err != nil:
		return err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType(p), data)
}

func contentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".json":
		return echo.MIMEApplicationJSONCharsetUTF8
	case ".js", ".mjs", ".ts":
		return echo.MIMEApplicationJavaScriptCharsetUTF8
	}
	return echo.MIMETextPlainCharsetUTF8
}
