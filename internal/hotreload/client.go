package hotreload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dejo1307/sjui/internal/dynamic"
)

// ReloadAction is the notification action broadcast after a cached layout
// changes.
const ReloadAction = "layoutReloaded"

// Client receives change messages and refreshes a dynamic.LayoutCache.
type Client struct {
	// BaseURL is the server root, e.g. "http://localhost:8081".
	BaseURL string
	// Layouts is the layouts directory name the server reports.
	Layouts string
	Cache   *dynamic.LayoutCache
	// Events receives a ReloadAction notification per changed layout. Optional.
	Events *dynamic.EventRegistry
	// OnChange is called after every fetched change, layouts included.
	OnChange func(ch Change, body []byte)
	HTTP     *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL, layoutsDir string, cache *dynamic.LayoutCache, events *dynamic.EventRegistry) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Layouts: layoutsDir,
		Cache:   cache,
		Events:  events,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Run listens for changes until ctx is cancelled or the server closes the
// connection. Failed fetches are logged and skipped.
func (c *Client) Run(ctx context.Context) error {
	wsURL, err := c.socketURL()
	if err != nil {
		return err
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", wsURL, err)
	}
	defer ws.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ws.Close()
		case <-done:
		}
	}()

	for {
		var msg []string
		if err := ws.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("reading hot reload message: %w", err)
		}
		ch, err := ParseMessage(msg)
		if err != nil {
			log.Printf("[hotreload] ignoring message %v: %v", msg, err)
			continue
		}
		if _, err := c.Apply(ctx, ch); err != nil {
			log.Printf("[hotreload] %s/%s: %v", ch.Dir, ch.Path, err)
		}
	}
}

// Apply fetches the changed file and, for layouts, stores it in the cache.
// It reports whether the cache changed. Applying the same change twice is
// harmless.
func (c *Client) Apply(ctx context.Context, ch Change) (bool, error) {
	body, err := c.Fetch(ctx, ch)
	if err != nil {
		return false, err
	}
	changed := false
	if c.isLayout(ch) && c.Cache != nil {
		key := dynamic.Key(ch.Path)
		changed = c.Cache.Store(key, body)
		if changed && c.Events != nil {
			c.Events.Broadcast(dynamic.Notification{Action: ReloadAction, ComponentID: key})
		}
	}
	if c.OnChange != nil {
		c.OnChange(ch, body)
	}
	return changed, nil
}

func (c *Client) isLayout(ch Change) bool {
	return ch.Dir == "" || ch.Dir == c.Layouts
}

// Fetch downloads the body of a changed file.
func (c *Client) Fetch(ctx context.Context, ch Change) ([]byte, error) {
	q := url.Values{}
	q.Set("file_path", ch.Path)
	if ch.Dir != "" {
		q.Set("dir_name", ch.Dir)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/layout_json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %s: %s", ch.Path, resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) socketURL() (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", errors.New("hot reload url must be http(s) or ws(s)")
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/websocket"
	return u.String(), nil
}
