package hotreload

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/sjui/internal/config"
	"github.com/dejo1307/sjui/internal/dynamic"
)

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Layouts", "home.json"), `{"type":"Label","text":"Home"}`)
	writeFile(t, filepath.Join(root, "Layouts", "common", "_header.json"), `{"type":"Label"}`)
	writeFile(t, filepath.Join(root, "Styles", "title.json"), `{"fontSize":20}`)
	return NewServer(config.Default(), root), root
}

func TestChangeMessage(t *testing.T) {
	ch := Change{Path: "common/_header.json", Dir: "Layouts", Name: "_header"}
	assert.Equal(t, []string{"common/_header.json", "Layouts", "_header"}, ch.Message())

	back, err := ParseMessage(ch.Message())
	require.NoError(t, err)
	assert.Equal(t, ch, back)

	_, err = ParseMessage([]string{"a", "b"})
	assert.Error(t, err)
	_, err = ParseMessage([]string{"", "b", "c"})
	assert.Error(t, err)
}

func TestWatcher_Scan(t *testing.T) {
	root := t.TempDir()
	layouts := filepath.Join(root, "Layouts")
	scripts := filepath.Join(root, "Scripts")
	writeFile(t, filepath.Join(layouts, "home.json"), `{}`)
	writeFile(t, filepath.Join(layouts, "notes.txt"), `ignored`)
	writeFile(t, filepath.Join(layouts, ".hidden", "x.json"), `{}`)
	writeFile(t, filepath.Join(scripts, "home.ts"), `export {}`)

	w := NewWatcher(map[string]string{"Layouts": layouts, "Scripts": scripts})
	first := w.Scan()
	assert.Equal(t, []Change{
		{Path: "home.json", Dir: "Layouts", Name: "home"},
		{Path: "home.ts", Dir: "Scripts", Name: "home"},
	}, first)
	assert.Empty(t, w.Scan(), "nothing changed")

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(filepath.Join(layouts, "home.json"), later, later))
	writeFile(t, filepath.Join(layouts, "settings", "about.json"), `{}`)
	assert.Equal(t, []Change{
		{Path: "home.json", Dir: "Layouts", Name: "home"},
		{Path: "settings/about.json", Dir: "Layouts", Name: "about"},
	}, w.Scan())

	require.NoError(t, os.Remove(filepath.Join(layouts, "home.json")))
	assert.Empty(t, w.Scan(), "deletions are not reported")
}

func TestWatcher_Prime(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.json"), `{}`)
	w := NewWatcher(map[string]string{"Layouts": root})
	w.Prime()
	assert.Empty(t, w.Scan())
}

func TestWatcher_Resolve(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "home.json"), `{}`)
	w := NewWatcher(map[string]string{"Layouts": root})

	p, err := w.Resolve("Layouts", "home.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "home.json"), p)

	p, err = w.Resolve("Layouts", "home")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "home.json"), p)

	_, err = w.Resolve("Other", "home.json")
	assert.ErrorIs(t, err, errUnknownDir)
	_, err = w.Resolve("Layouts", "/")
	assert.ErrorIs(t, err, errBadPath)
	_, err = w.Resolve("Layouts", "../../etc/passwd")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, s.HandleHealth(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, float64(0), body["clients"])
	}
}

func TestHandleFile(t *testing.T) {
	s, _ := newTestServer(t)
	e := echo.New()

	tests := []struct {
		name   string
		query  string
		status int
		body   string
		code   string
	}{
		{"layout default dir", "file_path=home.json", http.StatusOK, `{"type":"Label","text":"Home"}`, ""},
		{"layout without extension", "file_path=common/_header&dir_name=Layouts", http.StatusOK, `{"type":"Label"}`, ""},
		{"style", "file_path=title.json&dir_name=Styles", http.StatusOK, `{"fontSize":20}`, ""},
		{"missing path", "", http.StatusBadRequest, "", "BAD_REQUEST"},
		{"unknown dir", "file_path=home.json&dir_name=Secrets", http.StatusBadRequest, "", "BAD_REQUEST"},
		{"missing file", "file_path=nope.json", http.StatusNotFound, "", "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/layout_json?"+tt.query, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := s.HandleFile(c)
			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.status, rec.Code)
				assert.JSONEq(t, tt.body, rec.Body.String())
				return
			}
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"api error", NewNotFoundError("file", "x"), http.StatusNotFound, "NOT_FOUND"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, "HTTP_ERROR"},
		{"plain error", os.ErrPermission, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			ErrorHandler(tt.err, c)
			assert.Equal(t, tt.status, rec.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestServerRoutes_ErrorBody(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/layout_json?file_path=missing.json", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
}

func TestSocketURL(t *testing.T) {
	c := NewClient("http://localhost:8081/", "Layouts", nil, nil)
	u, err := c.socketURL()
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8081/websocket", u)

	c.BaseURL = "https://example.com/dev"
	u, err = c.socketURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com/dev/websocket", u)

	c.BaseURL = "ftp://example.com"
	_, err = c.socketURL()
	assert.Error(t, err)
}

func TestClient_ApplyIsIdempotent(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Echo())
	defer ts.Close()

	cache := dynamic.NewLayoutCache("")
	events := dynamic.NewEventRegistry(nil)
	notes, cancel := events.Subscribe(4)
	defer cancel()

	var others []string
	c := NewClient(ts.URL, "Layouts", cache, events)
	c.OnChange = func(ch Change, body []byte) {
		if ch.Dir != "Layouts" {
			others = append(others, ch.Path+"="+string(body))
		}
	}

	ch := Change{Path: "home.json", Dir: "Layouts", Name: "home"}
	changed, err := c.Apply(context.Background(), ch)
	require.NoError(t, err)
	assert.True(t, changed)
	data, ok := cache.Get("home")
	require.True(t, ok)
	assert.JSONEq(t, `{"type":"Label","text":"Home"}`, string(data))
	n := <-notes
	assert.Equal(t, ReloadAction, n.Action)
	assert.Equal(t, "home", n.ComponentID)

	changed, err = c.Apply(context.Background(), ch)
	require.NoError(t, err)
	assert.False(t, changed, "same bytes twice")
	assert.Empty(t, notes)

	changed, err = c.Apply(context.Background(), Change{Path: "title.json", Dir: "Styles", Name: "title"})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []string{`title.json={"fontSize":20}`}, others)
	assert.Empty(t, cache.Keys(), "styles are not layouts")

	_, err = c.Apply(context.Background(), Change{Path: "gone.json", Dir: "Layouts", Name: "gone"})
	assert.ErrorContains(t, err, "404")
}

func TestEndToEnd_PushFetchStore(t *testing.T) {
	s, root := newTestServer(t)
	ts := httptest.NewServer(s.Echo())
	defer ts.Close()

	cache := dynamic.NewLayoutCache("")
	events := dynamic.NewEventRegistry(nil)
	notes, cancel := events.Subscribe(4)
	defer cancel()
	c := NewClient(ts.URL, "Layouts", cache, events)

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	require.Eventually(t, func() bool { return s.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.watcher.Prime()
	writeFile(t, filepath.Join(root, "Layouts", "home.json"), `{"type":"Label","text":"Reloaded"}`)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(filepath.Join(root, "Layouts", "home.json"), later, later))
	s.Notify(s.watcher.Scan())

	select {
	case n := <-notes:
		assert.Equal(t, "home", n.ComponentID)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload notification")
	}
	data, ok := cache.Get("home")
	require.True(t, ok)
	assert.True(t, strings.Contains(string(data), "Reloaded"))

	stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop")
	}
}

func TestNotify_DropsClosedClients(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Echo())
	defer ts.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/websocket", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.Notify([]Change{{Path: "home.json", Dir: "Layouts", Name: "home"}})
	var msg []string
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, []string{"home.json", "Layouts", "home"}, msg)

	ws.Close()
	require.Eventually(t, func() bool { return s.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}
