package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dialRender(t *testing.T, req RenderRequest) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(newTestServer().Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.WriteJSON(req))
	return conn
}

// readEvents collects events until the server closes the connection
func readEvents(t *testing.T, conn *websocket.Conn) []testEvent {
	t.Helper()
	var events []testEvent
	for {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		var event testEvent
		if err := conn.ReadJSON(&event); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Logf("connection ended: %v", err)
			}
			return events
		}
		events = append(events, event)
	}
}

func eventsOfType(events []testEvent, eventType string) []testEvent {
	var matched []testEvent
	for _, event := range events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func TestWebSocketRender_Complete(t *testing.T) {
	conn := dialRender(t, RenderRequest{Scene: "single-sphere", Width: 16, SamplesPerPixel: 1, MaxDepth: 2, Seed: 7})
	events := readEvents(t, conn)
	require.NotEmpty(t, events)

	progress := eventsOfType(events, "progress")
	require.NotEmpty(t, progress)
	var last ProgressUpdate
	require.NoError(t, json.Unmarshal(progress[len(progress)-1].Data, &last))
	assert.Equal(t, 16, last.RowsDone)
	assert.Equal(t, 16, last.TotalRows)
	assert.InDelta(t, 100.0, last.Percent, 1e-9)

	console := eventsOfType(events, "console")
	require.NotEmpty(t, console)
	var first ConsoleMessage
	require.NoError(t, json.Unmarshal(console[0].Data, &first))
	assert.Contains(t, first.Message, "scene ready")

	assert.Empty(t, eventsOfType(events, "error"))
	final := events[len(events)-1]
	require.Equal(t, "complete", final.Type)

	var complete CompleteUpdate
	require.NoError(t, json.Unmarshal(final.Data, &complete))
	assert.Equal(t, 16, complete.Width)
	assert.Equal(t, 16, complete.Height)
	assert.Equal(t, 256, complete.Stats.TotalPixels)
	assert.Equal(t, 1, complete.Stats.SamplesPerPixel)

	data, err := base64.StdEncoding.DecodeString(complete.ImageData)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())

	preview, err := base64.StdEncoding.DecodeString(complete.PreviewData)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(preview))
	require.NoError(t, err)
}

func TestWebSocketRender_InvalidRequest(t *testing.T) {
	conn := dialRender(t, RenderRequest{Scene: "single-sphere", Width: 5})
	events := readEvents(t, conn)

	require.Len(t, events, 1)
	require.Equal(t, "error", events[0].Type)
	var update ErrorUpdate
	require.NoError(t, json.Unmarshal(events[0].Data, &update))
	assert.Contains(t, update.Message, "width must be between")
}

func TestWebSocketRender_UnknownScene(t *testing.T) {
	conn := dialRender(t, RenderRequest{Scene: "cornell-box"})
	events := readEvents(t, conn)

	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].Type)
}

func TestWebSocketRender_ClientCancel(t *testing.T) {
	conn := dialRender(t, RenderRequest{Scene: "single-sphere", Width: 64, SamplesPerPixel: 5000, Seed: 1})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("cancel")))

	events := readEvents(t, conn)
	assert.Empty(t, eventsOfType(events, "complete"))
}

func renderOverWebSocket(t *testing.T, req RenderRequest) CompleteUpdate {
	t.Helper()
	events := readEvents(t, dialRender(t, req))
	require.NotEmpty(t, events)
	final := events[len(events)-1]
	require.Equal(t, "complete", final.Type)

	var complete CompleteUpdate
	require.NoError(t, json.Unmarshal(final.Data, &complete))
	return complete
}

func TestWebSocketRender_MissingSeedUsesDefault(t *testing.T) {
	req := RenderRequest{Scene: "default", Width: 16, SamplesPerPixel: 2, MaxDepth: 3}
	unseeded := renderOverWebSocket(t, req)

	req.Seed = DefaultSeed
	seeded := renderOverWebSocket(t, req)
	assert.Equal(t, seeded.ImageData, unseeded.ImageData)

	req.Seed = 5
	other := renderOverWebSocket(t, req)
	assert.NotEqual(t, seeded.ImageData, other.ImageData)
}
