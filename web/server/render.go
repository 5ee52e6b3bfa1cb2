package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

const (
	writeWait        = 10 * time.Second
	progressBatches  = 20 // progress events per render, at most
	previewMaxWidth  = 160
	eventChannelSize = 100
)

// WSEvent is one message sent to a WebSocket client
type WSEvent struct {
	Type string      `json:"type"` // "progress", "console", "complete", "error"
	Data interface{} `json:"data"`
}

// ProgressUpdate reports completed rows
type ProgressUpdate struct {
	RowsDone  int     `json:"rowsDone"`
	TotalRows int     `json:"totalRows"`
	Percent   float64 `json:"percent"`
	ElapsedMs int64   `json:"elapsedMs"`
}

// CompleteUpdate carries the finished image and its statistics
type CompleteUpdate struct {
	ImageData   string `json:"imageData"`   // Base64 encoded PNG
	PreviewData string `json:"previewData"` // Base64 encoded PNG, at most previewMaxWidth wide
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Stats       Stats  `json:"stats"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels     int     `json:"totalPixels"`
	TotalSamples    int     `json:"totalSamples"`
	SamplesPerPixel int     `json:"samplesPerPixel"`
	MaxDepth        int     `json:"maxDepth"`
	RaysTraced      int64   `json:"raysTraced"`
	RaysPerSecond   float64 `json:"raysPerSecond"`
	ElapsedMs       int64   `json:"elapsedMs"`
}

// ErrorUpdate describes why a render did not complete
type ErrorUpdate struct {
	Message string `json:"message"`
}

// handleWS upgrades to a WebSocket, reads one RenderRequest and streams the
// render. Any further client message cancels the render.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var req RenderRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.logger.Debug().Err(err).Msg("no render request received")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan WSEvent, eventChannelSize)
	writerDone := make(chan struct{})
	go s.writeWSEvents(conn, events, cancel, writerDone)
	go watchForCancel(conn, cancel)

	s.streamRender(ctx, &req, events)

	close(events)
	<-writerDone
}

// writeWSEvents handles writing all events in a single goroutine. After a
// write error it cancels the render and drains the channel.
func (s *Server) writeWSEvents(conn *websocket.Conn, events <-chan WSEvent, cancel context.CancelFunc, done chan<- struct{}) {
	defer close(done)

	failed := false
	for event := range events {
		if failed {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			s.logger.Debug().Err(err).Str("event", event.Type).Msg("websocket write failed")
			failed = true
			cancel()
		}
	}

	if !failed {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "render finished"))
	}
}

// watchForCancel cancels the render when the client sends anything or disconnects
func watchForCancel(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.ReadMessage()
}

// sendEvent queues an event unless the render has been cancelled
func sendEvent(ctx context.Context, events chan<- WSEvent, event WSEvent) error {
	select {
	case events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// streamRender renders req and queues progress, console and completion events
func (s *Server) streamRender(ctx context.Context, req *RenderRequest, events chan<- WSEvent) {
	fail := func(message string) {
		sendEvent(ctx, events, WSEvent{Type: "error", Data: ErrorUpdate{Message: message}})
	}

	if err := req.normalize(); err != nil {
		fail("Invalid request: " + err.Error())
		return
	}

	sc, err := createScene(req)
	if err != nil {
		fail(err.Error())
		return
	}

	consoleChan := make(chan ConsoleMessage, 50)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		for msg := range consoleChan {
			sendEvent(ctx, events, WSEvent{Type: "console", Data: msg})
		}
	}()

	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	logger := NewWebLogger(renderID, consoleChan, s.renderLogs)
	logger.Info().Str("scene", req.Scene).Int("spheres", sc.World.Len()).Msg("scene ready")

	img, stats, err := s.renderScene(ctx, sc, req, logger, events)

	close(consoleChan)
	<-consoleDone

	if err != nil {
		s.logger.Warn().Err(err).Str("render", renderID).Msg("render did not complete")
		fail(fmt.Sprintf("Render error: %v", err))
		return
	}

	complete, err := newCompleteUpdate(img, stats)
	if err != nil {
		fail(err.Error())
		return
	}
	sendEvent(ctx, events, WSEvent{Type: "complete", Data: complete})
}

// renderScene runs the raytracer, turning per-row progress into batched events
func (s *Server) renderScene(ctx context.Context, sc *scene.Scene, req *RenderRequest, logger zerolog.Logger, events chan<- WSEvent) (*renderer.Image, renderer.RenderStats, error) {
	progress := func(p renderer.Progress) error {
		batch := p.TotalRows / progressBatches
		if batch < 1 {
			batch = 1
		}
		if p.RowsDone%batch != 0 && p.RowsDone != p.TotalRows {
			return nil
		}
		return sendEvent(ctx, events, WSEvent{Type: "progress", Data: ProgressUpdate{
			RowsDone:  p.RowsDone,
			TotalRows: p.TotalRows,
			Percent:   p.Fraction() * 100,
			ElapsedMs: p.Elapsed.Milliseconds(),
		}})
	}

	rt, err := sc.NewRaytracer(
		renderer.WithSeed(req.Seed),
		renderer.WithLogger(logger),
		renderer.WithProgress(progress),
	)
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}
	return rt.Render(ctx)
}

func newCompleteUpdate(img *renderer.Image, stats renderer.RenderStats) (CompleteUpdate, error) {
	imageData, err := imageToBase64PNG(img)
	if err != nil {
		return CompleteUpdate{}, fmt.Errorf("failed to encode image: %w", err)
	}
	previewData, err := imageToBase64PNG(output.Thumbnail(img, previewMaxWidth))
	if err != nil {
		return CompleteUpdate{}, fmt.Errorf("failed to encode preview: %w", err)
	}

	return CompleteUpdate{
		ImageData:   imageData,
		PreviewData: previewData,
		Width:       img.Width,
		Height:      img.Height,
		Stats: Stats{
			TotalPixels:     stats.TotalPixels,
			TotalSamples:    stats.TotalSamples,
			SamplesPerPixel: stats.SamplesPerPixel,
			MaxDepth:        stats.MaxDepth,
			RaysTraced:      stats.RaysTraced,
			RaysPerSecond:   stats.RaysPerSecond(),
			ElapsedMs:       stats.Elapsed.Milliseconds(),
		},
	}, nil
}
