package renderer

import "time"

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width           int           // Image width
	Height          int           // Image height
	TotalPixels     int           // Total number of pixels rendered
	TotalSamples    int           // Total number of camera samples taken
	SamplesPerPixel int           // Samples taken per pixel
	MaxDepth        int           // Bounce limit used
	RaysTraced      int64         // Camera and scattered rays evaluated
	Elapsed         time.Duration // Wall time of the render loop
}

// RaysPerSecond returns the tracing throughput, or 0 before any time elapsed
func (s RenderStats) RaysPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.RaysTraced) / s.Elapsed.Seconds()
}

// Progress reports how far a render has come after each completed row
type Progress struct {
	Row       int           // Index of the row just finished (0 = top)
	RowsDone  int           // Rows completed so far
	TotalRows int           // Image height
	Elapsed   time.Duration // Time since the render started
}

// Fraction returns completion in [0, 1]
func (p Progress) Fraction() float64 {
	if p.TotalRows == 0 {
		return 1
	}
	return float64(p.RowsDone) / float64(p.TotalRows)
}
