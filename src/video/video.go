package video

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/cheggaaa/pb/v3"

	"mocapToolkit/src/render"
)

const progressTemplate = `{{ string . "prefix" }} {{counters . "%s/%s" "%s/?"}} {{bar . }} {{percent . "%.03f%%" "?"}} {{etime . "%s elapsed"}} {{rtime . "%s remain" "%s total" "???"}}`

// SceneSource yields the scene of every frame.
type SceneSource interface {
	Frames() int
	Scene(f int) render.Scene
}

// FrameRenderer rasterizes one scene.
type FrameRenderer interface {
	Render(scene render.Scene) (image.Image, error)
}

// Job is one video export.
type Job struct {
	Scenes   SceneSource
	Renderer FrameRenderer
	Encoder  Encoder
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
	Prefix   string
}

// NewProgressBar returns a started bar writing to w.
func NewProgressBar(total int, prefix string, w io.Writer) *pb.ProgressBar {
	bar := pb.ProgressBarTemplate(progressTemplate).New(total)
	bar.Set("prefix", prefix)
	bar.SetWriter(w)
	return bar.Start()
}

// Make renders and encodes every frame in order and returns the number of
// frames written. It stops between frames when ctx is cancelled. The encoder
// is left open.
func Make(ctx context.Context, job Job) (int, error) {
	total := job.Scenes.Frames()

	var bar *pb.ProgressBar
	if job.Progress != nil {
		bar = NewProgressBar(total, job.Prefix, job.Progress)
		defer bar.Finish()
	}

	for f := 0; f < total; f++ {
		if err := ctx.Err(); err != nil {
			return f, err
		}
		img, err := job.Renderer.Render(job.Scenes.Scene(f))
		if err != nil {
			return f, fmt.Errorf("render frame %d: %w", f, err)
		}
		if err := job.Encoder.WriteFrame(img); err != nil {
			return f, fmt.Errorf("encode frame %d: %w", f, err)
		}
		if bar != nil {
			bar.Increment()
		}
	}
	return total, nil
}
