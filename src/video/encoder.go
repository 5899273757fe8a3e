package video

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrFrameSize is returned when a frame differs in size from the first one.
var ErrFrameSize = errors.New("frame size changed")

// Encoder consumes equally sized frames in presentation order.
type Encoder interface {
	WriteFrame(img image.Image) error
	Close() error
}

// sizeGuard enforces a constant frame size.
type sizeGuard struct {
	size image.Point
	set  bool
}

func (g *sizeGuard) check(img image.Image) error {
	size := img.Bounds().Size()
	if !g.set {
		g.size, g.set = size, true
		return nil
	}
	if size != g.size {
		return fmt.Errorf("%w: got %v, want %v", ErrFrameSize, size, g.size)
	}
	return nil
}

// FFmpegOptions configures the ffmpeg encoder.
type FFmpegOptions struct {
	Binary string
	Codec  string
	PixFmt string
	FPS    float64
}

// FFmpeg streams PNG frames to an ffmpeg process over stdin.
type FFmpeg struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	buf    *bufio.Writer
	stderr bytes.Buffer
	guard  sizeGuard
	closed bool
}

// Args returns the ffmpeg command line used to write path.
func (o FFmpegOptions) Args(path string) []string {
	args := []string{
		"-y", "-loglevel", "error",
		"-f", "image2pipe",
		"-framerate", strconv.FormatFloat(o.FPS, 'f', -1, 64),
		"-c:v", "png",
		"-i", "-",
		// even dimensions for yuv420p
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
	}
	if o.Codec != "" {
		args = append(args, "-c:v", o.Codec)
	}
	if o.PixFmt != "" {
		args = append(args, "-pix_fmt", o.PixFmt)
	}
	return append(args, path)
}

// NewFFmpeg starts ffmpeg writing to path.
func NewFFmpeg(ctx context.Context, path string, opts FFmpegOptions) (*FFmpeg, error) {
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %g", opts.FPS)
	}
	if opts.Binary == "" {
		opts.Binary = "ffmpeg"
	}
	binary, err := exec.LookPath(opts.Binary)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not available: %w", err)
	}

	f := &FFmpeg{}
	f.cmd = exec.CommandContext(ctx, binary, opts.Args(path)...)
	f.cmd.Stderr = &f.stderr
	f.stdin, err = f.cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := f.cmd.Start(); err != nil {
		return nil, fmt.Errorf("could not start ffmpeg: %w", err)
	}
	f.buf = bufio.NewWriter(f.stdin)
	return f, nil
}

// WriteFrame encodes img as the next frame.
func (f *FFmpeg) WriteFrame(img image.Image) error {
	if err := f.guard.check(img); err != nil {
		return err
	}
	if err := png.Encode(f.buf, img); err != nil {
		return fmt.Errorf("ffmpeg pipe: %w%s", err, f.stderrSuffix())
	}
	return nil
}

// Close flushes the pipe and waits for ffmpeg to finish the container.
func (f *FFmpeg) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	flushErr := f.buf.Flush()
	closeErr := f.stdin.Close()
	if err := f.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w%s", err, f.stderrSuffix())
	}
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

func (f *FFmpeg) stderrSuffix() string {
	msg := strings.TrimSpace(f.stderr.String())
	if msg == "" {
		return ""
	}
	return ": " + msg
}

// Sequence writes each frame as a numbered PNG file in a directory.
type Sequence struct {
	Dir    string
	Prefix string
	guard  sizeGuard
	n      int
}

// NewSequence creates dir if needed and returns a PNG sequence encoder.
func NewSequence(dir, prefix string) (*Sequence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Sequence{Dir: dir, Prefix: prefix}, nil
}

// WriteFrame writes img as <prefix><index>.png.
func (s *Sequence) WriteFrame(img image.Image) error {
	if err := s.guard.check(img); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("%s%06d.png", s.Prefix, s.n))
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	s.n++
	return nil
}

// Frames returns the number of frames written.
func (s *Sequence) Frames() int {
	return s.n
}

// Close is a no-op; every frame is flushed when written.
func (s *Sequence) Close() error {
	return nil
}
