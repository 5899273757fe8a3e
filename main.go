package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/plot/vg"

	"mocapToolkit/src/animate"
	"mocapToolkit/src/config"
	"mocapToolkit/src/convent"
	"mocapToolkit/src/joint"
	"mocapToolkit/src/logging"
	"mocapToolkit/src/mocap"
	"mocapToolkit/src/render"
	"mocapToolkit/src/video"
)

const usage = `usage:
  mocap tags <export.csv>
  mocap video <export.csv> <out.mp4|out-dir> <chain tag>...
  mocap angles <export.csv> <out.csv> <chain tag>...
  mocap export <export.csv> <out-dir>
  mocap animate <export.csv> <out.html> [chain tag]...
  mocap frame <export.csv> <out.png> <frame> [chain tag]...`

var (
	errUsage = errors.New(usage)
	docs     = mocap.NewCache()
)

func main() {
	logging.Setup("INFO", os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		logging.Logger.Fatal().Err(err).Msg("mocap")
	}
}

// run executes one subcommand. Results go to stdout; logs and progress to
// stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) < 2 {
		return errUsage
	}

	cfg, err := loadConfig(stderr)
	if err != nil {
		return err
	}

	command, path, rest := strings.ToLower(args[0]), args[1], args[2:]
	switch command {
	case "tags":
		return listTags(path, stdout)
	case "video":
		if len(rest) < 1 {
			return errUsage
		}
		return makeVideo(ctx, cfg, path, rest[0], rest[1:], stderr)
	case "angles":
		if len(rest) < 1 {
			return errUsage
		}
		return writeAngles(cfg, path, rest[0], rest[1:])
	case "export":
		if len(rest) != 1 {
			return errUsage
		}
		return exportTrajectories(cfg, path, rest[0])
	case "animate":
		if len(rest) < 1 {
			return errUsage
		}
		return writeAnimation(cfg, path, rest[0], rest[1:])
	case "frame":
		if len(rest) < 2 {
			return errUsage
		}
		f, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("frame %q: %w", rest[1], err)
		}
		return saveFrame(cfg, path, rest[0], f, rest[2:])
	}
	return errUsage
}

func loadConfig(logOut io.Writer) (config.Config, error) {
	dir := os.Getenv("MOCAP_CONFIG_DIR")
	if dir == "" {
		dir = "."
	}
	if err := config.Load(dir); err != nil {
		if !config.IsNotFound(err) {
			return config.Config{}, err
		}
		logging.Logger.Debug().Str("dir", dir).Msg("no config file, using defaults")
	}
	cfg, err := config.Get()
	if err != nil {
		return config.Config{}, err
	}
	if strings.EqualFold(cfg.LogFormat, "json") {
		logging.SetupJSON(cfg.LogLevel, logOut)
	} else {
		logging.Setup(cfg.LogLevel, logOut)
	}
	return cfg, nil
}

// markerTags lists the header tags that address data columns.
func markerTags(doc *mocap.Document) []mocap.Tag {
	var tags []mocap.Tag
	for _, tag := range mocap.ListTags(doc) {
		if column, err := doc.Column(tag); err == nil && column > mocap.TimeColumn {
			tags = append(tags, tag)
		}
	}
	return tags
}

func listTags(path string, stdout io.Writer) error {
	doc, err := docs.Open(path)
	if err != nil {
		return err
	}
	for _, tag := range markerTags(doc) {
		fmt.Fprintln(stdout, tag)
	}
	return nil
}

// extract reads tags and chain from path, highlighting the chain.
func extract(cfg config.Config, path string, tags, chain []mocap.Tag) (map[mocap.Tag]mocap.Trajectory, error) {
	startTime := time.Now()

	doc, err := docs.Open(path)
	if err != nil {
		return nil, err
	}
	take := make(map[string]any)
	for key, value := range doc.Metadata() {
		take[key] = value
	}
	logging.Logger.Debug().Str("path", path).Fields(take).Msg("take")

	wanted := slices.Clone(tags)
	for _, tag := range chain {
		if !slices.Contains(wanted, tag) {
			wanted = append(wanted, tag)
		}
	}

	palette := mocap.Palette{
		Marker:    cfg.Colors.Marker,
		Highlight: cfg.Colors.Highlight,
		RigidBody: cfg.Colors.RigidBody,
	}
	trajectories, frames, err := mocap.ExtractAll(doc, wanted, chain, palette)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	for _, tag := range wanted {
		if missing := frames - trajectories[tag].Valid(); missing > 0 {
			logging.Logger.Debug().Str("tag", tag.String()).Int("frames", frames).Int("nan", missing).Msg("unparseable rows")
		}
	}
	logging.Logger.Debug().Dur("elapsed", time.Since(startTime)).Int("tags", len(wanted)).Int("frames", frames).Msg("file read")
	return trajectories, nil
}

func rendererFor(cfg config.Config, path string) (*render.Renderer, error) {
	palette, err := render.ParsePalette(cfg.Colors.Marker, cfg.Colors.Highlight, cfg.Colors.RigidBody)
	if err != nil {
		return nil, err
	}
	return render.NewRenderer(render.Options{
		Title:     "MoCap Post Processing from: " + path,
		Width:     vg.Length(cfg.Render.Width) * vg.Inch,
		Height:    vg.Length(cfg.Render.Height) * vg.Inch,
		DPI:       cfg.Render.DPI,
		RangeMin:  cfg.Render.RangeMin,
		RangeMax:  cfg.Render.RangeMax,
		DomainMin: cfg.Render.DomainMin,
		DomainMax: cfg.Render.DomainMax,
		Palette:   palette,
	})
}

// frameRate prefers the configured rate, then the export's own.
func frameRate(cfg config.Config, path string) float64 {
	if cfg.Render.FPS > 0 {
		return cfg.Render.FPS
	}
	if doc, err := docs.Open(path); err == nil {
		if fps, ok := doc.FrameRate(); ok && fps > 0 {
			return fps
		}
	}
	return 120
}

func makeVideo(ctx context.Context, cfg config.Config, path, out string, names []string, progress io.Writer) error {
	chain, err := mocap.ParseTags(names)
	if err != nil {
		return err
	}
	doc, err := docs.Open(path)
	if err != nil {
		return err
	}
	tags := markerTags(doc)

	trajectories, err := extract(cfg, path, tags, chain)
	if err != nil {
		return err
	}
	scenes, err := render.NewProjector(trajectories, tags, chain, cfg.Render.SystemCOM)
	if err != nil {
		return err
	}
	renderer, err := rendererFor(cfg, path)
	if err != nil {
		return err
	}

	var enc video.Encoder
	if filepath.Ext(out) == "" {
		enc, err = video.NewSequence(out, "frame_")
	} else {
		enc, err = video.NewFFmpeg(ctx, out, video.FFmpegOptions{
			Binary: cfg.Video.FFmpeg,
			Codec:  cfg.Video.Codec,
			PixFmt: cfg.Video.PixFmt,
			FPS:    frameRate(cfg, path),
		})
	}
	if err != nil {
		return err
	}

	n, err := video.Make(ctx, video.Job{
		Scenes:   scenes,
		Renderer: renderer,
		Encoder:  enc,
		Progress: progress,
		Prefix:   "Generating video",
	})
	if closeErr := enc.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	logging.Logger.Info().Str("out", out).Int("frames", n).Msg("video written")
	return nil
}

func writeAngles(cfg config.Config, path, out string, names []string) error {
	chain, err := mocap.ParseTags(names)
	if err != nil {
		return err
	}
	trajectories, err := extract(cfg, path, nil, chain)
	if err != nil {
		return err
	}
	series, err := joint.ComputeAngles(trajectories, chain)
	if err != nil {
		return err
	}
	header := joint.Header(chain)
	if err := convent.WriteJointAngles(series, header, out); err != nil {
		return err
	}

	plotPath := strings.TrimSuffix(out, filepath.Ext(out)) + ".png"
	width := vg.Length(cfg.Render.Width) * vg.Inch
	height := vg.Length(cfg.Render.Height) * vg.Inch
	if err := render.PlotAngles(series, header, plotPath, width, height); err != nil {
		return err
	}
	logging.Logger.Info().Str("out", out).Str("plot", plotPath).Int("frames", len(series)).Msg("joint angles written")
	return nil
}

func exportTrajectories(cfg config.Config, path, dir string) error {
	doc, err := docs.Open(path)
	if err != nil {
		return err
	}
	tags := markerTags(doc)
	if len(tags) == 0 {
		return fmt.Errorf("no marker tags in %s", path)
	}
	trajectories, err := extract(cfg, path, tags, nil)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	posPath := filepath.Join(dir, base+"_pos.csv")
	if err := convent.WriteTrajectories(trajectories, tags, posPath); err != nil {
		return err
	}
	logging.Logger.Info().Str("out", posPath).Msg("positions written")

	if len(render.RigidBodies(tags)) == 0 {
		logging.Logger.Warn().Msg("no rigid bodies, skipping rotations")
		return nil
	}
	rotPath := filepath.Join(dir, base+"_rot.csv")
	if err := convent.WriteRotations(trajectories, tags, rotPath); err != nil {
		return err
	}
	logging.Logger.Info().Str("out", rotPath).Msg("rotations written")
	return nil
}

func writeAnimation(cfg config.Config, path, out string, names []string) error {
	chain, err := mocap.ParseTags(names)
	if err != nil {
		return err
	}
	doc, err := docs.Open(path)
	if err != nil {
		return err
	}
	tags := markerTags(doc)

	trajectories, err := extract(cfg, path, tags, chain)
	if err != nil {
		return err
	}
	err = animate.WriteFile(out, trajectories, tags, chain, animate.Options{
		Title:           "MoCap Post Processing from: " + path,
		Stride:          cfg.Animate.Stride,
		FrameDurationMs: cfg.Animate.FrameDurationMs,
		RangeMin:        cfg.Render.RangeMin,
		RangeMax:        cfg.Render.RangeMax,
		DomainMin:       cfg.Render.DomainMin,
		DomainMax:       cfg.Render.DomainMax,
	})
	if err != nil {
		return err
	}
	logging.Logger.Info().Str("out", out).Msg("animation written")
	return nil
}

// saveFrame renders one frame as a still image; the format follows the
// extension of out.
func saveFrame(cfg config.Config, path, out string, f int, names []string) error {
	chain, err := mocap.ParseTags(names)
	if err != nil {
		return err
	}
	doc, err := docs.Open(path)
	if err != nil {
		return err
	}
	tags := markerTags(doc)

	trajectories, err := extract(cfg, path, tags, chain)
	if err != nil {
		return err
	}
	scenes, err := render.NewProjector(trajectories, tags, chain, cfg.Render.SystemCOM)
	if err != nil {
		return err
	}
	if f < 0 || f >= scenes.Frames() {
		return fmt.Errorf("frame %d out of range [0, %d)", f, scenes.Frames())
	}
	renderer, err := rendererFor(cfg, path)
	if err != nil {
		return err
	}
	if err := renderer.Save(scenes.Scene(f), out); err != nil {
		return err
	}
	logging.Logger.Info().Str("out", out).Int("frame", f).Msg("frame written")
	return nil
}
