package editor

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/keagan/reelkit/internal/effects"
	"github.com/keagan/reelkit/internal/timecode"
	"github.com/keagan/reelkit/pkg/util"
)

// EditList is a batch of edits expressed as a YAML document, so a whole
// composition can be described in one file and replayed by the CLI.
type EditList struct {
	Clips     []string    `yaml:"clips"`
	Music     string      `yaml:"music"`
	Grayscale bool        `yaml:"grayscale"`
	Rotate    int         `yaml:"rotate"` // quarter turns
	Text      []TextEdit  `yaml:"text"`
	Images    []ImageEdit `yaml:"images"`
}

// TextEdit describes one text burn-in.
type TextEdit struct {
	Text     string  `yaml:"text"`
	Position string  `yaml:"position"`
	FontSize float64 `yaml:"font_size"`
	Start    string  `yaml:"start"`
	Length   string  `yaml:"length"`
}

// ImageEdit describes one image overlay. Preset "watermark" or "logo"
// takes precedence over the placement fields.
type ImageEdit struct {
	Path      string  `yaml:"path"`
	Preset    string  `yaml:"preset"`
	Position  string  `yaml:"position"`
	Size      string  `yaml:"size"`
	Opacity   float64 `yaml:"opacity"`
	Animation string  `yaml:"animation"`
	Start     string  `yaml:"start"`
	Length    string  `yaml:"length"`
}

// ReadEditList parses an edit list from a YAML file.
func ReadEditList(path string) (*EditList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read edit list: %w", err)
	}
	var list EditList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse edit list: %w", err)
	}
	return &list, nil
}

// Apply replays the edit list against the session in order: clips,
// music, filter, overlays, rotation.
func (e *Editor) Apply(ctx context.Context, list *EditList) error {
	for _, name := range list.Clips {
		if err := e.AppendClip(name); err != nil {
			return err
		}
	}
	if list.Music != "" {
		if err := e.SetBackgroundMusic(list.Music); err != nil {
			return err
		}
	}
	if list.Grayscale {
		e.ApplyGrayscale()
	}
	dur := e.Timeline().Duration()
	for _, te := range list.Text {
		opts, err := te.options(dur)
		if err != nil {
			return fmt.Errorf("text %q: %w", te.Text, err)
		}
		if err := e.AddTextOverlay(te.Text, opts); err != nil {
			return fmt.Errorf("text %q: %w", te.Text, err)
		}
	}
	for _, ie := range list.Images {
		if err := ie.apply(e, dur); err != nil {
			return fmt.Errorf("image %q: %w", ie.Path, err)
		}
	}
	for i := 0; i < list.Rotate%4; i++ {
		e.Rotate()
	}
	return ctx.Err()
}

func (te TextEdit) options(dur timecode.Time) (effects.TextOptions, error) {
	opts := effects.DefaultTextOptions()
	if te.Position != "" {
		pos, err := effects.ParsePosition(te.Position)
		if err != nil {
			return opts, err
		}
		opts.Position = pos
	}
	if te.FontSize > 0 {
		opts.FontSize = te.FontSize
	}
	win, err := parseWindow(te.Start, te.Length, dur)
	if err != nil {
		return opts, err
	}
	opts.Window = win
	return opts, nil
}

func (ie ImageEdit) apply(e *Editor, dur timecode.Time) error {
	f, err := os.Open(ie.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	win, err := parseWindow(ie.Start, ie.Length, dur)
	if err != nil {
		return err
	}

	switch ie.Preset {
	case "":
	case "watermark":
		return e.AddWatermark(img, win)
	case "logo":
		return e.AddLogo(img, win)
	default:
		return fmt.Errorf("unknown preset %q", ie.Preset)
	}

	opts := effects.ImageOptions{Window: win}
	if ie.Position != "" {
		if opts.Position, err = effects.ParsePosition(ie.Position); err != nil {
			return err
		}
	} else {
		opts.Position = effects.BottomCenter
	}
	if ie.Size != "" {
		if opts.Size, err = effects.ParseSize(ie.Size); err != nil {
			return err
		}
	} else {
		opts.Size = effects.SizeMedium
	}
	if opts.Animation, err = effects.ParseCurve(ie.Animation); err != nil {
		return err
	}
	opts.Opacity = ie.Opacity
	return e.AddImageOverlay(img, opts)
}

// parseWindow builds an effect window from "MM:SS"-style timestamps. An
// empty length extends the window to the end of the composition.
func parseWindow(start, length string, dur timecode.Time) (timecode.Range, error) {
	var win timecode.Range
	if start != "" {
		d, err := util.ParseTimestamp(start)
		if err != nil {
			return win, fmt.Errorf("start: %w", err)
		}
		win.Start = timecode.FromDuration(d)
	}
	if length != "" {
		d, err := util.ParseTimestamp(length)
		if err != nil {
			return win, fmt.Errorf("length: %w", err)
		}
		win.Length = timecode.FromDuration(d)
	} else if win.Start < dur {
		win.Length = dur - win.Start
	}
	return win, nil
}
