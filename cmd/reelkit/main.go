package main

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/keagan/reelkit/internal/asset"
	"github.com/keagan/reelkit/internal/config"
	"github.com/keagan/reelkit/internal/editor"
	"github.com/keagan/reelkit/internal/ffmpeg"
	"github.com/keagan/reelkit/internal/logging"
	"github.com/keagan/reelkit/internal/render"
	"github.com/keagan/reelkit/pkg/util"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reelkit",
	Short: "reelkit - non-destructive video composition engine",
	Long:  "A composition engine that concatenates clips, scores them with music, burns in time-windowed overlays and exports the result.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./reelkit.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(thumbsCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(configCmd)
}

// newSession wires a full editing session for one base clip.
func newSession(cfg *config.Config, base string) (*editor.Editor, error) {
	exec, err := ffmpeg.New(logging.NewLogger(), cfg.FFmpeg.BinaryPath, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, err
	}

	lib := asset.NewDirLibrary(log.Logger, cfg.Assets.SearchPaths, exec, exec)
	coord := render.NewFFmpegCoordinator(exec, cfg)

	return editor.New(editor.Options{
		Library:     lib,
		Coordinator: coord,
		BaseAsset:   base,
		FPS:         cfg.Render.FPS,
		Thumbnails:  cfg.Thumbnails.Count,
	})
}

var editsFile string

var exportCmd = &cobra.Command{
	Use:   "export [base clip]",
	Short: "Compose and export a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		if err := util.EnsureDir(cfg.Export.Dir); err != nil {
			return err
		}

		sess, err := newSession(cfg, args[0])
		if err != nil {
			return err
		}

		if editsFile != "" {
			list, err := editor.ReadEditList(editsFile)
			if err != nil {
				return err
			}
			if err := sess.Apply(cmd.Context(), list); err != nil {
				return err
			}
		}

		path, err := sess.Export(cmd.Context())
		if err != nil {
			return err
		}

		log.Info().
			Str("output", path).
			Str("duration", util.FormatDuration(sess.Timeline().Duration().Duration())).
			Msg("export complete")
		fmt.Println(path)

		return nil
	},
}

var thumbsOut string

var thumbsCmd = &cobra.Command{
	Use:   "thumbs [base clip]",
	Short: "Render a thumbnail strip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		if err := util.EnsureDir(thumbsOut); err != nil {
			return err
		}

		sess, err := newSession(cfg, args[0])
		if err != nil {
			return err
		}

		if editsFile != "" {
			list, err := editor.ReadEditList(editsFile)
			if err != nil {
				return err
			}
			if err := sess.Apply(cmd.Context(), list); err != nil {
				return err
			}
		}

		if err := sess.GenerateThumbnails(cmd.Context()); err != nil {
			return err
		}

		set := sess.Thumbnails()
		for i, img := range set.Images {
			if img == nil {
				continue
			}
			path := filepath.Join(thumbsOut, fmt.Sprintf("thumb-%02d.png", i))
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := png.Encode(f, img); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		}

		log.Info().Int("count", len(set.Images)).Str("dir", thumbsOut).Msg("thumbnails written")
		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [media file]",
	Short: "Print media file metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		exec, err := ffmpeg.New(logging.NewLogger(), cfg.FFmpeg.BinaryPath, cfg.FFmpeg.Threads)
		if err != nil {
			return err
		}

		info, err := exec.Probe(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		log.Info().
			Str("duration", util.FormatDuration(info.Duration)).
			Int("width", info.Width).
			Int("height", info.Height).
			Bool("video", info.HasVideo).
			Bool("audio", info.HasAudio).
			Str("video_codec", info.VideoCodec).
			Str("audio_codec", info.AudioCodec).
			Msg("probe complete")

		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "./reelkit.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		cfg := config.FromContext(cmd.Context())
		if err := cfg.Save(path); err != nil {
			return err
		}

		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&editsFile, "edits", "", "YAML edit list to apply before rendering")
	thumbsCmd.Flags().StringVar(&editsFile, "edits", "", "YAML edit list to apply before rendering")
	thumbsCmd.Flags().StringVar(&thumbsOut, "out", "./thumbs", "output directory for thumbnail images")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
