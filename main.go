package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"photopost/common"
	"photopost/config"
	"photopost/deployer"
	"photopost/publisher"
	"photopost/watcher"
)

const longHelp = `Create a new photo blog post.

Images in the photo folder are resized to the full post width (when wider),
the ssh/scp commands to upload them are printed, and a post built from the
post and image templates is written to the site's posts folder.

Titles may only contain letters, digits and dashes. Whether uppercase letters
are allowed depends on the title policy (mixed-case or lowercase); both
rules are in use, so pick the one matching your site.`

var exampleUsage = strings.TrimSpace(`
  photopost topanga-state-park
  photopost --date 2019-03-03 --photos ~/Pictures/topanga topanga-state-park
  photopost --config ~/klog/photopost.yaml --watch july-fourth
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

type options struct {
	cfgPath     string
	rawDate     string
	photos      string
	titlePolicy string
	narrow      bool
	watch       bool
	verbose     bool
}

func main() {
	if err := newRootCmd(deployer.NewPrintUploader(os.Stdout)).Execute(); err != nil {
		common.Logger().Error().Err(err).Msg("photopost")
		os.Exit(1)
	}
}

func newRootCmd(uploader deployer.Uploader) *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "photopost [flags] <title>",
		Short:         "Create a photo blog post from a folder of images",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			common.SetVerbose(opts.verbose)

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			cfg, err := resolveConfig(opts, changed)
			if err != nil {
				return err
			}

			req, err := common.NewPostRequest(opts.rawDate, args[0], cfg.Images.SourceDir, opts.narrow, cfg.TitlePolicy(), time.Now())
			if err != nil {
				return err
			}

			pub := publisher.New(cfg, uploader)
			if err := publish(pub, req); err != nil {
				return err
			}

			if !opts.watch {
				return nil
			}
			return watchPhotos(cfg, pub, req)
		},
	}

	root.Flags().StringVarP(&opts.rawDate, "date", "d", common.DateToday, "date of the new post; also accepts TODAY")
	root.Flags().StringVarP(&opts.photos, "photos", "p", "", "folder holding the images of the post (default: images.source_dir)")
	root.Flags().BoolVarP(&opts.narrow, "narrow-images", "n", false, "make the images only as wide as the text (not implemented yet)")
	root.Flags().StringVarP(&opts.cfgPath, "config", "c", "", fmt.Sprintf("path to config file (default: %s next to the executable)", config.DefaultConfigName))
	root.Flags().StringVar(&opts.titlePolicy, "title-policy", "", "title character rule: mixed-case or lowercase (default: validation.title_policy)")
	root.Flags().BoolVarP(&opts.watch, "watch", "w", false, "keep running and rebuild the post when the photo folder changes")
	root.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	return root
}

// resolveConfig builds the effective configuration. Precedence, lowest
// first: defaults, config file, .env, PHOTOPOST_* variables, flags.
func resolveConfig(opts options, changed map[string]bool) (*config.Config, error) {
	cfg, err := loadConfig(opts.cfgPath, changed)
	if err != nil {
		return nil, err
	}
	if changed["photos"] {
		cfg.Images.SourceDir = opts.photos
	}
	if changed["title-policy"] {
		cfg.Validation.TitlePolicy = opts.titlePolicy
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadConfig applies defaults, the config file, .env and PHOTOPOST_*
// variables, in that order.
func loadConfig(cfgPath string, changed map[string]bool) (*config.Config, error) {
	log := common.Logger()
	baseDir := config.ExecutableDir()

	if cfgPath == "" {
		if candidate := filepath.Join(baseDir, config.DefaultConfigName); config.FileExists(candidate) {
			cfgPath = candidate
		}
	}

	var cfg *config.Config
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		baseDir = filepath.Dir(cfgPath)
		log.Debug().Str("path", cfgPath).Msg("loaded config")
	} else {
		defaults := config.Default(baseDir)
		cfg = &defaults
		log.Debug().Str("base", baseDir).Msg("no config file, using defaults")
	}

	if err := config.LoadDotEnv(baseDir); err != nil {
		return nil, err
	}
	if err := config.ApplyEnvConfig(cfg, changed); err != nil {
		return nil, err
	}

	log.Debug().Interface("config", cfg).Msg("configuration")
	return cfg, nil
}

// publish runs one publish pass. A panic is reported with its stack trace
// and turned into an error.
func publish(pub *publisher.Publisher, req common.PostRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error().
				Str("stack", string(debug.Stack())).
				Msgf("Exception: %v", r)
			err = fmt.Errorf("post creation crashed: %v", r)
		}
	}()

	_, err = pub.Publish(req)
	return err
}

func watchPhotos(cfg *config.Config, pub *publisher.Publisher, req common.PostRequest) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.NewWatcher(req.PhotoSourceDir, cfg.Images.Extensions, watcher.DefaultDebounce)
	if err != nil {
		return err
	}

	common.Logger().Info().Msg("Press Ctrl+C to stop")
	err = w.Run(ctx, func(ev watcher.Event) {
		common.Logger().Info().Msgf("📄 %s %s, rebuilding post", filepath.Base(ev.FilePath), ev.Type)
		if err := publish(pub, req); err != nil {
			common.Logger().Error().Err(err).Msg("Rebuild failed")
		}
	})

	common.Logger().Info().Msg("Shutting down...")
	return err
}
