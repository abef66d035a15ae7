package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"photopost/common"
)

// DefaultConfigName is looked up next to the executable when no --config
// flag is given.
const DefaultConfigName = "photopost.yaml"

// Config represents the application configuration
type Config struct {
	Site       SiteConfig       `yaml:"site" toml:"site"`
	Templates  TemplatesConfig  `yaml:"templates" toml:"templates"`
	Images     ImagesConfig     `yaml:"images" toml:"images"`
	Upload     UploadConfig     `yaml:"upload" toml:"upload"`
	Validation ValidationConfig `yaml:"validation" toml:"validation"`
}

// SiteConfig locates the static site repository.
type SiteConfig struct {
	ContentRoot string `yaml:"content_root" toml:"content_root"`
	PostsDir    string `yaml:"posts_dir" toml:"posts_dir"`
}

type TemplatesConfig struct {
	Post      string `yaml:"post" toml:"post"`
	ImageFull string `yaml:"image_full" toml:"image_full"`
}

type ImagesConfig struct {
	SourceDir    string         `yaml:"source_dir" toml:"source_dir"`
	ProcessedDir string         `yaml:"processed_dir" toml:"processed_dir"`
	MaxWidth     int            `yaml:"max_width" toml:"max_width"`
	Extensions   []string       `yaml:"extensions" toml:"extensions"`
	Quality      map[string]int `yaml:"quality" toml:"quality"`
}

type UploadConfig struct {
	ServerConfig string `yaml:"server_config" toml:"server_config"`
	Method       string `yaml:"method" toml:"method"`
}

type ValidationConfig struct {
	TitlePolicy string `yaml:"title_policy" toml:"title_policy"`
}

// UploadPrint prints the shell commands for a manual upload.
const UploadPrint = "print"

// Default returns the configuration with every path under baseDir.
func Default(baseDir string) Config {
	return Config{
		Site: SiteConfig{
			ContentRoot: filepath.Join(baseDir, "site"),
			PostsDir:    "_posts",
		},
		Templates: TemplatesConfig{
			Post:      filepath.Join(baseDir, "templates", "post.md"),
			ImageFull: filepath.Join(baseDir, "templates", "image-full.md"),
		},
		Images: ImagesConfig{
			SourceDir:    filepath.Join(baseDir, "photos"),
			ProcessedDir: filepath.Join(baseDir, "processed"),
			MaxWidth:     common.FullWidth,
			Extensions:   append([]string(nil), common.DefaultExtensions...),
			Quality:      map[string]int{"jpeg": 90, "webp": 85},
		},
		Upload: UploadConfig{
			ServerConfig: filepath.Join(baseDir, "server.json"),
			Method:       UploadPrint,
		},
		Validation: ValidationConfig{
			TitlePolicy: string(common.TitleMixedCase),
		},
	}
}

// Load reads the configuration file at path on top of the defaults for
// its directory. YAML is assumed unless the extension is .toml. Relative
// paths in the file are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}
	cfg := Default(dir)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.resolvePaths(dir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{
		&c.Site.ContentRoot,
		&c.Templates.Post,
		&c.Templates.ImageFull,
		&c.Images.SourceDir,
		&c.Images.ProcessedDir,
		&c.Upload.ServerConfig,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Validate checks if required configuration fields are set
func (c *Config) Validate() error {
	if c.Site.ContentRoot == "" {
		return fmt.Errorf("site.content_root is required")
	}
	if c.Site.PostsDir == "" {
		return fmt.Errorf("site.posts_dir is required")
	}
	if c.Templates.Post == "" {
		return fmt.Errorf("templates.post is required")
	}
	if c.Templates.ImageFull == "" {
		return fmt.Errorf("templates.image_full is required")
	}
	if c.Images.ProcessedDir == "" {
		return fmt.Errorf("images.processed_dir is required")
	}
	if c.Images.SourceDir != "" && samePath(c.Images.SourceDir, c.Images.ProcessedDir) {
		return fmt.Errorf("images.processed_dir must differ from the photo folder: it is cleared on every run")
	}
	if c.Images.MaxWidth <= 0 {
		return fmt.Errorf("images.max_width must be positive, got %d", c.Images.MaxWidth)
	}
	if len(c.Images.Extensions) == 0 {
		return fmt.Errorf("images.extensions must not be empty")
	}
	for format, q := range c.Images.Quality {
		if q < 1 || q > 100 {
			return fmt.Errorf("images.quality.%s must be between 1 and 100, got %d", format, q)
		}
	}
	if c.Upload.Method != UploadPrint {
		return fmt.Errorf("upload.method %q is not supported (only %q)", c.Upload.Method, UploadPrint)
	}
	if _, err := common.ParseTitlePolicy(c.Validation.TitlePolicy); err != nil {
		return fmt.Errorf("validation.title_policy: %w", err)
	}
	return nil
}

// PostsPath returns the directory new posts are written to.
func (c *Config) PostsPath() string {
	return filepath.Join(c.Site.ContentRoot, c.Site.PostsDir)
}

// TitlePolicy returns the parsed title policy. Validate must have passed.
func (c *Config) TitlePolicy() common.TitlePolicy {
	return common.TitlePolicy(c.Validation.TitlePolicy)
}

// Quality returns the encoder quality for format, or def when unset.
func (c *Config) Quality(format string, def int) int {
	if q, ok := c.Images.Quality[format]; ok {
		return q
	}
	return def
}

// ExecutableDir returns the directory holding the running binary, or the
// working directory when it cannot be determined.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			return filepath.Dir(resolved)
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
