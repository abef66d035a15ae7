package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads dir/.env into the process environment. A missing file
// is not an error; variables already set are not overridden.
func LoadDotEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ApplyEnvConfig applies configuration from environment variables
// (PHOTOPOST_*). Values whose flag was set explicitly (changed map) are
// left alone.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("content-root", os.Getenv("PHOTOPOST_CONTENT_ROOT"), &cfg.Site.ContentRoot)
	s.setString("posts-dir", os.Getenv("PHOTOPOST_POSTS_DIR"), &cfg.Site.PostsDir)
	s.setString("post-template", os.Getenv("PHOTOPOST_POST_TEMPLATE"), &cfg.Templates.Post)
	s.setString("image-template", os.Getenv("PHOTOPOST_IMAGE_TEMPLATE"), &cfg.Templates.ImageFull)
	s.setString("photos", os.Getenv("PHOTOPOST_PHOTOS"), &cfg.Images.SourceDir)
	s.setString("processed-dir", os.Getenv("PHOTOPOST_PROCESSED_DIR"), &cfg.Images.ProcessedDir)
	s.setString("server-config", os.Getenv("PHOTOPOST_SERVER_CONFIG"), &cfg.Upload.ServerConfig)
	s.setString("title-policy", os.Getenv("PHOTOPOST_TITLE_POLICY"), &cfg.Validation.TitlePolicy)

	return s.setIntFromString("max-width", os.Getenv("PHOTOPOST_MAX_WIDTH"), &cfg.Images.MaxWidth)
}

// configSetter applies values only when the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", flag, value, err)
	}
	*dst = v
	return nil
}
