package config

import (
	"encoding/json"
	"fmt"
	"os"

	"photopost/common"
)

// ServerConfig describes the web host the post images are pushed to.
type ServerConfig struct {
	Host              string `json:"host"`
	User              string `json:"user"`
	PathToPostImgRoot string `json:"path_to_post_img_root"`
}

// LoadServerConfig reads the JSON server config. Every failure wraps
// common.ErrConfigLoad.
func LoadServerConfig(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}

	var sc ServerConfig
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", common.ErrConfigLoad, path, err)
	}

	switch {
	case sc.Host == "":
		return nil, fmt.Errorf("%w: %s: host is required", common.ErrConfigLoad, path)
	case sc.User == "":
		return nil, fmt.Errorf("%w: %s: user is required", common.ErrConfigLoad, path)
	case sc.PathToPostImgRoot == "":
		return nil, fmt.Errorf("%w: %s: path_to_post_img_root is required", common.ErrConfigLoad, path)
	}

	return &sc, nil
}

// Target returns the scp style "user@host" address.
func (s *ServerConfig) Target() string {
	return fmt.Sprintf("%s@%s", s.User, s.Host)
}
