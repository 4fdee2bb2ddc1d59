package unifaun

import (
	"errors"
	"strings"
)

// DefaultBaseURL is the base URL of the Unifaun extended REST API
const DefaultBaseURL = "https://api.unifaun.com/rs-extapi/v1/"

// ErrConfigInvalidBaseURL is returned for a base URL that is not http(s)
var ErrConfigInvalidBaseURL = errors.New("unifaun: base url must be http or https")

// Config holds configuration for the Unifaun API.
// Credentials are not part of it: they come with each request's carrier setup.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return ErrConfigInvalidBaseURL
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 60
	}
	return nil
}
