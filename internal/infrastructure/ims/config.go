package ims

import (
	"errors"
	"strings"
)

const (
	// DefaultAuthURL is the base URL of the inventory system's OAuth2 server
	DefaultAuthURL = "https://auth.thetis-ims.com/oauth2/"
	// DefaultAPIURL is the base URL of the inventory system's REST API
	DefaultAPIURL = "https://api.thetis-ims.com/2/"
)

// Errors for IMS configuration
var (
	ErrConfigMissingClientID     = errors.New("ims: client id is required")
	ErrConfigMissingClientSecret = errors.New("ims: client secret is required")
	ErrConfigMissingAPIKey       = errors.New("ims: api key is required")
)

// Config holds configuration for the inventory system API
type Config struct {
	// AuthURL is the OAuth2 base URL; the token endpoint is AuthURL + "token"
	AuthURL string
	// APIURL is the REST API base URL
	APIURL string
	// ClientID and ClientSecret are the client-credentials grant
	ClientID     string
	ClientSecret string
	// APIKey is sent as x-api-key on every API call
	APIKey string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// NewConfig creates an IMS configuration with default endpoints
func NewConfig(clientID, clientSecret, apiKey string) *Config {
	return &Config{
		AuthURL:        DefaultAuthURL,
		APIURL:         DefaultAPIURL,
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		APIKey:         apiKey,
		TimeoutSeconds: 30,
	}
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return ErrConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrConfigMissingClientSecret
	}
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}
	if c.AuthURL == "" {
		c.AuthURL = DefaultAuthURL
	}
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	c.AuthURL = withTrailingSlash(c.AuthURL)
	c.APIURL = withTrailingSlash(c.APIURL)
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// TokenURL returns the client-credentials token endpoint
func (c *Config) TokenURL() string {
	return withTrailingSlash(c.AuthURL) + "token"
}

func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
