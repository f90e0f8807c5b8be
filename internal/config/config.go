// Package config loads the CLI configuration: named seller profiles from
// ~/.mws/config.yml, overridden by MWS_* environment variables (optionally
// read from a .env file) and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

const (
	// EnvPrefix namespaces environment overrides, e.g. MWS_SELLER_ID.
	EnvPrefix = "MWS"
	// DefaultProfile is used when no profile is selected.
	DefaultProfile = "default"

	dirName  = ".mws"
	fileName = "config.yml"
)

// Keys that may be overridden from the environment or flags.
const (
	KeyConfig        = "config"
	KeyProfile       = "profile"
	KeyOutput        = "output"
	KeySellerID      = "seller_id"
	KeyMarketplaceID = "marketplace_id"
	KeyAccessKeyID   = "access_key_id"
	KeySecretKey     = "secret_key"
	KeyAuthToken     = "auth_token"
	KeyEndpoint      = "endpoint"
	KeyRateLimit     = "rate_limit"
	KeyRetries       = "retries"
	KeyTimeout       = "timeout"
)

// Profile is one stored seller account.
type Profile struct {
	mws.Credentials `yaml:",inline" mapstructure:",squash"`

	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`
}

// Config represents the CLI configuration file.
type Config struct {
	CurrentProfile string              `json:"current_profile,omitempty" yaml:"current_profile,omitempty" mapstructure:"current_profile"`
	Profiles       map[string]*Profile `json:"profiles,omitempty"        yaml:"profiles,omitempty"        mapstructure:"profiles"`

	Output    string           `json:"output,omitempty"     yaml:"output,omitempty"     mapstructure:"output"`
	RateLimit int              `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty" mapstructure:"rate_limit"`
	Retries   int              `json:"retries,omitempty"    yaml:"retries,omitempty"    mapstructure:"retries"`
	Timeout   time.Duration    `json:"timeout,omitempty"    yaml:"timeout,omitempty"    mapstructure:"timeout"`
	Cache     *mws.CacheConfig `json:"cache,omitempty"      yaml:"cache,omitempty"      mapstructure:"cache"`

	// Headers are added to every request, e.g. for an authenticating proxy.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" mapstructure:"headers"`
}

// DefaultPath returns ~/.mws/config.yml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, dirName, fileName), nil
}

// LoadDotEnv exports the variables of the given .env files (default ./.env)
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", file, err)
		}
	}

	return nil
}

// Prepare points v at the configuration file and enables MWS_* overrides.
func Prepare(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault(KeyOutput, constants.FormatTable)

	path := v.GetString(KeyConfig)
	if path == "" {
		var err error

		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	return nil
}

// Load reads the configuration file, if it exists, through v.
func Load(v *viper.Viper) (*Config, error) {
	err := v.ReadInConfig()
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("reading %s: %w", v.ConfigFileUsed(), err)
	}

	config := &Config{}

	err = v.Unmarshal(config)
	if err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	if config.Profiles == nil {
		config.Profiles = make(map[string]*Profile)
	}

	config.Output = v.GetString(KeyOutput)

	return config, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError

	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// ProfileNames returns the stored profile names, sorted.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Profile returns the named profile, or the current one when name is empty.
func (c *Config) Profile(name string) (*Profile, error) {
	if name == "" {
		name = c.CurrentProfile
	}

	if name == "" {
		name = DefaultProfile
	}

	profile, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", constants.ErrUnknownProfile, name)
	}

	return profile, nil
}

// SetProfile stores a profile and makes it current when none is.
func (c *Config) SetProfile(name string, profile *Profile) {
	if c.Profiles == nil {
		c.Profiles = make(map[string]*Profile)
	}

	c.Profiles[name] = profile

	if c.CurrentProfile == "" {
		c.CurrentProfile = name
	}
}

// Resolve merges the selected profile with environment and flag overrides.
// A missing profile is not an error when the overrides supply credentials.
func (c *Config) Resolve(v *viper.Viper) (*Profile, error) {
	resolved := &Profile{}

	profile, err := c.Profile(v.GetString(KeyProfile))
	if err == nil {
		*resolved = *profile
	}

	overrides := []struct {
		key    string
		target *string
	}{
		{KeySellerID, &resolved.SellerID},
		{KeyMarketplaceID, &resolved.MarketplaceID},
		{KeyAccessKeyID, &resolved.AccessKeyID},
		{KeySecretKey, &resolved.SecretKey},
		{KeyAuthToken, &resolved.AuthToken},
		{KeyEndpoint, &resolved.Endpoint},
	}

	for _, override := range overrides {
		if value := v.GetString(override.key); value != "" {
			*override.target = value
		}
	}

	if resolved.AccessKeyID == "" && resolved.SecretKey == "" {
		if err != nil && v.GetString(KeyProfile) != "" {
			return nil, err
		}

		return nil, constants.ErrNoCredentials
	}

	return resolved, nil
}

// ClientConfig builds the library configuration for the resolved profile.
func (c *Config) ClientConfig(v *viper.Viper) (*mws.Config, error) {
	profile, err := c.Resolve(v)
	if err != nil {
		return nil, err
	}

	clientConfig := &mws.Config{
		Credentials:       profile.Credentials,
		Endpoint:          profile.Endpoint,
		TransportRetryMax: c.Retries,
		HTTPTimeout:       c.Timeout,
	}

	if retries := v.GetInt(KeyRetries); retries > 0 {
		clientConfig.TransportRetryMax = retries
	}

	if timeout := v.GetDuration(KeyTimeout); timeout > 0 {
		clientConfig.HTTPTimeout = timeout
	}

	if c.Cache != nil {
		cache, err := mws.NewCacheBuilder().
			WithType(c.Cache.Type).
			WithMaxSize(c.Cache.MaxSize).
			WithNATSConfig(c.Cache.NATS).
			Build()
		if err != nil {
			return nil, fmt.Errorf("creating report cache: %w", err)
		}

		clientConfig.ReportCache = cache
	}

	rateLimit := c.RateLimit
	if flagLimit := v.GetInt(KeyRateLimit); flagLimit > 0 {
		rateLimit = flagLimit
	}

	if rateLimit > 0 || len(c.Headers) > 0 {
		clientConfig.Interceptors = mws.NewInterceptorChain()
	}

	if rateLimit > 0 {
		clientConfig.Interceptors.AddRequestInterceptor(mws.RateLimitInterceptor(rateLimit))
	}

	if len(c.Headers) > 0 {
		clientConfig.Interceptors.AddRequestInterceptor(mws.HeaderInterceptor(c.Headers))
	}

	return clientConfig, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func Save(path string, config *Config) error {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	stored := *config
	if stored.Output == constants.FormatTable {
		stored.Output = ""
	}

	data, err := yaml.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
