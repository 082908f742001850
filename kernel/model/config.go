package model

import (
	"net/url"
	"os"
	"path/filepath"
)

const (
	ConfigFileName = "config.yml"

	DefaultBaseURL              = "http://rocket.local"
	DefaultPushPort             = "81"
	DefaultMaxWaterVolume       = 1.5  // liters
	DefaultMinPressure          = 1.0  // bars, exclusive
	DefaultMaxPressure          = 10.0 // bars
	DefaultRotateConfirmDegrees = 90.0
)

type PadConfig struct {
	Device DeviceConfig `yaml:"device" envPrefix:"PADCTL_"`
	Limits LimitsConfig `yaml:"limits"`
	Policy PolicyConfig `yaml:"policy"`
	Influx InfluxConfig `yaml:"influx" envPrefix:"PADCTL_INFLUX_"`
}

type DeviceConfig struct {
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	PushURL string `yaml:"push_url" env:"PUSH_URL"`
}

type LimitsConfig struct {
	MaxWaterVolume float64 `yaml:"max_water_volume"`
	MinPressure    float64 `yaml:"min_pressure"`
	MaxPressure    float64 `yaml:"max_pressure"`
}

// PolicyConfig is the confirmation table. SafeRocketStates lists, per action, the rocket states in
// which the action dispatches without a prompt. Actions left out fall back to the defaults.
type PolicyConfig struct {
	SafeRocketStates     map[string][]string `yaml:"safe_rocket_states"`
	RotateConfirmDegrees float64             `yaml:"rotate_confirm_degrees"`
}

type InfluxConfig struct {
	URL    string `yaml:"url" env:"URL"`
	Token  string `yaml:"token" env:"TOKEN"`
	Org    string `yaml:"org" env:"ORG"`
	Bucket string `yaml:"bucket" env:"BUCKET"`
}

func (c InfluxConfig) Enabled() bool {
	return c.URL != ""
}

// DefaultConfig is used when no configuration file exists.
func DefaultConfig() *PadConfig {
	cfg := &PadConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field.
func (c *PadConfig) ApplyDefaults() {
	if c.Device.BaseURL == "" {
		c.Device.BaseURL = DefaultBaseURL
	}
	if c.Device.PushURL == "" {
		c.Device.PushURL = DerivePushURL(c.Device.BaseURL)
	}
	if c.Limits.MaxWaterVolume == 0 {
		c.Limits.MaxWaterVolume = DefaultMaxWaterVolume
	}
	if c.Limits.MinPressure == 0 {
		c.Limits.MinPressure = DefaultMinPressure
	}
	if c.Limits.MaxPressure == 0 {
		c.Limits.MaxPressure = DefaultMaxPressure
	}
	c.Policy.SafeRocketStates = MergeSafeRocketStates(c.Policy.SafeRocketStates)
	if c.Policy.RotateConfirmDegrees == 0 {
		c.Policy.RotateConfirmDegrees = DefaultRotateConfirmDegrees
	}
}

// DefaultSafeRocketStates lists, per action, the rocket states that need no confirmation.
func DefaultSafeRocketStates() map[string][]string {
	return map[string][]string{
		string(ActionStartFilling): {string(RocketIdlingClosed)},
		string(ActionLaunch):       {string(RocketIdlingClosed)},
	}
}

// MergeSafeRocketStates returns a copy of table with every default action it does not list
// added. A listed action keeps its own states, so a partial table never drops a confirmation.
func MergeSafeRocketStates(table map[string][]string) map[string][]string {
	out := DefaultSafeRocketStates()
	for action, states := range table {
		out[action] = append([]string(nil), states...)
	}
	return out
}

// DerivePushURL returns the firmware's push socket address for an HTTP base URL: same host, port 81.
func DerivePushURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return scheme + "://" + u.Hostname() + ":" + DefaultPushPort + "/"
}

// ConfigDir is ~/.padctl.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".padctl"), nil
}
