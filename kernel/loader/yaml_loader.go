package loader

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/openziti/foundation/v2/errorz"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// LoadConfig reads a padctl configuration file, applies PADCTL_* environment overrides and fills
// defaults. A missing file is not an error; the defaults (plus environment) are used.
func LoadConfig(path string) (*model.PadConfig, error) {
	cfg := &model.PadConfig{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "unable to read config '%s'", path)
	}
	if err == nil {
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "unable to parse config '%s'", path)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid environment override")
	}
	cfg.ApplyDefaults()

	if result := Validate(cfg); !result.IsValid() {
		return nil, errors.Wrapf(result.Err(), "invalid config '%s'", path)
	}
	return cfg, nil
}

// DefaultConfigPath is ~/.padctl/config.yml.
func DefaultConfigPath() (string, error) {
	dir, err := model.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, model.ConfigFileName), nil
}

type ValidationError struct {
	Path    string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Err folds every error into one *errorz.FieldError per offending field, or nil when valid.
func (r *ValidationResult) Err() error {
	if r.IsValid() {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, errorz.NewFieldError(e.Message, e.Path, e.Value))
	}
	return stderrors.Join(errs...)
}

func (r *ValidationResult) addError(path string, value interface{}, format string, args ...interface{}) {
	r.Errors = append(r.Errors, ValidationError{Path: path, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) addWarning(path, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

// ValidateConfigBytes parses and validates raw YAML without touching the environment.
func ValidateConfigBytes(data []byte) (*ValidationResult, error) {
	cfg := &model.PadConfig{}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrap(err, "unable to parse config")
	}
	cfg.ApplyDefaults()
	return Validate(cfg), nil
}

// Validate checks a defaulted config.
func Validate(cfg *model.PadConfig) *ValidationResult {
	result := &ValidationResult{}

	validateURL(result, "device.base_url", cfg.Device.BaseURL, "http", "https")
	if cfg.Device.PushURL == "" {
		result.addWarning("device.push_url", "no push url; state will not update live")
	} else {
		validateURL(result, "device.push_url", cfg.Device.PushURL, "ws", "wss")
	}

	l := cfg.Limits
	if l.MaxWaterVolume <= 0 {
		result.addError("limits.max_water_volume", l.MaxWaterVolume, "must be positive, got %g", l.MaxWaterVolume)
	}
	if l.MinPressure < 0 {
		result.addError("limits.min_pressure", l.MinPressure, "must not be negative, got %g", l.MinPressure)
	}
	if l.MaxPressure <= l.MinPressure {
		result.addError("limits.max_pressure", l.MaxPressure, "must exceed min_pressure (%g), got %g", l.MinPressure, l.MaxPressure)
	}
	if l.MaxPressure > model.DefaultMaxPressure {
		result.addWarning("limits.max_pressure", "%g bar exceeds the firmware maximum of %g", l.MaxPressure, model.DefaultMaxPressure)
	}

	for name, states := range cfg.Policy.SafeRocketStates {
		path := "policy.safe_rocket_states." + name
		action, err := model.ParseActionID(name)
		if err != nil {
			result.addError(path, name, "unknown action '%s'", name)
			continue
		}
		if !action.Dispatchable() {
			result.addError(path, name, "'%s' is never dispatched", name)
		}
		if len(states) == 0 {
			result.addWarning(path, "no safe states; '%s' will always ask for confirmation", name)
		}
		for _, s := range states {
			if !knownRocketState(s) {
				result.addError(path, s, "unknown rocket state '%s'", s)
			}
		}
	}
	if cfg.Policy.RotateConfirmDegrees < 0 {
		result.addError("policy.rotate_confirm_degrees", cfg.Policy.RotateConfirmDegrees, "must not be negative, got %g", cfg.Policy.RotateConfirmDegrees)
	}

	if cfg.Influx.Enabled() {
		validateURL(result, "influx.url", cfg.Influx.URL, "http", "https")
		if cfg.Influx.Bucket == "" {
			result.addError("influx.bucket", cfg.Influx.Bucket, "required when influx.url is set")
		}
		if cfg.Influx.Org == "" {
			result.addWarning("influx.org", "empty organization")
		}
	}

	return result
}

func validateURL(result *ValidationResult, path, raw string, schemes ...string) {
	u, err := url.Parse(raw)
	if err != nil {
		result.addError(path, raw, "invalid url: %v", err)
		return
	}
	if u.Host == "" {
		result.addError(path, raw, "missing host in '%s'", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return
		}
	}
	result.addError(path, raw, "scheme must be one of %v, got '%s'", schemes, u.Scheme)
}

func knownRocketState(v string) bool {
	for _, rs := range model.RocketStates {
		if strings.EqualFold(string(rs), strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}
