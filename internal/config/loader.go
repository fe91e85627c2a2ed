package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Load reads configuration from the process environment, applies defaults
// and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load with a custom variable source, used by tests.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}
	if err := loadStruct(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// loadStruct fills v from its env/envAlt/default/required tags, recursing
// into nested structs. Every bad variable is reported, not just the first.
func loadStruct(v reflect.Value, lookup LookupFunc) error {
	var errs []error
	for i := range v.NumField() {
		field, sf := v.Field(i), v.Type().Field(i)
		if !field.CanSet() {
			continue
		}
		if sf.Type.Kind() == reflect.Struct {
			errs = append(errs, loadStruct(field, lookup))
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}
		raw, ok := resolve(lookup, name, sf.Tag)
		if !ok {
			if sf.Tag.Get("required") == "true" {
				errs = append(errs, fmt.Errorf("required environment variable %s is not set", name))
			}
			continue
		}
		if err := setField(field, raw); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s=%q: %w", name, raw, err))
		}
	}
	return errors.Join(errs...)
}

// resolve returns the first non-blank of the primary variable, the envAlt
// variable and the default tag.
func resolve(lookup LookupFunc, name string, tag reflect.StructTag) (string, bool) {
	for _, key := range []string{name, tag.Get("envAlt")} {
		if key == "" {
			continue
		}
		if v, _ := lookup(key); strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	def := tag.Get("default")
	return def, def != ""
}

var durationType = reflect.TypeFor[time.Duration]()

func setField(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %w", err)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice of %s", field.Type().Elem())
		}
		var items []string
		for item := range strings.SplitSeq(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate reports every out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Server.Port > 0 && c.Server.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	check(c.Server.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	check(c.Server.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")

	check(c.Upload.MaxFileSize > 0, "UPLOAD_MAX_FILE_SIZE must be positive")

	check(c.Session.TTL > 0, "SESSION_TTL must be positive")
	check(c.Session.SweepInterval > 0, "SESSION_SWEEP_INTERVAL must be positive")
	check(c.Session.MaxWorkspaces > 0, "SESSION_MAX_WORKSPACES must be positive")

	if c.Rate.Enabled {
		check(c.Rate.RequestsPerMinute > 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		check(c.Rate.UploadLimit > 0, "RATE_LIMIT_UPLOAD must be positive when rate limiting is enabled")
	}

	check(!c.Security.RequireAPIKey || len(c.Security.APIKeys) > 0,
		"REQUIRE_API_KEY is true but API_KEYS is empty; configure a key or disable auth")

	check(c.Analysis.Timeout > 0, "ANALYSIS_TIMEOUT must be positive")
	check(c.Analysis.SampleRows > 0, "ANALYSIS_SAMPLE_ROWS must be positive")
	check(c.Analysis.MaxConcurrent > 0, "ANALYSIS_MAX_CONCURRENT must be positive")
	check(c.Analysis.Temperature >= 0 && c.Analysis.Temperature <= 2,
		"ANALYSIS_TEMPERATURE (%g) must be 0-2", c.Analysis.Temperature)

	check(slices.Contains(logLevels, strings.ToLower(c.Logging.Level)),
		"LOG_LEVEL (%q) must be one of: %s", c.Logging.Level, strings.Join(logLevels, ", "))
	check(slices.Contains(logFormats, strings.ToLower(c.Logging.Format)),
		"LOG_FORMAT (%q) must be one of: %s", c.Logging.Format, strings.Join(logFormats, ", "))

	return errors.Join(errs...)
}

// String renders the settings worth logging at startup with secrets masked.
func (c *Config) String() string {
	sections := []string{
		fmt.Sprintf("server=%s", c.Server.Addr()),
		fmt.Sprintf("upload.max=%d", c.Upload.MaxFileSize),
		fmt.Sprintf("session.ttl=%s session.max=%d", c.Session.TTL, c.Session.MaxWorkspaces),
		fmt.Sprintf("rate.enabled=%t rate.rpm=%d", c.Rate.Enabled, c.Rate.RequestsPerMinute),
		fmt.Sprintf("api_keys.required=%t api_keys=%s", c.Security.RequireAPIKey, mask(len(c.Security.APIKeys) > 0)),
		fmt.Sprintf("analysis.key=%s analysis.model=%s", mask(c.Analysis.APIKey != ""), c.Analysis.Model),
		fmt.Sprintf("log=%s/%s", c.Logging.Level, c.Logging.Format),
	}
	return strings.Join(sections, " ")
}

func mask(set bool) string {
	if set {
		return "[MASKED]"
	}
	return "[unset]"
}
