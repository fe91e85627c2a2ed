package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(mapLookup(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Upload.MaxFileSize != 10485760 {
		t.Errorf("Upload.MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 10485760)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("Session.TTL = %v, want %v", cfg.Session.TTL, 2*time.Hour)
	}
	if cfg.Analysis.SampleRows != 50 {
		t.Errorf("Analysis.SampleRows = %d, want %d", cfg.Analysis.SampleRows, 50)
	}
	if cfg.Analysis.Temperature != 0.2 {
		t.Errorf("Analysis.Temperature = %v, want %v", cfg.Analysis.Temperature, 0.2)
	}
	if cfg.Analysis.Enabled() {
		t.Error("Analysis.Enabled() = true without an API key")
	}
}

func TestLoad_FromProcessEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"primary", map[string]string{"GEMINI_API_KEY": "primary"}, "primary"},
		{"alternate", map[string]string{"API_KEY": "alt"}, "alt"},
		{"primary wins", map[string]string{"GEMINI_API_KEY": "primary", "API_KEY": "alt"}, "primary"},
		{"blank primary falls back", map[string]string{"GEMINI_API_KEY": "  ", "API_KEY": "alt"}, "alt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(mapLookup(tt.env))
			if err != nil {
				t.Fatalf("LoadFrom() error = %v", err)
			}
			if cfg.Analysis.APIKey != tt.want {
				t.Errorf("Analysis.APIKey = %q, want %q", cfg.Analysis.APIKey, tt.want)
			}
			if !cfg.Analysis.Enabled() {
				t.Error("Analysis.Enabled() = false with an API key")
			}
		})
	}
}

func TestLoadStruct_Required(t *testing.T) {
	var target struct {
		URL string `env:"REQUIRED_URL" required:"true"`
	}

	err := loadStruct(reflect.ValueOf(&target).Elem(), mapLookup(nil))
	if err == nil {
		t.Fatal("loadStruct() expected error for missing REQUIRED_URL")
	}

	err = loadStruct(reflect.ValueOf(&target).Elem(), mapLookup(map[string]string{"REQUIRED_URL": "x"}))
	if err != nil {
		t.Fatalf("loadStruct() error = %v", err)
	}
	if target.URL != "x" {
		t.Errorf("URL = %q, want %q", target.URL, "x")
	}
}

func TestLoad_Duration(t *testing.T) {
	cfg, err := LoadFrom(mapLookup(map[string]string{
		"SERVER_READ_TIMEOUT": "45s",
		"SESSION_TTL":         "1h30m",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Session.TTL != 90*time.Minute {
		t.Errorf("Session.TTL = %v, want %v", cfg.Session.TTL, 90*time.Minute)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	cfg, err := LoadFrom(mapLookup(map[string]string{
		"TRUSTED_PROXIES": "10.0.0.0/8, 172.16.0.0/12 , ,192.168.0.0/16",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	want := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if !reflect.DeepEqual(cfg.Security.TrustedProxies, want) {
		t.Errorf("TrustedProxies = %v, want %v", cfg.Security.TrustedProxies, want)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad integer", map[string]string{"SERVER_PORT": "http"}, "invalid integer"},
		{"bad duration", map[string]string{"SESSION_TTL": "forever"}, "invalid duration"},
		{"bad bool", map[string]string{"RATE_LIMIT_ENABLED": "maybe"}, "invalid boolean"},
		{"bad float", map[string]string{"ANALYSIS_TEMPERATURE": "warm"}, "invalid number"},
		{"port range", map[string]string{"SERVER_PORT": "70000"}, "SERVER_PORT"},
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"api key auth without keys", map[string]string{"REQUIRE_API_KEY": "true"}, "API_KEYS is empty"},
		{"temperature range", map[string]string{"ANALYSIS_TEMPERATURE": "3"}, "ANALYSIS_TEMPERATURE"},
		{"zero workspaces", map[string]string{"SESSION_MAX_WORKSPACES": "0"}, "SESSION_MAX_WORKSPACES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(mapLookup(tt.env))
			if err == nil {
				t.Fatal("LoadFrom() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg, err := LoadFrom(mapLookup(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	cfg.Server.Port = 0
	cfg.Session.TTL = 0
	cfg.Analysis.SampleRows = 0

	err = cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "SESSION_TTL", "ANALYSIS_SAMPLE_ROWS"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestString_MasksSecrets(t *testing.T) {
	cfg, err := LoadFrom(mapLookup(map[string]string{
		"GEMINI_API_KEY":  "secret-gemini",
		"REQUIRE_API_KEY": "true",
		"API_KEYS":        "secret-a,secret-b",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	s := cfg.String()
	if strings.Contains(s, "secret") {
		t.Errorf("String() leaks a secret: %s", s)
	}
	if !strings.Contains(s, "[MASKED]") {
		t.Errorf("String() = %s, want masked keys", s)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"", 9000, ":9000"},
		{"::1", 80, "[::1]:80"},
	}
	for _, tt := range tests {
		c := ServerConfig{Host: tt.host, Port: tt.port}
		if got := c.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}
