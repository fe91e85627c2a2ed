package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/stockpilot/internal/analysis"
	"github.com/JonMunkholm/stockpilot/internal/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configFileName = "stockctl"
	configFileType = "yaml"
	envPrefix      = "STOCKCTL"

	cfgKeyMaxFileSize = "max-file-size"
	cfgKeyAPIKey      = "api-key"
	cfgKeyModel       = "model"
	cfgKeyEndpoint    = "endpoint"
	cfgKeyTimeout     = "timeout"
	cfgKeySampleRows  = "sample-rows"
	cfgKeyLanguage    = "lang"
)

// loadConfig layers defaults, an optional config file, STOCKCTL_* env vars
// and the command's flags, in increasing precedence.
func (a *app) loadConfig(cmd *cobra.Command) error {
	v := a.v
	v.SetDefault(cfgKeyMaxFileSize, core.DefaultMaxFileSize)
	v.SetDefault(cfgKeyModel, analysis.DefaultModel)
	v.SetDefault(cfgKeyEndpoint, analysis.DefaultEndpoint)
	v.SetDefault(cfgKeyTimeout, analysis.DefaultTimeout)
	v.SetDefault(cfgKeySampleRows, analysis.DefaultSampleRows)
	v.SetDefault(cfgKeyLanguage, analysis.DefaultLanguage)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// The server's variable names are accepted too.
	if err := v.BindEnv(cfgKeyAPIKey, envPrefix+"_API_KEY", "GEMINI_API_KEY", "API_KEY"); err != nil {
		return err
	}

	if a.configFile != "" {
		v.SetConfigFile(a.configFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "stockctl"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return v.BindPFlags(cmd.Flags())
}

func (a *app) maxFileSize() int64 {
	return a.v.GetInt64(cfgKeyMaxFileSize)
}

func (a *app) analysisConfig() analysis.Config {
	return analysis.Config{
		APIKey:     a.v.GetString(cfgKeyAPIKey),
		Model:      a.v.GetString(cfgKeyModel),
		Endpoint:   a.v.GetString(cfgKeyEndpoint),
		Timeout:    a.v.GetDuration(cfgKeyTimeout),
		SampleRows: a.v.GetInt(cfgKeySampleRows),
	}
}

// loadTable reads and parses the inventory file at path.
func (a *app) loadTable(path string) (*core.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	text, err := core.ReadText(f, a.maxFileSize())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tbl, err := core.Load(filepath.Base(path), text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tbl, nil
}

// readText is loadTable without the parse, for commands that hand the
// text to a session workspace.
func (a *app) readText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return core.ReadText(f, a.maxFileSize())
}
