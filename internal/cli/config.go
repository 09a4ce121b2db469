// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Display the effective configuration
//   get <key>           Print one value
//   set <key> <value>   Change a value in the config file
//   path                Show the config file location
//   init                Write a default config file if none exists
//
// Examples:
//   casechat config
//   casechat config show --json
//   casechat config get service.url
//   casechat config set service.url http://10.0.0.5:5000
//   casechat config set transport.upload_timeout_secs 120
//   casechat config set ui.markdown false
//   casechat --config ./casechat.toml config set logging.level debug

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/casechat/internal/config"
	"github.com/jeranaias/casechat/internal/ui/styles"
)

// ConfigValueData is the payload of "config get --json" and "config set --json".
type ConfigValueData struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
	Path  string      `json:"path,omitempty"`
}

// ConfigPathData is the payload of "config path --json" and "config init --json".
type ConfigPathData struct {
	Path    string `json:"path"`
	Exists  bool   `json:"exists"`
	Created bool   `json:"created,omitempty"`
}

// HandleConfig handles the "config" command.
func HandleConfig(args Args, stdout io.Writer) error {
	switch strings.ToLower(args.Subcommand) {
	case "", "show":
		return handleConfigShow(args, stdout)
	case "get":
		return handleConfigGet(args, stdout)
	case "set":
		return handleConfigSet(args, stdout)
	case "path":
		return handleConfigPath(args, stdout)
	case "init":
		return handleConfigInit(args, stdout)
	default:
		return NewValidationErrorWithExample("subcommand", args.Subcommand, "unknown config subcommand", "casechat config show")
	}
}

// configFilePath returns the file config set and init write to.
func configFilePath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// SHOW / GET
// =============================================================================

func handleConfigShow(args Args, w io.Writer) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("config", cfg).Print(w)
	}

	fmt.Fprintln(w, TitleStyle.Render("casechat configuration"))
	section := ""
	for _, key := range config.GetAllKeys() {
		name := key
		if i := strings.Index(key, "."); i >= 0 {
			if key[:i] != section {
				section = key[:i]
				fmt.Fprintln(w, SectionStyle.Render(section))
			}
			name = key[i+1:]
		}
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, labelValue(name, formatConfigValue(value)))
	}
	return nil
}

func handleConfigGet(args Args, w io.Writer) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "casechat config get service.url")
	}
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	value, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return NewValidationErrorWithExample("key", args.ConfigKey, err.Error(), "casechat config show")
	}
	if args.JSON {
		return NewJSONResponse("config", ConfigValueData{Key: args.ConfigKey, Value: value}).Print(w)
	}
	fmt.Fprintln(w, formatConfigValue(value))
	return nil
}

func formatConfigValue(v interface{}) string {
	if s, ok := v.(string); ok && s == "" {
		return DimStyle.Render("(not set)")
	}
	return fmt.Sprintf("%v", v)
}

// =============================================================================
// SET
// =============================================================================

// loadFileConfig reads only the config file, so that environment overrides
// are not persisted by "config set".
func loadFileConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if !fileExists(path) {
		return cfg, nil
	}
	var err error
	if strings.HasSuffix(path, ".json") {
		err = config.LoadJSON(cfg, path)
	} else {
		err = config.LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return cfg, nil
}

func handleConfigSet(args Args, w io.Writer) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return ErrMissingArgument("key and value", "casechat config set service.url http://10.0.0.5:5000")
	}

	path, err := configFilePath(args)
	if err != nil {
		return err
	}
	cfg, err := loadFileConfig(path)
	if err != nil {
		return err
	}

	current, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return NewValidationErrorWithExample("key", args.ConfigKey, err.Error(), "casechat config show")
	}

	var value interface{} = args.ConfigVal
	if _, isBool := current.(bool); isBool {
		b, err := ParseBoolString(args.ConfigVal)
		if err != nil {
			return NewValidationErrorWithExample("value", args.ConfigVal, err.Error(), "true or false")
		}
		value = b
	}
	if err := cfg.Set(args.ConfigKey, value); err != nil {
		return NewValidationErrorWithExample("value", args.ConfigVal, err.Error(), "casechat config get "+args.ConfigKey)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if strings.HasSuffix(path, ".json") {
		err = config.SaveJSON(cfg, path)
	} else {
		err = config.SaveTOML(cfg, path)
	}
	if err != nil {
		return err
	}

	newValue, _ := cfg.Get(args.ConfigKey)
	if args.JSON {
		return NewJSONResponse("config", ConfigValueData{Key: args.ConfigKey, Value: newValue, Path: path}).Print(w)
	}
	fmt.Fprintln(w, styles.RenderSuccess(fmt.Sprintf("%s = %v", args.ConfigKey, newValue)))
	fmt.Fprintln(w, DimStyle.Render("Saved to "+path))
	return nil
}

// =============================================================================
// PATH / INIT
// =============================================================================

func handleConfigPath(args Args, w io.Writer) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("config", ConfigPathData{Path: path, Exists: fileExists(path)}).Print(w)
	}
	fmt.Fprintln(w, path)
	return nil
}

func handleConfigInit(args Args, w io.Writer) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}

	data := ConfigPathData{Path: path, Exists: fileExists(path)}
	if !data.Exists {
		if err := config.SaveTOML(config.Default(), path); err != nil {
			return err
		}
		data.Created = true
	}

	if args.JSON {
		return NewJSONResponse("config", data).Print(w)
	}
	if data.Created {
		fmt.Fprintln(w, styles.RenderSuccess("Wrote default configuration to "+path))
	} else {
		fmt.Fprintln(w, styles.RenderInfo("Configuration already exists at "+path))
	}
	return nil
}
