package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep the values already in cfg. Durations accept Go syntax ("30s").
func LoadFile(cfg *Config, path string) error {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(*cfg, "koanf"), nil); err != nil {
		return fmt.Errorf("config defaults: %w", err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	inputs, check, configFile := cfg.Inputs, cfg.CheckOnly, cfg.ConfigFile
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	cfg.Inputs, cfg.CheckOnly, cfg.ConfigFile = inputs, check, configFile
	return nil
}
