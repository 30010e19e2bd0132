package config

import (
	"github.com/go-viper/mapstructure/v2"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/plugs/pkg/errors"
)

// Formats accepted by Dump.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// ToMap converts cfg to nested maps keyed like the configuration files.
func ToMap(cfg *Config) (map[string]interface{}, error) {
	var out map[string]interface{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "koanf",
		Result:  &out,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot build config encoder")
	}
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot convert config")
	}
	return out, nil
}

// Dump renders cfg in the given format.
func Dump(cfg *Config, format string) ([]byte, error) {
	m, err := ToMap(cfg)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatTOML, "":
		data, err := toml.Marshal(m)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "cannot encode config as toml")
		}
		return data, nil
	case FormatYAML, "yml":
		data, err := yaml.Marshal(m)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "cannot encode config as yaml")
		}
		return data, nil
	}
	return nil, errors.Newf(errors.ErrInvalidInput, "unknown config format %q", format)
}
