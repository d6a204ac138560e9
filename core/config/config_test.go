package config

import (
	"io/ioutil"
	"log"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 40, cfg.MaxArgs)
	assert.Equal(t, ColorAuto, cfg.Color)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Configuration){
		"zero-args":     func(c *Configuration) { c.MaxArgs = 0 },
		"huge-stages":   func(c *Configuration) { c.MaxStages = 100000 },
		"unknown-color": func(c *Configuration) { c.Color = "sometimes" },
	}

	for tn, mutate := range cases {
		t.Run(tn, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestInitialize(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger := log.New(ioutil.Discard, "", 0)
	require.NoError(t, Initialize(fs, "/osh", logger))

	// Check that the config is valid
	cfg, err := Load(fs, "/osh")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig().MaxStages, cfg.MaxStages)

	t.Run("KeepsExisting", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "/osh/config.yaml", []byte("max_args: 3\nmax_stages: 2\ncolor: never\nevent_log: events.jsonl\n"), 0600))
		require.NoError(t, Initialize(fs, "/osh", logger))

		cfg, err := Load(fs, "/osh/config.yaml")
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.MaxArgs)
		assert.Equal(t, ColorNever, cfg.Color)
	})

	t.Run("OpenEventLog", func(t *testing.T) {
		cfg, err := Load(fs, "/osh")
		require.NoError(t, err)

		fd, err := cfg.OpenEventLog()
		require.NoError(t, err)
		_, err = fd.WriteString("{}\n")
		assert.NoError(t, err)
		fd.Close()

		exists, err := afero.Exists(fs, "/osh/events.jsonl")
		assert.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestEventLogDisabled(t *testing.T) {
	cfg := defaultConfig()

	_, err := cfg.OpenEventLog()
	assert.ErrorIs(t, err, ErrEventLogDisabled)

	_, err = cfg.ReadEventLog()
	assert.ErrorIs(t, err, ErrEventLogDisabled)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := Load(fs, "/missing")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/bad/config.yaml", []byte("prompt: '$ '\n"), 0600))
	_, err = Load(fs, "/bad")
	assert.Error(t, err, "unknown fields are rejected")

	require.NoError(t, afero.WriteFile(fs, "/invalid/config.yaml", []byte("max_args: 0\nmax_stages: 1\ncolor: auto\n"), 0600))
	_, err = Load(fs, "/invalid")
	assert.Error(t, err)
}
