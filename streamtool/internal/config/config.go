package config

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/yandex/streamtool/streamtool/internal/chunkstore"
	"github.com/yandex/streamtool/streamtool/internal/codec"
)

const (
	defaultLogLevel          = "info"
	defaultChunkSize         = "64MiB"
	defaultCodec             = "zstd_3"
	defaultVerifyConcurrency = 4
	defaultStorageRoot       = "chunks"
)

type SplitConfig struct {
	ChunkSize string `yaml:"chunk_size"`
	Codec     string `yaml:"codec"`
}

type VerifyConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type Config struct {
	LogLevel string            `yaml:"log_level"`
	Split    SplitConfig       `yaml:"split"`
	Verify   VerifyConfig      `yaml:"verify"`
	Storage  chunkstore.Config `yaml:"storage"`
}

func (c *Config) FillDefault() {
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Split.ChunkSize == "" {
		c.Split.ChunkSize = defaultChunkSize
	}
	if c.Split.Codec == "" {
		c.Split.Codec = defaultCodec
	}
	if c.Verify.Concurrency <= 0 {
		c.Verify.Concurrency = defaultVerifyConcurrency
	}
	if c.Storage.FS == nil && c.Storage.S3 == nil {
		c.Storage.FS = &chunkstore.FSConfig{Root: defaultStorageRoot}
	}
}

// ChunkSizeBytes parses the human readable chunk size, e.g. "64MiB" or "1 GB".
func (c *Config) ChunkSizeBytes() (uint64, error) {
	size, err := humanize.ParseBytes(c.Split.ChunkSize)
	if err != nil {
		return 0, fmt.Errorf("failed to parse chunk size %q: %w", c.Split.ChunkSize, err)
	}
	if size == 0 {
		return 0, fmt.Errorf("chunk size must be positive")
	}
	return size, nil
}

func (c *Config) Validate() error {
	if _, err := c.ChunkSizeBytes(); err != nil {
		return err
	}
	if _, err := codec.Parse(c.Split.Codec); err != nil {
		return err
	}
	if c.Storage.FS != nil && c.Storage.S3 != nil {
		return fmt.Errorf("exactly one of storage.fs and storage.s3 must be set")
	}
	if c.Storage.S3 != nil {
		if err := c.Storage.S3.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ParseConfig reads the config at path. An empty path yields the defaults.
func ParseConfig(path string) (*Config, error) {
	conf := &Config{}

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		dec := yaml.NewDecoder(file)
		dec.KnownFields(true)
		if err := dec.Decode(conf); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	}

	conf.FillDefault()
	return conf, nil
}
