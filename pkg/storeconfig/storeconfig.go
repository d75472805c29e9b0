// Package storeconfig defines the small configuration record persisted
// at a store's root and read back on every open, so that a store's
// hash algorithm and object format stay fixed for its lifetime.
package storeconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roobie/castor/internal/bytesize"
	"github.com/roobie/castor/pkg/chunk"
	"github.com/roobie/castor/pkg/object"
	"github.com/roobie/castor/pkg/objcompress"
	"github.com/roobie/castor/pkg/storeerr"
)

// Configuration is the persisted record at <root>/config. CompressMin
// and ChunkThreshold round-trip as human-readable sizes ("4.00KiB",
// "1.00MiB") rather than bare integers, so the file stays hand-editable.
type Configuration struct {
	Algorithm      string            `yaml:"algorithm"`
	ObjectVersion  byte              `yaml:"object_version"`
	CompressMin    bytesize.ByteSize `yaml:"compress_min"`
	ChunkThreshold bytesize.ByteSize `yaml:"chunk_threshold"`
}

// Default returns the configuration written by a fresh Init, using the
// given algorithm name and the current object format version.
func Default(algoName string) Configuration {
	return Configuration{
		Algorithm:      algoName,
		ObjectVersion:  object.CurrentVersion,
		CompressMin:    bytesize.ByteSize(objcompress.CompressMin),
		ChunkThreshold: bytesize.ByteSize(chunk.Threshold),
	}
}

// Read loads a Configuration from path.
func Read(path string) (Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, err
	}

	var cfg Configuration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Configuration{}, storeerr.NewPath("read-config", path, fmt.Errorf("%w: %v", storeerr.ErrCorruptObject, err))
	}
	return cfg, nil
}

// Write persists cfg to path as YAML, creating the file if absent.
func Write(path string, cfg Configuration) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return storeerr.NewPath("write-config", path, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return storeerr.NewPath("write-config", path, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}
	return nil
}
