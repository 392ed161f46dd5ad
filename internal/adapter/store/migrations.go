package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"tfidx/config"
	"tfidx/internal/domain"
)

// CurrentSchemaVersion is the current snapshot layout version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 2

var (
	keySchemaVersion = []byte("schema_version")
	keyConfigHash    = []byte("config_hash")
)

// SchemaInfo stores the snapshot layout version and the hash of the
// tokenizer settings the index was built with.
type SchemaInfo struct {
	Version    int    `json:"version"`
	ConfigHash string `json:"config_hash"`
}

// NewSchemaInfo describes a snapshot written by this build with cfg.
func NewSchemaInfo(cfg *config.Config) SchemaInfo {
	return SchemaInfo{
		Version:    CurrentSchemaVersion,
		ConfigHash: ComputeConfigHash(cfg),
	}
}

// ComputeConfigHash hashes the settings that change how text is tokenized.
// A snapshot queried with a different hash may miss matches.
func ComputeConfigHash(cfg *config.Config) string {
	relevant := struct {
		Delimiters     string `json:"delimiters"`
		FieldSeparator string `json:"field_separator"`
	}{
		Delimiters:     cfg.Index.Delimiters,
		FieldSeparator: cfg.Index.FieldSeparator,
	}

	data, _ := json.Marshal(relevant)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

// Matches reports whether the snapshot was built with the tokenizer settings in cfg.
func (i SchemaInfo) Matches(cfg *config.Config) bool {
	return i.ConfigHash == ComputeConfigHash(cfg)
}

func getSchemaInfo(b *bbolt.Bucket) (SchemaInfo, error) {
	var info SchemaInfo

	versionData := b.Get(keySchemaVersion)
	if versionData == nil {
		return info, errors.Wrap(domain.ErrCorruptSnapshot, "missing schema version")
	}
	if err := json.Unmarshal(versionData, &info.Version); err != nil {
		return info, errors.Wrapf(domain.ErrCorruptSnapshot, "schema version: %v", err)
	}

	if hashData := b.Get(keyConfigHash); hashData != nil {
		info.ConfigHash = string(hashData)
	}
	return info, nil
}

func putSchemaInfo(b *bbolt.Bucket, info SchemaInfo) error {
	versionData, err := json.Marshal(info.Version)
	if err != nil {
		return err
	}
	if err := b.Put(keySchemaVersion, versionData); err != nil {
		return err
	}
	return b.Put(keyConfigHash, []byte(info.ConfigHash))
}
