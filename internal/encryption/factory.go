package encryption

import (
	"bytes"
	"fmt"

	"sharectl/internal/config"
	"sharectl/internal/share"
)

// NewSealerFromConfig creates a Sealer based on the configuration type.
func NewSealerFromConfig(cfg config.EncryptionConfig) (share.Sealer, error) {
	switch cfg.Type {
	case "age", "":
		if cfg.IdentityPath == "" {
			return nil, fmt.Errorf("identity_path required for age encryption")
		}
		return NewAgeSealer(cfg), nil
	case "test":
		return NewTestSealer(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}

// SealBytes seals a small in-memory secret.
func SealBytes(s share.Sealer, plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Seal(bytes.NewReader(plaintext), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// OpenBytes reverses SealBytes.
func OpenBytes(s share.Sealer, sealed []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Open(bytes.NewReader(sealed), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
