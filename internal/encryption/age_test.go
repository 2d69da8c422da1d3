package encryption

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"sharectl/internal/config"
)

func newTestAgeSealer(t *testing.T) *AgeSealer {
	t.Helper()
	dir := t.TempDir()
	return NewAgeSealer(config.EncryptionConfig{
		Type:         "age",
		IdentityPath: filepath.Join(dir, "keys", "session.key"),
	})
}

func TestAgeSealer_IsConfigured_BeforeSetup(t *testing.T) {
	t.Parallel()
	s := newTestAgeSealer(t)
	if s.IsConfigured() {
		t.Error("IsConfigured() = true before Setup, want false")
	}
}

func TestAgeSealer_Setup(t *testing.T) {
	t.Parallel()
	s := newTestAgeSealer(t)

	if err := s.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !s.IsConfigured() {
		t.Error("IsConfigured() = false after Setup, want true")
	}

	info, err := os.Stat(s.identityPath)
	if err != nil {
		t.Fatalf("Stat(identity) error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("identity mode = %o, want 600", perm)
	}
}

func TestAgeSealer_SetupKeepsExistingIdentity(t *testing.T) {
	t.Parallel()
	s := newTestAgeSealer(t)
	if err := s.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	sealed, err := SealBytes(s, []byte("JSESSIONID=abc"))
	if err != nil {
		t.Fatalf("SealBytes() error = %v", err)
	}

	if err := s.Setup(); err != nil {
		t.Fatalf("second Setup() error = %v", err)
	}

	got, err := OpenBytes(s, sealed)
	if err != nil {
		t.Fatalf("OpenBytes() after second Setup error = %v", err)
	}
	if string(got) != "JSESSIONID=abc" {
		t.Errorf("OpenBytes() = %q, want %q", got, "JSESSIONID=abc")
	}
}

func TestAgeSealer_SealOpenRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "cookie value", input: []byte("4F1C2A9B0D")},
		{name: "empty", input: []byte{}},
		{name: "large data", input: bytes.Repeat([]byte("abcdef"), 10000)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestAgeSealer(t)
			if err := s.Setup(); err != nil {
				t.Fatalf("Setup() error = %v", err)
			}

			var sealed bytes.Buffer
			if err := s.Seal(bytes.NewReader(tt.input), &sealed); err != nil {
				t.Fatalf("Seal() error = %v", err)
			}
			if len(tt.input) > 0 && bytes.Contains(sealed.Bytes(), tt.input) {
				t.Error("sealed output contains the plaintext")
			}

			var opened bytes.Buffer
			if err := s.Open(bytes.NewReader(sealed.Bytes()), &opened); err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if !bytes.Equal(opened.Bytes(), tt.input) {
				t.Errorf("round-trip failed: got %d bytes, want %d bytes", opened.Len(), len(tt.input))
			}
		})
	}
}

func TestAgeSealer_OpenWithOtherIdentity(t *testing.T) {
	t.Parallel()

	a := newTestAgeSealer(t)
	b := newTestAgeSealer(t)
	for _, s := range []*AgeSealer{a, b} {
		if err := s.Setup(); err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
	}

	sealed, err := SealBytes(a, []byte("secret"))
	if err != nil {
		t.Fatalf("SealBytes() error = %v", err)
	}
	if _, err := OpenBytes(b, sealed); err == nil {
		t.Error("OpenBytes() with a different identity should fail")
	}
}

func TestAgeSealer_SealBeforeSetup(t *testing.T) {
	t.Parallel()
	s := newTestAgeSealer(t)

	var out bytes.Buffer
	if err := s.Seal(bytes.NewReader([]byte("x")), &out); err == nil {
		t.Error("Seal() before Setup should return error")
	}
}
