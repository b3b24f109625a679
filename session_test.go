package heic

import (
	"testing"

	"github.com/ausocean/utils/logging"
)

func TestNewSessionDefaults(t *testing.T) {
	s := NewSession()
	if s.maxPictureSize != defaultMaxPictureSize {
		t.Errorf("maxPictureSize = %d, want %d", s.maxPictureSize, defaultMaxPictureSize)
	}
	if s.log == nil {
		t.Error("expected a default logger")
	}
	if s.recon == nil {
		t.Error("expected a default Reconstructor")
	}
}

func TestWithMaxPictureSize(t *testing.T) {
	s := NewSession(WithMaxPictureSize(1024))
	if s.maxPictureSize != 1024 {
		t.Errorf("maxPictureSize = %d, want 1024", s.maxPictureSize)
	}
}

func TestWithLogger(t *testing.T) {
	l := logging.New(logging.Debug, nopWriter{}, true)
	s := NewSession(WithLogger(l))
	if s.log != l {
		t.Error("expected WithLogger to override the session's logger")
	}
}

func TestDecodeRejectsGarbageInput(t *testing.T) {
	s := NewSession()
	if _, err := s.Decode([]byte("not a heif file")); err == nil {
		t.Error("expected Decode to fail on non-container input")
	}
}

func TestInfoRejectsGarbageInput(t *testing.T) {
	s := NewSession()
	if _, err := s.Info([]byte("not a heif file")); err == nil {
		t.Error("expected Info to fail on non-container input")
	}
}
