package ssh

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

// generateTestKey generates an ed25519 private key in PEM form for tests.
func generateTestKey(t *testing.T) []byte {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "test")
	if err != nil {
		t.Fatalf("failed to marshal test key: %v", err)
	}
	return pem.EncodeToMemory(block)
}

func TestNewClient_Success(t *testing.T) {
	cfg := &Config{
		Host:       "10.0.0.5",
		User:       "root",
		PrivateKey: generateTestKey(t),
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if client == nil {
		t.Fatal("expected client, got nil")
	}

	// Verify defaults were applied
	if client.config.Port != defaultPort {
		t.Errorf("expected port %d, got %d", defaultPort, client.config.Port)
	}
	if client.config.DialTimeout != defaultDialTimeout {
		t.Errorf("expected timeout %v, got %v", defaultDialTimeout, client.config.DialTimeout)
	}
	if client.config.MaxRetries != defaultMaxRetries {
		t.Errorf("expected max retries %d, got %d", defaultMaxRetries, client.config.MaxRetries)
	}
}

func TestNewClient_DoesNotMutateCaller(t *testing.T) {
	cfg := &Config{
		Host:       "10.0.0.5",
		User:       "root",
		PrivateKey: generateTestKey(t),
	}

	if _, err := NewClient(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 0 {
		t.Errorf("caller config was mutated, port = %d", cfg.Port)
	}
}

func TestNewClient_InvalidKey(t *testing.T) {
	cfg := &Config{
		Host:       "10.0.0.5",
		User:       "root",
		PrivateKey: []byte("invalid key"),
	}

	_, err := NewClient(cfg)
	if err == nil {
		t.Fatal("expected error for invalid private key, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse private key") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewClient_NilConfig(t *testing.T) {
	if _, err := NewClient(nil); err == nil {
		t.Fatal("expected error for nil config, got nil")
	}
}

func TestNewClient_MissingFields(t *testing.T) {
	key := generateTestKey(t)
	cases := []struct {
		name string
		cfg  *Config
	}{
		{"no host", &Config{User: "root", PrivateKey: key}},
		{"no user", &Config{Host: "10.0.0.5", PrivateKey: key}},
		{"no key", &Config{Host: "10.0.0.5", User: "root"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := NewClient(c.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
