package password

import (
	"strings"
	"testing"
)

func fastTestConfig() Config {
	cfg := DefaultConfig()
	// Keep unit tests quick; production cost is exercised by the benchmark.
	cfg.Params.MemoryKiB = 16 * 1024
	cfg.Params.Iterations = 1
	return cfg
}

func TestHashAndVerify_RoundTrip(t *testing.T) {
	cfg := fastTestConfig()

	enc, err := cfg.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(enc, "$argon2id$v=19$") {
		t.Fatalf("unexpected encoding: %s", enc)
	}

	ok, err := cfg.Verify(enc, "correct horse battery staple")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected match")
	}

	ok, err = cfg.Verify(enc, "wrong password entirely")
	if err != nil {
		t.Fatalf("Verify mismatch: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch")
	}
}

func TestHash_RejectsPolicyViolations(t *testing.T) {
	cfg := fastTestConfig()

	if _, err := cfg.Hash("short"); err == nil {
		t.Fatalf("expected policy error for short password")
	}

	cfg.Policy.RejectVeryWeak = true
	if _, err := cfg.Hash("aaaaaaaaaaaaaaaa"); err == nil {
		t.Fatalf("expected policy error for repeated-rune password")
	}
}

func TestVerify_RejectsMalformedHashes(t *testing.T) {
	cfg := fastTestConfig()

	cases := []string{
		"",
		"plainly not a hash",
		"$argon2i$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=3,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=3,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=1$!!$aGFzaA",
	}
	for _, malformed := range cases {
		if _, err := cfg.Verify(malformed, "whatever password"); err != ErrInvalidHash {
			t.Fatalf("hash %q: expected ErrInvalidHash, got %v", malformed, err)
		}
	}
}

func TestVerify_RejectsOversizedParams(t *testing.T) {
	cfg := fastTestConfig()

	// A hash claiming pathological memory cost must not be verified.
	hostile := "$argon2id$v=19$m=4194304,t=3,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA"
	if _, err := cfg.Verify(hostile, "whatever password"); err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash for oversized params, got %v", err)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("GYMGATE_PASSWORD_MIN_LEN", "8")
	t.Setenv("GYMGATE_ARGON2_ITERATIONS", "2")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Policy.MinLength != 8 {
		t.Fatalf("min length mismatch: %d", cfg.Policy.MinLength)
	}
	if cfg.Params.Iterations != 2 {
		t.Fatalf("iterations mismatch: %d", cfg.Params.Iterations)
	}
}

func TestFromEnv_RejectsInvalid(t *testing.T) {
	t.Setenv("GYMGATE_ARGON2_MEMORY_KIB", "1")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for out-of-range memory")
	}
}
