package services

import "testing"

func TestGenerateRandomCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code := GenerateRandomCode(6)
		if len(code) != 6 {
			t.Fatalf("code %q has length %d, want 6", code, len(code))
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit %q", code, r)
			}
		}
		seen[code] = true
	}
	// 50 draws from a million possibilities should not all collide.
	if len(seen) < 2 {
		t.Error("generator returned the same code repeatedly")
	}
}

func TestPasscodeHashRoundTrip(t *testing.T) {
	hash, err := HashPasscode("123456")
	if err != nil {
		t.Fatalf("HashPasscode: %v", err)
	}
	if hash == "123456" {
		t.Fatal("passcode stored in plaintext")
	}
	if !VerifyPasscode(hash, "123456") {
		t.Error("correct passcode rejected")
	}
	if VerifyPasscode(hash, "654321") {
		t.Error("wrong passcode accepted")
	}
}
