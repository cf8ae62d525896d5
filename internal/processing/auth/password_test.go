package auth

import "testing"

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(4) // min cost keeps the test fast

	hash, err := h.Hash("hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must not equal the plaintext password")
	}

	if err := h.Compare(hash, "hunter22"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := h.Compare(hash, "wrong-password"); err == nil {
		t.Error("wrong password accepted")
	}
}

func TestBcryptHasher_SaltedHashesDiffer(t *testing.T) {
	h := NewBcryptHasher(4)

	h1, err := h.Hash("same-password")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := h.Hash("same-password")
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Error("expected per-hash salt to produce distinct hashes")
	}
}

func TestNewBcryptHasher_InvalidCostFallsBack(t *testing.T) {
	h := NewBcryptHasher(-1)

	hash, err := h.Hash("pw")
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Compare(hash, "pw"); err != nil {
		t.Errorf("fallback cost hash failed to verify: %v", err)
	}
}
