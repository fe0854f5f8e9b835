package util

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptAES(t *testing.T) {
	t.Parallel()

	key := "backup-key-12345"
	plain := []byte(`[{"id":"id-1","email":"alice@example.com"}]`)

	enc, err := EncryptAES(key, plain)
	if err != nil {
		t.Fatalf("EncryptAES: %v", err)
	}
	if bytes.Contains(enc, []byte("alice@example.com")) {
		t.Error("ciphertext contains plaintext")
	}

	dec, err := DecryptAES(key, enc)
	if err != nil {
		t.Fatalf("DecryptAES: %v", err)
	}
	if !bytes.Equal(dec, plain) {
		t.Error("roundtrip mismatch")
	}

	// same input twice yields different ciphertext (random nonce)
	enc2, _ := EncryptAES(key, plain)
	if bytes.Equal(enc, enc2) {
		t.Error("ciphertexts should differ per call")
	}
}

func TestDecryptAES_WrongKey(t *testing.T) {
	t.Parallel()

	enc, err := EncryptAES("right-key", []byte("secret data"))
	if err != nil {
		t.Fatalf("EncryptAES: %v", err)
	}
	if _, err := DecryptAES("wrong-key", enc); err == nil {
		t.Error("wrong key should fail to decrypt")
	}
}

func TestDecryptAES_TooShort(t *testing.T) {
	t.Parallel()

	if _, err := DecryptAES("key", []byte("abc")); err == nil {
		t.Error("short input should fail")
	}
}

func TestRandomString(t *testing.T) {
	t.Parallel()

	s, err := RandomString(32)
	if err != nil {
		t.Fatalf("RandomString: %v", err)
	}
	if len(s) != 32 {
		t.Errorf("length %d, want 32", len(s))
	}

	s2, _ := RandomString(32)
	if s == s2 {
		t.Error("two random strings should differ")
	}

	if _, err := RandomString(0); err == nil {
		t.Error("non-positive length should fail")
	}
}
