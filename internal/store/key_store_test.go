package store_test

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"os"
	"testing"

	"otprelay/internal/domain"
	"otprelay/internal/store"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return k
}

func TestKey_SaveLoad_OK(t *testing.T) {
	home := t.TempDir()
	pass := "Correct-Horse-9"

	var ks domain.KeyStore = store.NewKeyFileStore(home)

	ok, err := ks.HasKey()
	if err != nil || ok {
		t.Fatalf("HasKey on empty home = %v, %v", ok, err)
	}

	key := newKey(t)
	if err := ks.SaveKey(pass, key); err != nil {
		t.Fatalf("save key: %v", err)
	}
	if ok, err := ks.HasKey(); err != nil || !ok {
		t.Fatalf("HasKey after save = %v, %v", ok, err)
	}

	got, err := ks.LoadKey(pass)
	if err != nil {
		t.Fatalf("load key: %v", err)
	}
	if !got.Equal(key) {
		t.Fatalf("mismatch after load")
	}
}

func TestKey_WrongPassphrase_Fails(t *testing.T) {
	home := t.TempDir()
	ks := store.NewKeyFileStore(home)

	if err := ks.SaveKey("correct", newKey(t)); err != nil {
		t.Fatalf("save key: %v", err)
	}
	if _, err := ks.LoadKey("wrong"); !errors.Is(err, store.ErrWrongPassphrase) {
		t.Fatalf("expected ErrWrongPassphrase, got %v", err)
	}
}

func TestKey_LoadMissing(t *testing.T) {
	ks := store.NewKeyFileStore(t.TempDir())
	if _, err := ks.LoadKey("x"); !errors.Is(err, store.ErrNoKey) {
		t.Fatalf("expected ErrNoKey, got %v", err)
	}
}

func TestKey_FileIsPrivateAndOpaque(t *testing.T) {
	ks := store.NewKeyFileStore(t.TempDir())
	if err := ks.SaveKey("pass", newKey(t)); err != nil {
		t.Fatalf("save key: %v", err)
	}
	fi, err := os.Stat(ks.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", fi.Mode().Perm())
	}

	b, err := os.ReadFile(ks.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	b[len(b)/2] ^= 0x20
	if err := os.WriteFile(ks.Path(), b, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ks.LoadKey("pass"); err == nil {
		t.Fatal("expected error for tampered key file")
	}
}
