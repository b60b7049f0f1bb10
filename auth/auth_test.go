package auth

import (
	"os"
	"path"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	fn := path.Join(t.TempDir(), "passwords")
	if err := os.WriteFile(fn, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestReadPasswords(t *testing.T) {
	fn := writeFile(t, "alice:secret\n\nbob:hunter2\n")
	a, err := ReadPasswords(fn)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Authenticate("alice", "secret") || !a.Authenticate("bob", "hunter2") {
		t.Fatal("Valid credentials rejected")
	}
	if a.Authenticate("alice", "wrong") || a.Authenticate("eve", "secret") {
		t.Fatal("Invalid credentials accepted")
	}
}

func TestReadPasswordsBad(t *testing.T) {
	if _, err := ReadPasswords(writeFile(t, "alice\n")); err == nil {
		t.Fatal("Expected error for missing password")
	}
	if _, err := ReadPasswords(writeFile(t, "alice:a\nalice:b\n")); err == nil {
		t.Fatal("Expected error for duplicate user")
	}
}

func TestParseAuth(t *testing.T) {
	user, pass, err := ParseAuth(writeFile(t, " alice:secret \n"))
	if err != nil {
		t.Fatal(err)
	}
	if user != "alice" || pass != "secret" {
		t.Fatalf("Expected alice/secret, got %s/%s", user, pass)
	}
}
