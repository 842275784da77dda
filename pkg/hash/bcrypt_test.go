package hash

import "testing"

func TestHashPassword_RoundTrip(t *testing.T) {
	hashed, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hashed == "s3cret" {
		t.Fatal("password must not be stored in plain text")
	}
	if !CheckPasswordHash("s3cret", hashed) {
		t.Fatal("expected password to match its hash")
	}
	if CheckPasswordHash("wrong", hashed) {
		t.Fatal("wrong password must not match")
	}
}
