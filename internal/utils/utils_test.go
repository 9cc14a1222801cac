package utils

import (
	"net/url"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	tok, err := SignJWT("s3cret", "u-1", "alice", "admin", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	c, err := ParseJWT("s3cret", tok)
	if err != nil {
		t.Fatal(err)
	}
	if c.UserID != "u-1" || c.Username != "alice" || c.Role != "admin" {
		t.Fatalf("claims = %+v", c)
	}
	if _, err := ParseJWT("other", tok); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestJWTExpired(t *testing.T) {
	tok, err := SignJWT("s3cret", "u-1", "alice", "user", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseJWT("s3cret", tok); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestPasswordHash(t *testing.T) {
	BcryptCost = 4
	h, err := HashPassword("hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if h == "hunter22" {
		t.Fatal("password stored in plaintext")
	}
	if !CheckPassword(h, "hunter22") || CheckPassword(h, "hunter23") {
		t.Fatal("CheckPassword mismatch")
	}
}

func TestQueryInt(t *testing.T) {
	q := url.Values{"limit": {"25"}, "bad": {"x"}}
	if got := QueryInt(q, "limit", 10); got != 25 {
		t.Errorf("limit = %d", got)
	}
	if got := QueryInt(q, "bad", 10); got != 10 {
		t.Errorf("bad = %d", got)
	}
	if got := QueryInt(q, "missing", 7); got != 7 {
		t.Errorf("missing = %d", got)
	}
	if got := QueryInt(url.Values{"offset": {"-3"}}, "offset", 0); got != 0 {
		t.Errorf("negative = %d", got)
	}
	if got := QueryString(url.Values{"q": {"  printer "}}, "q"); got != "printer" {
		t.Errorf("QueryString = %q", got)
	}
}
