package identity

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	ti := tokenIssuer{secret: []byte("test-secret"), now: func() time.Time { return now }}

	pair, err := ti.issuePair("user-123")
	if err != nil {
		t.Fatalf("issuePair: %v", err)
	}

	id, err := ti.parse(pair.AccessToken, tokenUseAccess)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if id != "user-123" {
		t.Errorf("subject = %q", id)
	}

	id, err = ti.parse(pair.RefreshToken, tokenUseRefresh)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if id != "user-123" {
		t.Errorf("refresh subject = %q", id)
	}
}

func TestRefreshTokenNotUsableAsAccess(t *testing.T) {
	ti := tokenIssuer{secret: []byte("test-secret"), now: time.Now}
	pair, err := ti.issuePair("user-123")
	if err != nil {
		t.Fatalf("issuePair: %v", err)
	}

	if _, err := ti.parse(pair.RefreshToken, tokenUseAccess); err == nil {
		t.Error("refresh token accepted as access token")
	}
	if _, err := ti.parse(pair.AccessToken, tokenUseRefresh); err == nil {
		t.Error("access token accepted as refresh token")
	}
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	ti := tokenIssuer{secret: []byte("test-secret"), now: func() time.Time { return now }}

	pair, err := ti.issuePair("user-123")
	if err != nil {
		t.Fatalf("issuePair: %v", err)
	}

	// Access expires after 24h, refresh after 30d.
	now = now.Add(accessTokenTTL + time.Minute)
	if _, err := ti.parse(pair.AccessToken, tokenUseAccess); err == nil {
		t.Error("expired access token accepted")
	}
	if _, err := ti.parse(pair.RefreshToken, tokenUseRefresh); err != nil {
		t.Errorf("refresh token rejected while still valid: %v", err)
	}

	now = now.Add(refreshTokenTTL)
	if _, err := ti.parse(pair.RefreshToken, tokenUseRefresh); err == nil {
		t.Error("expired refresh token accepted")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	ti := tokenIssuer{secret: []byte("secret-a"), now: time.Now}
	pair, err := ti.issuePair("user-123")
	if err != nil {
		t.Fatalf("issuePair: %v", err)
	}

	other := tokenIssuer{secret: []byte("secret-b"), now: time.Now}
	if _, err := other.parse(pair.AccessToken, tokenUseAccess); err == nil {
		t.Error("token verified under a different secret")
	}
}

func TestParseGarbage(t *testing.T) {
	ti := tokenIssuer{secret: []byte("test-secret"), now: time.Now}
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := ti.parse(tok, tokenUseAccess); err == nil {
			t.Errorf("garbage token %q accepted", tok)
		}
	}
}
