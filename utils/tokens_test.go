package utils

import (
	"testing"
	"time"
)

func TestOrderTokenRoundTrip(t *testing.T) {
	t.Setenv("ORDER_TOKEN_SECRET", "testsecret")

	issued := time.Now()
	token, jti, err := SignOrderToken(42, "4f1c0a52-9e1d-4d38-8f5e-0a0c83a1b9aa", 7, issued, issued.Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if jti == "" {
		t.Fatal("empty jti")
	}

	claims, err := VerifyOrderToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Typ != "order" || claims.OrderID != 42 || claims.TechnicianID != 7 {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ID != jti {
		t.Errorf("jti = %s, want %s", claims.ID, jti)
	}

	// Two issuances never share a jti.
	_, jti2, _ := SignOrderToken(42, "4f1c0a52-9e1d-4d38-8f5e-0a0c83a1b9aa", 7, issued, issued.Add(time.Hour))
	if jti2 == jti {
		t.Error("jti reused across issuances")
	}
}

func TestOrderTokenFailsClosed(t *testing.T) {
	t.Setenv("ORDER_TOKEN_SECRET", "testsecret")

	issued := time.Now()
	token, _, err := SignOrderToken(1, "uuid", 2, issued, issued.Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := VerifyOrderToken(token + "x"); err == nil {
		t.Error("tampered token accepted")
	}

	expired, _, err := SignOrderToken(1, "uuid", 2, issued.Add(-2*time.Hour), issued.Add(-time.Hour))
	if err != nil {
		t.Fatalf("sign expired: %v", err)
	}
	if _, err := VerifyOrderToken(expired); err == nil {
		t.Error("expired token accepted")
	}

	t.Setenv("ORDER_TOKEN_SECRET", "othersecret")
	if _, err := VerifyOrderToken(token); err == nil {
		t.Error("token signed under a different secret accepted")
	}
}

func TestAuditTokenIsNotAnOrderToken(t *testing.T) {
	t.Setenv("ORDER_TOKEN_SECRET", "testsecret")

	token, jti, err := SignAuditToken(3, "admin", 42, "create_order",
		nil, map[string]interface{}{"status": "pending"}, time.Now())
	if err != nil {
		t.Fatalf("sign audit: %v", err)
	}
	if jti == "" {
		t.Fatal("empty audit jti")
	}

	// Same secret, wrong type discriminator: rejected as an order token.
	if _, err := VerifyOrderToken(token); err == nil {
		t.Error("audit token accepted as order token")
	}
}

func TestSHA256Hex(t *testing.T) {
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := SHA256Hex("hello"); got != want {
		t.Errorf("SHA256Hex(hello) = %s, want %s", got, want)
	}
	if SHA256Hex("hello") == SHA256Hex("hello ") {
		t.Error("distinct inputs collided")
	}
}
