package auth

import (
	"testing"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("secret", 1, "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken("secret", token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 1 || claims.Username != "admin" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Error("expected non-empty JTI")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret", 1, "admin")

	if _, err := ValidateToken("other-secret", token); err == nil {
		t.Error("expected validation to fail with wrong secret")
	}
}

func TestValidateGarbageToken(t *testing.T) {
	if _, err := ValidateToken("secret", "not.a.token"); err == nil {
		t.Error("expected validation to fail for garbage input")
	}
}

func TestUniqueJTIs(t *testing.T) {
	a, _ := GenerateToken("secret", 1, "admin")
	b, _ := GenerateToken("secret", 1, "admin")

	ca, _ := ValidateToken("secret", a)
	cb, _ := ValidateToken("secret", b)
	if ca.ID == cb.ID {
		t.Error("expected distinct JTIs per token")
	}
}
