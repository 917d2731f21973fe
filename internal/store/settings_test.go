package store

import (
	"context"
	"testing"

	"github.com/zanvidmar/vitrina/internal/db"
)

func TestSettingsRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := SetSetting(ctx, database, "site_title", "Jan's Portfolio"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := SetSetting(ctx, database, "site_title", "Portfolio"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}

	got, err := GetSetting(ctx, database, "site_title")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got != "Portfolio" {
		t.Errorf("expected 'Portfolio', got %q", got)
	}

	missing, _ := GetSetting(ctx, database, "nope")
	if missing != "" {
		t.Errorf("expected empty value for missing key, got %q", missing)
	}
}

func TestJWTSecretStableAndHidden(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	if first == "" {
		t.Fatal("expected non-empty secret")
	}

	second, _ := GetJWTSecret(ctx, database)
	if first != second {
		t.Error("expected secret to be stable across calls")
	}

	// The secret never leaks into site configuration.
	settings, _ := ListSettings(ctx, database)
	if _, ok := settings["jwt_secret"]; ok {
		t.Error("jwt_secret must not appear in settings listing")
	}

	// And it cannot be overwritten through SetSetting.
	if err := SetSetting(ctx, database, "jwt_secret", "x"); err == nil {
		t.Error("expected SetSetting to reject reserved key")
	}
}
