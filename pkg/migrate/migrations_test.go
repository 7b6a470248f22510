package migrate

import "testing"

func TestValidateShippedMigrations(t *testing.T) {
	t.Parallel()

	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations failed validation: %v", err)
	}
}

func TestValidateDirRequiresDir(t *testing.T) {
	t.Parallel()

	if err := ValidateDir(""); err == nil {
		t.Fatal("expected error for empty dir")
	}
}
