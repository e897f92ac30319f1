package exports

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAPIKeyRoundTrip(t *testing.T) {
	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if !strings.HasPrefix(plaintext, apiKeyPrefix) {
		t.Fatalf("key %q missing prefix %q", plaintext, apiKeyPrefix)
	}
	if prefix != plaintext[:12] {
		t.Fatalf("prefix = %q, want first 12 chars of key", prefix)
	}
	if HashKey(plaintext) != hash {
		t.Fatal("HashKey of plaintext does not match stored hash")
	}

	other, _, _, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if other == plaintext {
		t.Fatal("two generated keys are identical")
	}
}

func TestLeadExportRowCSV(t *testing.T) {
	phone := "+14155550100"
	followUp := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	row := LeadExportRow{
		ID:             uuid.New(),
		CompanyName:    "Acme Corp",
		ContactName:    "Jo Smith",
		Phone:          &phone,
		Stage:          "dm_engaged",
		DialAttempts:   3,
		OwnerName:      "Alice",
		NextFollowUp:   &followUp,
		ConvertedToOpp: "No",
		CreatedAt:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	fields := row.csv()
	if len(fields) != len(csvHeaders()) {
		t.Fatalf("row has %d fields, header has %d", len(fields), len(csvHeaders()))
	}
	if fields[1] != "Acme Corp" || fields[3] != phone || fields[6] != "3" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	// Nil email renders empty, not "<nil>".
	if fields[4] != "" {
		t.Fatalf("email field = %q, want empty", fields[4])
	}
	if fields[10] != "2026-08-10" {
		t.Fatalf("next follow up = %q", fields[10])
	}
}
