package main

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/portfolio-performance/internal/database"
	"github.com/ndewijer/portfolio-performance/internal/testutil"
)

// seedDB creates a migrated database file holding the "Growth" portfolio
// with 10 units of a EUR fund priced 100 and then 101.
func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "perfctl.db")

	db, err := database.Open(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	p := testutil.CreatePortfolio(t, db, "Growth")
	f := testutil.CreateFund(t, db, "Alpha", "EUR")
	days := []time.Time{testutil.Date("2024-01-01"), testutil.Date("2024-01-02")}
	testutil.CreatePrices(t, db, f.ID, days, 100, 101)
	testutil.Buy(t, db, p.ID, f.ID, days[0], 10)
	testutil.CreateFactorValue(t, db, "MKT", days[1], 101, 0.01)
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

// TestCommands tests the perfctl command tree end to end against a database file.
//
// WHY: perfctl is how operators check numbers without the server. Each
// command must reach the same services as the API and print something a
// shell pipeline can consume.
func TestCommands(t *testing.T) {
	t.Run("portfolio summary", func(t *testing.T) {
		// Setup
		db := seedDB(t)

		// Execute
		out, err := run(t, "portfolio", "Growth", "--db", db, "--from", "2024-01-01", "--to", "2024-01-02")

		// Assert
		if err != nil {
			t.Fatalf("portfolio returned unexpected error: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 2 {
			t.Fatalf("Expected aggregate and one holding line, got %q", out)
		}
		if !strings.HasPrefix(lines[0], "Growth: 100.0 bps") {
			t.Errorf("Expected a 100 bps summary, got %q", lines[0])
		}
		if !strings.Contains(lines[1], "Alpha") {
			t.Errorf("Expected the Alpha holding, got %q", lines[1])
		}
	})

	t.Run("portfolio csv", func(t *testing.T) {
		db := seedDB(t)

		out, err := run(t, "portfolio", "Growth", "--db", db, "--from", "2024-01-01", "--to", "2024-01-02", "--csv")

		if err != nil {
			t.Fatalf("portfolio returned unexpected error: %v", err)
		}
		rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		if err != nil {
			t.Fatalf("Failed to parse CSV: %v", err)
		}
		if len(rows) != 3 {
			t.Errorf("Expected header, aggregate and holding rows, got %d", len(rows))
		}
	})

	t.Run("factor daily", func(t *testing.T) {
		db := seedDB(t)

		out, err := run(t, "factor", "MKT", "--db", db, "--from", "2024-01-01", "--to", "2024-01-02", "--daily")

		if err != nil {
			t.Fatalf("factor returned unexpected error: %v", err)
		}
		rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		if err != nil {
			t.Fatalf("Failed to parse CSV: %v", err)
		}
		if len(rows) != 2 || rows[1][0] != "2024-01-02" {
			t.Errorf("Expected one dated row, got %v", rows)
		}
	})

	t.Run("unknown portfolio fails", func(t *testing.T) {
		db := seedDB(t)

		_, err := run(t, "portfolio", "Income", "--db", db, "--from", "2024-01-01", "--to", "2024-01-02")

		if err == nil {
			t.Error("Expected error for an unknown portfolio")
		}
	})

	t.Run("invalid period fails before opening the database", func(t *testing.T) {
		_, err := run(t, "portfolio", "Growth", "--db", filepath.Join(t.TempDir(), "unused.db"),
			"--from", "2024-01-05", "--to", "2024-01-02")

		if err == nil {
			t.Error("Expected error for start after end")
		}
	})

	t.Run("token requires a key", func(t *testing.T) {
		t.Setenv("INTERNAL_API_KEY", "")

		_, err := run(t, "token")

		if err == nil {
			t.Error("Expected error without INTERNAL_API_KEY")
		}
	})

	t.Run("token", func(t *testing.T) {
		t.Setenv("INTERNAL_API_KEY", "secret")

		out, err := run(t, "token")

		if err != nil || strings.TrimSpace(out) == "" {
			t.Errorf("Expected a token, got %q (%v)", out, err)
		}
	})

	t.Run("migrate", func(t *testing.T) {
		out, err := run(t, "migrate", "--db", filepath.Join(t.TempDir(), "new.db"))

		if err != nil || strings.TrimSpace(out) != "schema version 3" {
			t.Errorf("Expected schema version 3, got %q (%v)", out, err)
		}
	})

	t.Run("version", func(t *testing.T) {
		out, err := run(t, "version")

		if err != nil || !strings.HasPrefix(out, "perfctl ") {
			t.Errorf("Unexpected version output %q (%v)", out, err)
		}
	})
}
