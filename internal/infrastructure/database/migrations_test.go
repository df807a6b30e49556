package database

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
)

func TestMigrate(t *testing.T) {
	fsys := fstest.MapFS{
		"20260101_000000_first.up.sql":    {Data: []byte("CREATE TABLE first (id INTEGER PRIMARY KEY);")},
		"20260101_000000_first.down.sql":  {Data: []byte("DROP TABLE first;")},
		"20260102_000000_second.up.sql":   {Data: []byte("CREATE TABLE second (id INTEGER REFERENCES first(id));")},
		"README.md":                       {Data: []byte("not a migration")},
		"sub/20260103_000000_skip.up.sql": {Data: []byte("invalid sql")},
	}

	db := openTestDB(t)
	ctx := context.Background()

	n, err := db.Migrate(ctx, fsys)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Migrate() applied %d, want 2", n)
	}

	for _, table := range []string{"first", "second"} {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not created: %v", table, err)
		}
	}

	n, err = db.Migrate(ctx, fsys)
	if err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if n != 0 {
		t.Errorf("second Migrate() applied %d, want 0", n)
	}
}

func TestMigrate_FailureKeepsEarlier(t *testing.T) {
	fsys := fstest.MapFS{
		"20260101_000000_ok.up.sql":  {Data: []byte("CREATE TABLE ok (id INTEGER);")},
		"20260102_000000_bad.up.sql": {Data: []byte("CREATE TABLE oops (")},
	}

	db := openTestDB(t)
	ctx := context.Background()

	n, err := db.Migrate(ctx, fsys)
	if err == nil {
		t.Fatal("Migrate() expected error")
	}
	if !strings.Contains(err.Error(), "20260102_000000") {
		t.Errorf("error %q does not name the failing version", err)
	}
	if n != 1 {
		t.Errorf("Migrate() applied %d, want 1", n)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("SELECT error = %v", err)
	}
	if count != 1 {
		t.Errorf("recorded migrations = %d, want 1", count)
	}
}

func TestMigrate_NoMigrations(t *testing.T) {
	db := openTestDB(t)

	n, err := db.Migrate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Migrate(nil) error = %v", err)
	}
	if n != 0 {
		t.Errorf("Migrate(nil) applied %d, want 0", n)
	}
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"20260101_000000_a.up.sql": {Data: []byte("SELECT 1;")},
		"20260101_000000_b.up.sql": {Data: []byte("SELECT 2;")},
	}
	if _, err := LoadMigrations(fsys); err == nil {
		t.Error("LoadMigrations() expected duplicate version error")
	}
}

func TestLoadMigrations_Order(t *testing.T) {
	fsys := fstest.MapFS{
		"20260301_000000_c.up.sql": {Data: []byte("c")},
		"20260101_000000_a.up.sql": {Data: []byte("a")},
		"20260201_000000_b.up.sql": {Data: []byte("b")},
	}
	migrations, err := LoadMigrations(fsys)
	if err != nil {
		t.Fatalf("LoadMigrations() error = %v", err)
	}
	var names []string
	for _, m := range migrations {
		names = append(names, m.Name)
	}
	if got := strings.Join(names, ","); got != "a,b,c" {
		t.Errorf("order = %s, want a,b,c", got)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		file        string
		wantVersion string
		wantName    string
		wantOK      bool
	}{
		{"20260118_120000_reading_history.up.sql", "20260118_120000", "reading_history", true},
		{"20260118_120000.up.sql", "20260118_120000", "20260118_120000", true},
		{"20260118_120000_reading_history.down.sql", "", "", false},
		{"20260118_120000_reading_history.sql", "", "", false},
		{"notes.txt", "", "", false},
		{"20260118.up.sql", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			version, name, ok := parseMigrationFilename(tt.file)
			if ok != tt.wantOK || version != tt.wantVersion || name != tt.wantName {
				t.Errorf("parseMigrationFilename(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.file, version, name, ok, tt.wantVersion, tt.wantName, tt.wantOK)
			}
		})
	}
}
