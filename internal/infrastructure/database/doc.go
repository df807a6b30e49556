// Package database provides the SQLite connection behind the reading
// history.
//
// The database is optional: the gateway runs without it and only records
// history when database.enabled is set. Open creates the directory and file
// as needed; Migrate applies the embedded schema files from the migrations
// package.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_name.up.sql. Each is applied once
// in its own transaction and recorded in schema_migrations. Down files may
// sit next to them for manual use but are never run.
package database
