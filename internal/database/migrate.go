package database

import (
    "embed"
    "fmt"
    "net/url"

    "github.com/golang-migrate/migrate/v4"
    _ "github.com/golang-migrate/migrate/v4/database/mysql"
    "github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies all pending schema migrations.  Already up to date is
// not an error.  The unique keys on likes and subscriptions that the toggle
// path relies on are created here, so migrations must run before the server
// accepts traffic.
func RunMigrations(user, pass, host, port, name string) error {
    source, err := iofs.New(migrationsFS, "migrations")
    if err != nil {
        return fmt.Errorf("create migration source: %w", err)
    }
    auth := url.QueryEscape(user)
    if pass != "" {
        auth += ":" + url.QueryEscape(pass)
    }
    dbURL := fmt.Sprintf("mysql://%s@tcp(%s:%s)/%s?multiStatements=true", auth, host, port, name)

    m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
    if err != nil {
        return fmt.Errorf("create migrator: %w", err)
    }
    defer m.Close()

    if err := m.Up(); err != nil && err != migrate.ErrNoChange {
        return fmt.Errorf("run migrations: %w", err)
    }
    return nil
}
