// Command migrate applies the schema migrations under migrations/.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var (
		databaseURL    = flag.String("database", "", "database URL (falls back to SECUREDEAL_POSTGRES_DSN)")
		migrationsPath = flag.String("path", "migrations", "path to the migrations directory")
		command        = flag.String("command", "up", "up, down, version, or force <version>")
	)
	flag.Parse()

	url := *databaseURL
	if url == "" {
		url = os.Getenv("SECUREDEAL_POSTGRES_DSN")
	}
	if url == "" {
		log.Fatal("database URL is required: use -database or SECUREDEAL_POSTGRES_DSN")
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", *migrationsPath), url)
	if err != nil {
		log.Fatalf("open migrations: %v", err)
	}
	defer m.Close()

	switch *command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("migrate up: %v", err)
		}
		log.Println("schema is up to date")

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("migrate down: %v", err)
		}
		log.Println("rollback complete")

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("read version: %v", err)
		}
		log.Printf("version %d (dirty: %v)", version, dirty)

	case "force":
		if flag.NArg() < 1 {
			log.Fatal("force requires a version number")
		}
		version, err := strconv.Atoi(flag.Arg(0))
		if err != nil {
			log.Fatalf("invalid version %q: %v", flag.Arg(0), err)
		}
		if err := m.Force(version); err != nil {
			log.Fatalf("force version: %v", err)
		}
		log.Printf("forced version to %d", version)

	default:
		log.Fatalf("unknown command %q (use: up, down, version, force)", *command)
	}
}
