// migrate applies the embedded schema migrations.
//
// Usage: migrate [up|down|version]
package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/sensorpipe/internal/config"
	"github.com/JonMunkholm/sensorpipe/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Overload()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set; create a .env or set DATABASE_URL")
		os.Exit(1)
	}

	switch command {
	case "up", "down":
		if err := store.Migrate(cfg.Database.URL, command); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
		fmt.Println("migrations", command, "complete")
	case "version":
		version, dirty, err := store.MigrationVersion(cfg.Database.URL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
		fmt.Printf("version %d dirty=%v\n", version, dirty)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want up, down or version)\n", command)
		os.Exit(1)
	}
}
