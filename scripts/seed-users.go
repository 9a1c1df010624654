package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/oklog/ulid/v2"

	"github.com/rosterhq/roster/internal/auth"
)

type seedUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

var sampleUsers = []seedUser{
	{Name: "Ana García", Email: "ana.garcia@example.com", Age: 28},
	{Name: "Luis Pérez", Email: "luis.perez@example.com", Age: 34},
	{Name: "María López", Email: "maria.lopez@example.com", Age: 41},
	{Name: "Carlos Ruiz", Email: "carlos.ruiz@example.com", Age: 25},
	{Name: "Lucía Fernández", Email: "lucia.fernandez@example.com", Age: 37},
}

type output struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Emails   []string `json:"emails"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		password    = flag.String("password", "", "Optional password to set for every seeded user")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	var passwordHash string
	if *password != "" {
		hash, err := auth.HashPassword(*password)
		if err != nil {
			fmt.Fprintln(os.Stderr, "hash password:", err)
			os.Exit(1)
		}
		passwordHash = hash
	}

	db, err := sql.Open("postgres", *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open database:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		fmt.Fprintln(os.Stderr, "ping database:", err)
		os.Exit(1)
	}

	out := output{}
	for _, u := range sampleUsers {
		now := time.Now().UTC()
		res, err := db.Exec(`
			INSERT INTO users (id, name, email, age, active, password_hash, created_at, updated_at)
			VALUES ($1, $2, lower($3), $4, TRUE, $5, $6, $6)
			ON CONFLICT (lower(email)) WHERE deleted_at IS NULL DO NOTHING`,
			ulid.Make().String(), u.Name, u.Email, u.Age, passwordHash, now,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "insert %s: %v\n", u.Email, err)
			os.Exit(1)
		}

		rows, _ := res.RowsAffected()
		if rows == 0 {
			out.Skipped++
			continue
		}
		out.Inserted++
		out.Emails = append(out.Emails, u.Email)
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("seeded %d users (%d already present)\n", out.Inserted, out.Skipped)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
