// Command hash-generator prints bcrypt hashes for seeding users directly
// into the database. Passwords that fail the account password policy are
// reported on stderr but still hashed.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/task-manager-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	email := flag.String("email", "", "account email, used for the similarity check")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: hash-generator [-cost N] [-email addr] password...")
		os.Exit(2)
	}

	if err := run(os.Stdout, os.Stderr, *cost, *email, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(stdout, stderr io.Writer, cost int, email string, passwords []string) error {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	for _, password := range passwords {
		for _, problem := range domain.PasswordProblems(password, email) {
			fmt.Fprintf(stderr, "warning: %s\n", problem)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		fmt.Fprintln(stdout, string(hash))
	}
	return nil
}
