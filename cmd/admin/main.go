// Command admin creates a user directly in the store, prompting for the
// password without echo.
//
//	admin -d postgres://... -email root@example.com -name Root -role ADMIN
//
// With -gen-secret it prints a random signing secret for JOBFIND_SECRET_KEY
// and exits.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/jobfind/jobfind/internal/common"
	"github.com/jobfind/jobfind/internal/logging"
	"github.com/jobfind/jobfind/internal/server/auth"
	"github.com/jobfind/jobfind/internal/server/config"
	"github.com/jobfind/jobfind/internal/server/repositories/repomanager"
	"github.com/jobfind/jobfind/internal/server/services"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// readPassword is a seam for tests.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

type options struct {
	dsn        string
	email      string
	name       string
	role       string
	bcryptCost int
	genSecret  bool
}

// secretBytes is the size of a generated signing secret before hex encoding.
const secretBytes = 32

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.dsn, "d", os.Getenv(config.EnvDatabaseDSN), "database DSN, or \"memory\"")
	fs.StringVar(&opts.email, "email", "", "email of the new user")
	fs.StringVar(&opts.name, "name", "", "display name")
	fs.StringVar(&opts.role, "role", "ADMIN", "USER or ADMIN")
	fs.IntVar(&opts.bcryptCost, "bcrypt-cost", bcrypt.DefaultCost, "bcrypt work factor")
	fs.BoolVar(&opts.genSecret, "gen-secret", false, "print a random signing secret and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.genSecret {
		return opts, nil
	}
	if opts.dsn == "" || opts.email == "" {
		return nil, errors.New("-d and -email are required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	if opts.genSecret {
		secret, err := common.MakeRandHexString(secretBytes)
		if err != nil {
			return fmt.Errorf("generate secret: %w", err)
		}
		fmt.Fprintln(stdout, secret)
		return nil
	}

	fmt.Fprint(stdout, "Password: ")
	password, err := readPassword()
	fmt.Fprintln(stdout)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(password)

	var (
		db *sql.DB
		rm repomanager.RepositoryManager
	)
	if opts.dsn == config.MemoryDSN {
		rm = repomanager.NewMemoryRepositoryManager()
	} else {
		db, err = sql.Open("pgx", opts.dsn)
		if err != nil {
			return fmt.Errorf("db init error: %w", err)
		}
		defer db.Close()

		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("migrations error: %w", err)
		}
	}

	hasher, err := auth.NewBcryptHasher(opts.bcryptCost)
	if err != nil {
		return err
	}

	logger := logging.NewJSONLogger(stderr, slog.LevelWarn)
	users := services.NewUserService(db, rm, hasher, logger)

	user, err := users.Create(ctx, services.RegisterRequest{
		Email:    opts.email,
		Password: strings.TrimRight(string(password), "\r\n"),
		Name:     opts.name,
		Role:     strings.ToUpper(opts.role),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "created user id=%d email=%s role=%s\n", user.ID, user.Email, user.Role)
	return nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}
