package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"budget-tracker/internal/auth"
	"budget-tracker/internal/models"
	"budget-tracker/internal/storage"

	"golang.org/x/term"
)

const defaultDBPath = "budget_manager.db"

var errMissingUser = errors.New("missing required flags: user")

type options struct {
	username string
	password string
	dbPath   string
	reset    bool
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stdout, stderr)
	if err != nil {
		return err
	}

	if opts.password == "" {
		fmt.Fprint(stdout, "Password: ")
		opts.password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if strings.TrimSpace(opts.password) == "" {
		return errors.New("password cannot be empty")
	}

	db, err := storage.NewDB(opts.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	hash, err := auth.HashPassword(opts.password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	ctx := context.Background()
	if opts.reset {
		return resetPassword(ctx, db, opts.username, hash, stdout)
	}

	user, err := db.CreateUser(ctx, opts.username, hash)
	if errors.Is(err, storage.ErrDuplicateUsername) {
		return fmt.Errorf("user %s already exists (use -reset to change the password)", opts.username)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Username, user.ID)
	return nil
}

func parseFlags(args []string, stdout, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.username, "user", "", "Username")
	fs.StringVar(&opts.password, "password", "", "Password (optional, will prompt if omitted)")
	fs.StringVar(&opts.dbPath, "db", defaultDBPath, "Path to database file")
	fs.BoolVar(&opts.reset, "reset", false, "Replace the password of an existing user")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.username = strings.TrimSpace(opts.username)
	if opts.username == "" {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> [-password <password>] [-db <db_path>] [-reset]")
		fs.PrintDefaults()
		return opts, errMissingUser
	}

	// DB_PATH applies unless -db was given explicitly.
	explicitDB := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "db" {
			explicitDB = true
		}
	})
	if path := os.Getenv("DB_PATH"); path != "" && !explicitDB {
		opts.dbPath = path
	}

	return opts, nil
}

func resetPassword(ctx context.Context, db *storage.DB, username, hash string, stdout io.Writer) error {
	user, err := db.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("user %s does not exist", username)
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if err := db.UpdateUser(ctx, user.ID, models.UserPatch{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	fmt.Fprintf(stdout, "Password for user %s updated\n", user.Username)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Non-terminal input such as pipes and tests.
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
