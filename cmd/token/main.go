// Command token records a user and prints a session token for them, for
// local development without the login service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"messageboard/internal/app"
	"messageboard/internal/auth"
	"messageboard/internal/config"
	"messageboard/internal/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	id := flag.Int64("id", 0, "user id")
	name := flag.String("name", "", "display name")
	ttl := flag.Duration("ttl", 0, "token lifetime (default auth.token_ttl)")
	flag.Parse()

	if *id <= 0 || *name == "" {
		return errors.New("-id and -name are required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *ttl == 0 {
		*ttl = cfg.Auth.TokenTTL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := app.OpenStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	user := domain.User{ID: *id, Name: *name}
	if err := store.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	tokens, err := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer)
	if err != nil {
		return err
	}
	token, err := tokens.Issue(user, *ttl)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
