package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"huddle/auth"
	"huddle/repositories"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`
}

// userctl provisions accounts against the server's store. The store holds
// only the argon2id hash; the plain password never leaves this process.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	username := flag.String("username", "", "Login identity, letters and digits only")
	displayName := flag.String("display-name", "", "Name shown to other users")
	password := flag.String("password", "", "Plain password, hashed before storage")
	flag.Parse()

	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	request := auth.RegisterRequest{
		Username:    *username,
		DisplayName: *displayName,
		Password:    *password,
	}
	if err := auth.ValidateRegister(request); err != nil {
		return fmt.Errorf("invalid registration: %w", err)
	}

	hash, err := auth.HashPassword(request.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer db.Close()

	users := repositories.NewUserRepository(db)
	id, err := users.CreateUser(request.Username, request.DisplayName, hash)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	log.Info("User created", "id", id, "username", request.Username)
	return nil
}
