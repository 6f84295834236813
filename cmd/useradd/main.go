package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cypherlabdev/odds-gateway-service/internal/auth"
	"github.com/cypherlabdev/odds-gateway-service/internal/config"
)

// useradd adds a user to the gateway's user directory.
// The password is read from stdin so it never shows up in shell history.
func main() {
	username := flag.String("username", "", "username to create")
	admin := flag.Bool("admin", false, "allow the user to list users and revoke sessions")
	configFile := flag.String("config", "config/config.yaml", "path to the gateway config file")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	logger := log.Logger

	if *username == "" {
		logger.Fatal().Msg("-username is required")
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	fmt.Fprint(os.Stderr, "password: ")
	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		logger.Fatal().Err(err).Msg("failed to read password")
	}
	password = strings.TrimRight(password, "\r\n")

	store, err := auth.NewFileUserStore(cfg.Auth.UsersFile, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load user directory")
	}

	// The signing secret is not needed to create users
	svc, err := auth.NewService(auth.Config{JWTSecret: "unused", MaxDevices: cfg.Auth.MaxDevices}, store, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create auth service")
	}

	user, err := svc.CreateUser(context.Background(), *username, password, *admin)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user")
	}

	fmt.Println(user.ID)
}
