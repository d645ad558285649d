// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main runs the in-memory chat API used for local development.
//
// Settings come from flags, then CHATSTUB_* environment variables, which may
// be placed in a .env file in the working directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jeranaias/rigchat/internal/stubserver"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load(".env")

	addr := flag.String("addr", envOr("CHATSTUB_ADDR", ":8080"), "listen address")
	email := flag.String("email", envOr("CHATSTUB_EMAIL", stubserver.DefaultEmail), "login email")
	password := flag.String("password", envOr("CHATSTUB_PASSWORD", stubserver.DefaultPassword), "login password")
	delay := flag.Duration("delay", envDuration("CHATSTUB_DELAY", 800*time.Millisecond), "reply delay")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("chatstub v%s\n", version)
		return
	}

	srv := stubserver.New(stubserver.Options{
		Email:      *email,
		Password:   *password,
		ReplyDelay: *delay,
	})

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("CHATSTUB_START | addr=%s email=%s delay=%v", *addr, *email, *delay)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("CHATSTUB_FAILED | error=%v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("CHATSTUB_SHUTDOWN | error=%v", err)
	}
	log.Printf("CHATSTUB_STOP")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
