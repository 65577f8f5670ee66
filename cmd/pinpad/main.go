package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/congo-pay/pinpad/internal/config"
	"github.com/congo-pay/pinpad/internal/credential"
	"github.com/congo-pay/pinpad/internal/logging"
	"github.com/congo-pay/pinpad/internal/navigation"
	"github.com/congo-pay/pinpad/internal/pinentry"
	"github.com/congo-pay/pinpad/internal/registration"
	"github.com/congo-pay/pinpad/internal/screen"
)

func main() {
	os.Exit(run())
}

func run() int {
	phone := flag.String("phone", "", "Store this phone number before showing the pad (stands in for the phone entry step)")
	backend := flag.String("backend", "", "Override BACKEND_URL, e.g. https://api.example.com")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	if *backend != "" {
		cfg.BackendURL = strings.TrimRight(*backend, "/")
	}

	var stdout, stderr io.Writer = os.Stdout, os.Stderr
	stdinFd := int(os.Stdin.Fd())
	if term.IsTerminal(stdinFd) {
		// Raw mode delivers single keys (including backspace and Ctrl-C) as typed.
		state, err := term.MakeRaw(stdinFd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "enable raw terminal: %v\n", err)
			return 1
		}
		defer term.Restore(stdinFd, state)
		stdout, stderr = screen.CRLF(os.Stdout), screen.CRLF(os.Stderr)
	}

	logger := logging.NewWithWriter(stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := credential.Open(ctx, cfg)
	if err != nil {
		logger.Error("open credential store", "store", cfg.CredentialStore, "error", err)
		return 1
	}
	defer closeStore()

	if *phone != "" {
		if err := store.SavePhoneNumber(ctx, *phone); err != nil {
			logger.Error("store phone number", "error", err)
			return 1
		}
	}

	client := registration.NewHTTPClient(cfg.BackendURL, cfg.RequestTimeout, cfg.AppName+"-pinpad", logger)
	nav := navigation.NewChannelNavigator()
	flow, err := pinentry.NewFlow(pinentry.Options{Length: cfg.PINLength, NextRoute: navigation.ConfirmPassword}, store, client, nav, logger)
	if err != nil {
		logger.Error("build pin entry flow", "error", err)
		return 1
	}

	renderer := screen.NewRenderer(stdout, isatty.IsTerminal(os.Stdout.Fd()))
	err = screen.New(flow, renderer, nav.Done(), logger).Run(ctx, os.Stdin)
	switch {
	case err == nil:
		fmt.Fprintf(stdout, "Registered. Next: %s\n", nav.Route())
		return 0
	case errors.Is(err, screen.ErrQuit), errors.Is(err, context.Canceled):
		return 130
	default:
		logger.Error("pin entry ended", "error", err)
		return 1
	}
}
