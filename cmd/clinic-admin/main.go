// clinic-admin is the operator CLI for the approval queues, the distribution
// calculator, availability and report exports. Commands are role-gated
// locally from the bearer token's claims; the API stays the authority.
package main

import (
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/codekarmatech/healthyphysio-sub004/internal/attendance"
	"github.com/codekarmatech/healthyphysio-sub004/internal/config"
	"github.com/codekarmatech/healthyphysio-sub004/internal/earnings"
	"github.com/codekarmatech/healthyphysio-sub004/internal/identity"
	"github.com/codekarmatech/healthyphysio-sub004/internal/restclient"
	"github.com/codekarmatech/healthyphysio-sub004/internal/scheduling"
	"github.com/codekarmatech/healthyphysio-sub004/internal/sitesettings"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	client, err := restclient.New(cfg.APIBaseURL, cfg.APIToken, cfg.HTTPTimeout)
	if err != nil {
		log.Fatalf("api client error: %v", err)
	}

	who, err := identity.FromToken(cfg.APIToken)
	if err != nil {
		log.Fatalf("bearer token error: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("service", "clinic-admin")
	settings := sitesettings.NewCache(sitesettings.NewHTTPGateway(client), cfg.SettingsTTL, logger)

	cli := &commandLine{
		who:        who,
		earnings:   earnings.NewService(earnings.NewHTTPGateway(client), settings, logger),
		attendance: attendance.NewService(attendance.NewHTTPGateway(client), logger),
		scheduling: scheduling.NewService(scheduling.NewHTTPGateway(client), logger),
		settings:   settings,
		out:        os.Stdout,
		prompt:     stdinPrompt,
	}

	if err := cli.run(os.Args); err != nil {
		if errors.Is(err, errHelp) {
			os.Exit(2)
		}
		log.Fatalf("%v", err)
	}
}
