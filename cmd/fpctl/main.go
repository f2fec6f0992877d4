// Command fpctl is a maintenance CLI for feedpulse: account management
// and manual cycle triggering against a running instance.
package main

import (
	"fmt"
	"net/http"
	"os"

	"feedpulse/internal/config"
	"feedpulse/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfgPath := os.Getenv("FEEDPULSE_CONFIG")
	if cfgPath == "" {
		cfgPath = "feedpulse.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-account":
		if len(os.Args) < 3 {
			fmt.Println("Usage: fpctl add-account <handle> [display-name]")
			os.Exit(1)
		}
		display := os.Args[2]
		if len(os.Args) > 3 {
			display = os.Args[3]
		}
		withStore(cfg, func(s *store.Store) error {
			return s.AddAccount(os.Args[2], display)
		})
	case "deactivate":
		if len(os.Args) < 3 {
			fmt.Println("Usage: fpctl deactivate <handle>")
			os.Exit(1)
		}
		withStore(cfg, func(s *store.Store) error {
			return s.SetActive(os.Args[2], false)
		})
	case "accounts":
		withStore(cfg, func(s *store.Store) error {
			accounts, err := s.ActiveAccounts()
			if err != nil {
				return err
			}
			for _, a := range accounts {
				cursor := a.Cursor
				if cursor == "" {
					cursor = "-"
				}
				fmt.Printf("@%-20s cursor=%s\n", a.Handle, cursor)
			}
			return nil
		})
	case "trigger":
		runTrigger(cfg)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: fpctl <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  add-account <handle> [name]  Add or update a monitored account")
	fmt.Println("  deactivate <handle>          Exclude an account from monitoring")
	fmt.Println("  accounts                     List active accounts and cursors")
	fmt.Println("  trigger                      Request an immediate cycle (admin API)")
}

func withStore(cfg *config.Config, fn func(*store.Store) error) {
	s, err := store.New(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening store: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	if err := fn(s); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func runTrigger(cfg *config.Config) {
	if !cfg.Admin.Enabled {
		fmt.Fprintln(os.Stderr, "admin server is disabled in config")
		os.Exit(1)
	}

	resp, err := http.Post("http://"+cfg.Admin.Addr+"/trigger", "", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trigger failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		fmt.Fprintf(os.Stderr, "trigger rejected: %s\n", resp.Status)
		os.Exit(1)
	}
	fmt.Println("cycle triggered")
}
