// parley is the human-facing CLI for a parley-server: connect once, then
// inspect the agent directory and message stats from the terminal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"parley/internal/cli/client"
	"parley/internal/cli/config"
	"parley/internal/cli/output"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return usage()
	}
	switch args[0] {
	case "connect":
		return cmdConnect(args[1:])
	case "disconnect":
		return cmdDisconnect()
	case "status":
		return cmdGet(args[1:], "/api/v1/status")
	case "agents":
		return cmdGet(args[1:], "/api/v1/agents")
	case "stats":
		return cmdGet(args[1:], "/api/v1/stats")
	case "watch":
		return cmdWatch(args[1:])
	default:
		return usage()
	}
}

func usage() error {
	fmt.Fprintln(os.Stderr, `usage: parley <command> [flags]

commands:
  connect <url>   save a server as the default
  disconnect      forget the saved server
  status          server status
  agents          registered agent directory
  stats           message store totals
  watch           poll stats on an interval`)
	return errors.New("unknown command")
}

func cmdConnect(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: parley connect <url>")
	}
	raw := args[0]
	if _, err := url.ParseRequestURI(raw); err != nil {
		return fmt.Errorf("invalid server url: %w", err)
	}

	cl := client.New(raw)
	var payload map[string]any
	if err := cl.Get("/api/v1/status", &payload); err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.SetDefault(raw)
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Println("connected to", raw)
	return nil
}

func cmdDisconnect() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.ClearDefault()
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Println("disconnected")
	return nil
}

func cmdGet(args []string, path string) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	format := fs.String("format", "", "output format: table, json, plain")
	quiet := fs.Bool("quiet", false, "print names only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cl, cfg, err := defaultClient()
	if err != nil {
		return err
	}
	if *format == "" {
		*format = cfg.Preferences["default_format"]
	}

	var payload map[string]any
	if err := cl.Get(path, &payload); err != nil {
		return err
	}
	return output.Print(payload, *format, *quiet)
}

func cmdWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	interval := fs.Duration("interval", 10*time.Second, "poll interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cl, _, err := defaultClient()
	if err != nil {
		return err
	}

	for {
		var payload map[string]any
		if err := cl.Get("/api/v1/stats", &payload); err != nil {
			fmt.Fprintln(os.Stderr, "poll failed:", err)
		} else if err := output.Print(payload, "plain", false); err != nil {
			return err
		}
		time.Sleep(*interval)
	}
}

func defaultClient() (*client.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	server, ok := cfg.Default()
	if !ok {
		return nil, nil, errors.New("no server configured; run: parley connect <url>")
	}
	return client.New(server.URL), cfg, nil
}
