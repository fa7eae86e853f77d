// parley-mcp serves the messaging tools over MCP stdio for desktop agent
// hosts. The store lives in-process and lasts for the session; pass
// -archive to keep an offline copy of what was said.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"parley/internal/archive"
	"parley/internal/mcpserver"
	"parley/internal/store"
)

const serverVersion = "0.1.0-dev"

func main() {
	archivePath := flag.String("archive", "", "mirror agents and messages to this SQLite file")
	flag.Parse()

	opts := mcpserver.Options{}
	if *archivePath != "" {
		arc, err := archive.Open(*archivePath)
		if err != nil {
			log.Fatalf("open archive: %v", err)
		}
		defer arc.Close()
		opts.Archive = arc
	}

	server := mcpserver.New(store.New(), serverVersion, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("mcp server: %v", err)
	}
}
