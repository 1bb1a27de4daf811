// Roadmap: Process Improvement MCP Server
//
// An MCP server that guides AI assistants through phase-gated process
// improvement projects: gather knowledge in conversation, track what
// each deliverable still needs, and gate phase transitions on reviewed
// deliverable quality.
//
// Usage:
//
//	roadmap serve    # Start MCP server (stdio transport)
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	roadmapserver "roadmap/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("roadmap v%s\n", roadmapserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, cleanup, err := roadmapserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Roadmap v%s — Process Improvement MCP Server

Usage:
  roadmap serve    Start the MCP server (stdio transport)

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "roadmap": {
        "command": "roadmap",
        "args": ["serve"]
      }
    }
  }

Data is stored under ~/.roadmap (override with ROADMAP_DATA_DIR).
`, roadmapserver.Version)
}
