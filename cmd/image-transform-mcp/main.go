package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ironsheep/image-transform-mcp/internal/config"
	"github.com/ironsheep/image-transform-mcp/internal/pipeline"
	"github.com/ironsheep/image-transform-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var configPath string

	// Handle --version, --help and --config
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("image-transform-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("image-transform-mcp - MCP server for raster image transforms")
			fmt.Println()
			fmt.Println("Usage: image-transform-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --config <file>  Load settings from a TOML file")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Printf("  %s=<file>     Config file when --config is not given\n", config.EnvConfigFile)
			fmt.Printf("  %s=debug   Enable debug logging\n", config.EnvLogLevel)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		case "--config", "-c":
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "--config requires a file argument")
				os.Exit(2)
			}
			configPath = os.Args[2]
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cf, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	level, _ := cf.Level()
	pipeline.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if level <= slog.LevelDebug {
		log.Printf("Image Transform MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	settings, err := cf.Settings()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	server.Version = Version
	srv := server.New(pipeline.New(settings))
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
