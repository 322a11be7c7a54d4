package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "capture":
		err = runCapture(os.Args[2:])
	case "add":
		err = runAdd(os.Args[2:], os.Stdout)
	case "get":
		err = runGet(os.Args[2:], os.Stdout)
	case "list":
		err = runList(os.Args[2:], os.Stdout)
	case "search":
		err = runSearch(os.Args[2:], os.Stdout)
	case "delete":
		err = runDelete(os.Args[2:], os.Stdout)
	case "version":
		fmt.Printf("monk %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`monk - save pages to read later

Usage:
  monk <command> [arguments]

Commands:
  serve                 Run the collection server and web front-end
  capture [flags] URL…  Capture each page's title and save it to the collection
  add [flags] URL       Save a URL without loading the page
  get ID                Show one saved article
  list [flags]          List saved articles
  search [flags] QUERY  Find articles by name, URL or description
  delete ID…            Delete saved articles
  version               Print the monk version
  help                  Show this help message

Environment:
  MONK_ADDR, MONK_URL, MONK_NAME, MONK_DB_PATH, DATABASE_URL,
  ADMIN_PASSWORD, SESSION_SECRET, COOKIE_SECURE, MONK_API_TOKEN,
  MONK_LOG_LEVEL, OTEL_EXPORTER_OTLP_ENDPOINT

Examples:
  monk serve
  monk capture -server http://localhost:3000 https://go.dev/blog/
  monk add -tags go,blog https://go.dev/blog/
  monk list -tag go
  monk search generics`)
}
