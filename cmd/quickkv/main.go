package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gops/agent"
	_ "github.com/viant/afsc/gs"
	_ "github.com/viant/afsc/s3"
	"github.com/viant/quickkv/shell"
)

func main() {
	flags := flag.NewFlagSet("quickkv", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (optional)")
	dir := flags.String("dir", "", "directory holding namespace files")
	pageSize := flags.Uint64("page-size", 0, "page size in bytes for new namespaces (power of two)")
	cachePages := flags.Int("cache-pages", 0, "number of pages kept in the read cache")
	syncWrites := flags.Bool("sync", false, "fsync the data file after every write")
	noLock := flags.Bool("no-lock", false, "do not take an exclusive lock on the namespace")
	verbose := flags.Bool("v", false, "log store lifecycle events")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: quickkv [options]")
		flags.PrintDefaults()
	}
	flags.Parse(os.Args[1:])

	cfg := shell.DefaultConfig()
	if *configPath != "" {
		loaded, err := shell.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	}
	if *dir != "" {
		cfg.Dir = *dir
	}
	if *pageSize != 0 {
		cfg.PageSize = *pageSize
	}
	if *cachePages != 0 {
		cfg.CachePages = *cachePages
	}
	if *syncWrites {
		cfg.Sync = true
	}
	if *noLock {
		cfg.Lock = false
	}
	if *verbose {
		cfg.Verbose = true
	}
	if cfg.Gops {
		startGops()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := shell.New(cfg, os.Stdin, os.Stdout, log.Printf).Run(ctx); err != nil {
		log.Fatalf("quickkv: %v", err)
	}
}

func startGops() {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		log.Printf("gops: %v", err)
	}
}
