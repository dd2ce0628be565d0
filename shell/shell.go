// Package shell implements the interactive line-oriented front end of quickkv.
// It holds no engine state of its own beyond the currently loaded namespace.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/quickkv/backup"
	"github.com/viant/quickkv/export/sqlite"
	"github.com/viant/quickkv/storage/filestore"
)

// Kind identifies a shell command.
type Kind int

const (
	Invalid Kind = iota
	Help
	Quit
	List
	Status
	Load
	Get
	Put
	Delete
	Export
	Backup
)

// Command is a parsed input line.
type Command struct {
	Kind  Kind
	Key   string
	Value string
}

// Parse tokenizes a line into a command.
func Parse(line string) Command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}
	}
	name, args := fields[0], fields[1:]
	switch len(args) {
	case 0:
		switch name {
		case "help":
			return Command{Kind: Help}
		case "quit", "exit":
			return Command{Kind: Quit}
		case "list":
			return Command{Kind: List}
		case "status":
			return Command{Kind: Status}
		}
	case 1:
		switch name {
		case "load":
			return Command{Kind: Load, Key: args[0]}
		case "get":
			return Command{Kind: Get, Key: args[0]}
		case "delete":
			return Command{Kind: Delete, Key: args[0]}
		case "export":
			return Command{Kind: Export, Key: args[0]}
		case "backup":
			return Command{Kind: Backup, Key: args[0]}
		}
	}
	if name == "put" && len(args) >= 2 {
		return Command{Kind: Put, Key: args[0], Value: strings.Join(args[1:], " ")}
	}
	return Command{}
}

// Shell runs commands read from an input against one namespace at a time.
type Shell struct {
	cfg       *Config
	in        io.Reader
	out       io.Writer
	fs        afs.Service
	logf      func(format string, args ...any)
	store     *filestore.Store
	namespace string
}

// New creates a shell.
func New(cfg *Config, in io.Reader, out io.Writer, logf func(format string, args ...any)) *Shell {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Shell{cfg: cfg, in: in, out: out, fs: afs.New(), logf: logf}
}

// Run reads commands until quit or end of input. The loaded namespace is closed
// on every exit path; a failed load aborts the session with its error.
func (s *Shell) Run(ctx context.Context) (err error) {
	defer func() {
		err = errors.Join(err, s.closeStore())
	}()
	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprintf(s.out, "%s> ", s.namespace)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		cmd := Parse(scanner.Text())
		if cmd.Kind == Quit {
			fmt.Fprintln(s.out, "Bye!")
			return nil
		}
		if err := s.Execute(ctx, cmd); err != nil {
			return err
		}
	}
}

// Execute runs a single command. Only a failed load returns an error;
// other failures are printed and the session continues.
func (s *Shell) Execute(ctx context.Context, cmd Command) error {
	switch cmd.Kind {
	case Help:
		s.help()
	case Load:
		return s.load(ctx, cmd.Key)
	case Invalid:
		fmt.Fprintln(s.out, "Command invalid!")
	default:
		if s.store == nil {
			fmt.Fprintln(s.out, "[!] Storage not selected")
			return nil
		}
		s.run(ctx, cmd)
	}
	return nil
}

func (s *Shell) run(ctx context.Context, cmd Command) {
	switch cmd.Kind {
	case List:
		for key := range s.store.Keys() {
			fmt.Fprintf(s.out, "- %s\n", key)
		}
	case Get:
		value, err := s.store.Read(cmd.Key)
		if err != nil {
			fmt.Fprintf(s.out, "Error reading %q - %v\n", cmd.Key, err)
			return
		}
		fmt.Fprintf(s.out, "%s | %s\n", cmd.Key, strings.ToValidUTF8(string(value), "�"))
	case Put:
		if err := s.store.Write(cmd.Key, []byte(cmd.Value)); err != nil {
			fmt.Fprintf(s.out, "[!] Error writing %s:%s - %v\n", cmd.Key, cmd.Value, err)
			return
		}
		fmt.Fprintln(s.out, "[#] Value stored")
	case Delete:
		if err := s.store.Delete(cmd.Key); err != nil {
			fmt.Fprintf(s.out, "[!] Error deleting %q - %v\n", cmd.Key, err)
			return
		}
		fmt.Fprintln(s.out, "[#] Value deleted")
	case Status:
		s.status()
	case Export:
		count, err := sqlite.Export(ctx, cmd.Key, s.store)
		if err != nil {
			fmt.Fprintf(s.out, "[!] Error exporting to %s - %v\n", cmd.Key, err)
			return
		}
		fmt.Fprintf(s.out, "[#] Exported %d entries to %s\n", count, cmd.Key)
	case Backup:
		if err := s.store.Save(ctx); err != nil {
			fmt.Fprintf(s.out, "[!] Error saving %s - %v\n", s.namespace, err)
			return
		}
		written, err := backup.Namespace(ctx, s.fs, s.cfg.Dir, s.namespace, cmd.Key)
		if err != nil {
			fmt.Fprintf(s.out, "[!] Error backing up to %s - %v\n", cmd.Key, err)
			return
		}
		for _, URL := range written {
			fmt.Fprintf(s.out, "[#] Copied %s\n", URL)
		}
	}
}

func (s *Shell) load(ctx context.Context, namespace string) error {
	if err := s.closeStore(); err != nil {
		fmt.Fprintf(s.out, "[!] Error closing %q - %v\n", s.namespace, err)
	}
	fmt.Fprintf(s.out, "[#] Loading storage %q\n", namespace)
	store, err := filestore.Open(ctx, namespace, s.cfg.Options(s.logf)...)
	if err != nil {
		fmt.Fprintf(s.out, "Failed to open a namespace: %v\n", err)
		return err
	}
	s.store = store
	s.namespace = namespace
	return nil
}

func (s *Shell) closeStore() error {
	if s.store == nil {
		return nil
	}
	store := s.store
	s.store = nil
	s.namespace = ""
	return store.Close()
}

func (s *Shell) status() {
	st := s.store.Status()
	fmt.Fprintf(s.out, "namespace: %s\npage size: %d\ncursor: %d\n", st.Namespace, st.PageSize, st.Cursor)
	fmt.Fprintf(s.out, "index (%d):\n", len(st.Entries))
	for _, entry := range st.Entries {
		fmt.Fprintf(s.out, "- %s | offset=%d length=%d page=%d\n", entry.Key, entry.Location.Offset, entry.Location.Length, entry.Location.PageOffset(st.PageSize))
	}
	fmt.Fprintf(s.out, "cache (%d): %v\n", len(st.CachedPages), st.CachedPages)
	fmt.Fprintf(s.out, "free (%d):\n", len(st.FreeBlocks))
	for _, block := range st.FreeBlocks {
		fmt.Fprintf(s.out, "- [%d, %d)\n", block.Offset, block.End())
	}
	stats := st.Stats
	fmt.Fprintf(s.out, "stats: writes=%d reads=%d deletes=%d hits=%d misses=%d reused=%d\n",
		stats.Writes, stats.Reads, stats.Deletes, stats.CacheHits, stats.CacheMisses, stats.Reused)
}

func (s *Shell) help() {
	fmt.Fprintln(s.out, "## Welcome to quickkv. Following commands are available")
	fmt.Fprintln(s.out, "help -- prints this help message")
	fmt.Fprintln(s.out, "load <namespace> -- loads given namespace")
	fmt.Fprintln(s.out, "list -- list all the keys")
	fmt.Fprintln(s.out, "get <key> -- prints the value of the key")
	fmt.Fprintln(s.out, "put <key> <value> -- adds pair <key>:<value> to the store")
	fmt.Fprintln(s.out, "delete <key> -- removes the key from the store")
	fmt.Fprintln(s.out, "status -- dumps index, page cache and free blocks")
	fmt.Fprintln(s.out, "export <path> -- exports the namespace into a SQLite database")
	fmt.Fprintln(s.out, "backup <url> -- copies the namespace files to a local or cloud URL")
	fmt.Fprintln(s.out, "quit -- saves and quits the program")
}
