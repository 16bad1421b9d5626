// Command ignitectl is a small, scriptable front end over pkg/kvstore: a
// single process-flag parse plus one subcommand per store operation. It
// exists to exercise the store end-to-end from the shell, not to replace an
// interactive session — there is no command loop or prompt here, just one
// shot per invocation.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/moanapiquet/kvdb/pkg/filesys"
	"github.com/moanapiquet/kvdb/pkg/kvstore"
	"github.com/moanapiquet/kvdb/pkg/options"
	flag "github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr, os.Args[1:]))
}

func run(out, errOut io.Writer, args []string) int {
	if len(args) == 0 {
		printUsage(out)
		return 1
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "get":
		return cmdGet(out, errOut, rest)
	case "set":
		return cmdSet(out, errOut, rest)
	case "delete":
		return cmdDelete(out, errOut, rest)
	case "compact":
		return cmdCompact(out, errOut, rest)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintln(errOut, "error: unknown command:", cmd)
		printUsage(errOut)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ignitectl <get|set|delete|compact> [flags]")
	fmt.Fprintln(w, "  --db string       path to the log file (default \"database.db\")")
	fmt.Fprintln(w, "  --max-size uint   compaction threshold in bytes (default 1048576)")
}

func commonFlags(name string) (*flag.FlagSet, *string, *uint64) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	db := fs.String("db", options.DefaultFilePath, "path to the log file")
	maxSize := fs.Uint64("max-size", options.DefaultMaxSize, "compaction threshold in bytes")
	return fs, db, maxSize
}

func openStore(errOut io.Writer, db string, maxSize uint64) (*kvstore.Store, bool) {
	store, err := kvstore.Open("ignitectl", options.WithFilePath(db), options.WithMaxSize(maxSize))
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return nil, false
	}
	return store, true
}

func cmdGet(out, errOut io.Writer, args []string) int {
	fs, db, maxSize := commonFlags("get")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "error: get requires exactly one key argument")
		return 1
	}

	// get never creates the log: opening it would silently materialize an
	// empty database file for a path that was never written to.
	exists, err := filesys.Exists(*db)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if !exists {
		fmt.Fprintln(errOut, "key not found")
		return 1
	}

	store, ok := openStore(errOut, *db, *maxSize)
	if !ok {
		return 1
	}
	defer store.Close()

	value, found, err := store.Get(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if !found {
		fmt.Fprintln(errOut, "key not found")
		return 1
	}

	fmt.Fprintln(out, string(value))
	return 0
}

func cmdSet(out, errOut io.Writer, args []string) int {
	fs, db, maxSize := commonFlags("set")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(errOut, "error: set requires a key and a value argument")
		return 1
	}

	store, ok := openStore(errOut, *db, *maxSize)
	if !ok {
		return 1
	}
	defer store.Close()

	if err := store.Set(fs.Arg(0), []byte(fs.Arg(1))); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	fmt.Fprintln(out, "ok")
	return 0
}

func cmdDelete(out, errOut io.Writer, args []string) int {
	fs, db, maxSize := commonFlags("delete")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "error: delete requires exactly one key argument")
		return 1
	}

	store, ok := openStore(errOut, *db, *maxSize)
	if !ok {
		return 1
	}
	defer store.Close()

	if err := store.Delete(fs.Arg(0)); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	fmt.Fprintln(out, "ok")
	return 0
}

func cmdCompact(out, errOut io.Writer, args []string) int {
	fs, db, maxSize := commonFlags("compact")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	store, ok := openStore(errOut, *db, *maxSize)
	if !ok {
		return 1
	}
	defer store.Close()

	if err := store.Compact(); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	fmt.Fprintln(out, "ok")
	return 0
}
