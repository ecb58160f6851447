package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ledgerloom/statement-combiner/internal/flavour"
	"github.com/ledgerloom/statement-combiner/internal/logger"
	"github.com/ledgerloom/statement-combiner/internal/renamer"
)

func main() {
	flavourFlag := flag.String("flavour", "", "Rename flavour holding the from/to rules (required)")
	dryRunFlag := flag.Bool("dry-run", false, "Show the renames without touching any file")
	configDirFlag := flag.String("config-dir", ".", "Directory holding the in/, out/ and ren/ flavour trees")
	logLevelFlag := flag.String("loglevel", "warn", "Log level: debug, info, warn, error")
	logFileFlag := flag.String("logfile", "", "Write logs to this file instead of the console")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Rename downloaded statement files according to flavour rules.

Each file name is matched against the flavour's from patterns; the first
match is rewritten with the rule's to template. Named groups carry over,
an epoch group is rendered as a timestamp. Files no rule matches are left
alone.

Usage:
  rename-statements -flavour <name> [flags] <files or globs...>

Flags:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *flavourFlag == "" {
		flag.Usage()
		os.Exit(2)
	}
	if flag.NArg() == 0 {
		fatalf("no files given\n")
	}

	log, err := logger.New(*logLevelFlag, *logFileFlag)
	if err != nil {
		fatalf("%v\n", err)
	}

	rules, err := flavour.LoadRename(*configDirFlag, *flavourFlag)
	if err != nil {
		fatalf("%v\n", err)
	}

	// Arguments may be shell globs that the shell did not expand.
	var paths []string
	for _, arg := range flag.Args() {
		matches, err := filepath.Glob(arg)
		if err != nil {
			fatalf("bad pattern %q: %v\n", arg, err)
		}
		if len(matches) == 0 {
			log.Warn().Str("pattern", arg).Msg("no files match")
			continue
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	failed := 0
	for _, path := range paths {
		renamed, err := renamer.Rename(path, rules, *dryRunFlag, log)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("rename failed")
			failed++
			continue
		}
		if renamed != "" {
			fmt.Printf("%s -> %s\n", path, renamed)
		}
	}
	if failed > 0 {
		fatalf("%d of %d files failed\n", failed, len(paths))
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
