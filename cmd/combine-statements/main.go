package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ledgerloom/statement-combiner/internal/combine"
	"github.com/ledgerloom/statement-combiner/internal/flavour"
	"github.com/ledgerloom/statement-combiner/internal/logger"
	"github.com/ledgerloom/statement-combiner/internal/writer"
)

func main() {
	outFlag := flag.String("out", "", "Output file path; use {} as account placeholder (required)")
	flavourInFlag := flag.String("flavour-in", "", "Input statement flavour (required)")
	flavourOutFlag := flag.String("flavour-out", "", "Output file flavour (required)")
	plugGapsFlag := flag.Bool("plug-gaps", false, "Insert synthetic transactions where balances don't chain")
	configDirFlag := flag.String("config-dir", ".", "Directory holding the in/, out/ and ren/ flavour trees")
	logLevelFlag := flag.String("loglevel", "warn", "Log level: debug, info, warn, error")
	logFileFlag := flag.String("logfile", "", "Write logs to this file instead of the console")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Combine multiple bank statements into one file per account.

Statement files of one input flavour are parsed, cleaned and merged into a
chronologically ordered ledger per account, then written in the output
flavour. With more than one account in the inputs the output path must
contain the {} account placeholder.

Usage:
  combine-statements -out <file> -flavour-in <name> -flavour-out <name> [flags] <statements...>

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Merge two exports of the same account
  combine-statements -out ledger.csv -flavour-in mybank -flavour-out homebank jan.csv feb.csv

  # Several accounts, one output file each, with gap plugging
  combine-statements -out 'ledger-{}.csv' -flavour-in mybank -flavour-out homebank -plug-gaps *.csv
`)
	}
	flag.Parse()

	if *outFlag == "" || *flavourInFlag == "" || *flavourOutFlag == "" {
		flag.Usage()
		os.Exit(2)
	}
	inputs := flag.Args()
	if len(inputs) == 0 {
		fatalf("no input statement files given\n")
	}

	log, err := logger.New(*logLevelFlag, *logFileFlag)
	if err != nil {
		fatalf("%v\n", err)
	}

	opts := combine.Options{
		ConfigDir:   *configDirFlag,
		FlavourIn:   *flavourInFlag,
		PlugGaps:    *plugGapsFlag,
		Parallelism: runtime.NumCPU(),
	}

	accounts, failures := combine.ProcessFiles(inputs, opts, log)
	for _, failure := range failures {
		log.Error().Err(failure.Err).Str("file", failure.File).Msg("input file failed")
	}

	// Refuse to continue before anything is written if outputs would
	// overwrite each other.
	if len(accounts) > 1 && !strings.Contains(*outFlag, "{}") {
		fatalf("out file %q has no {} placeholder but the inputs contain %d accounts; "+
			"that would overwrite one account's output with another's\n", *outFlag, len(accounts))
	}

	extension := strings.TrimPrefix(strings.ToLower(filepath.Ext(*outFlag)), ".")
	outFlavour, err := flavour.LoadOutput(*configDirFlag, extension, *flavourOutFlag)
	if err != nil {
		fatalf("%v\n", err)
	}

	accountUIDs := make([]string, 0, len(accounts))
	for uid := range accounts {
		accountUIDs = append(accountUIDs, uid)
	}
	sort.Strings(accountUIDs)

	// Accounts are independent, their outputs can be written in parallel.
	var mu sync.Mutex
	accountsFailed := 0
	var g errgroup.Group
	for _, accountUID := range accountUIDs {
		accountUID := accountUID
		g.Go(func() error {
			combined, err := combine.CombineAccount(accountUID, accounts[accountUID], opts, log)
			if err == nil {
				_, err = writer.WriteLedger(*outFlag, combined, outFlavour, log)
			}
			if err != nil {
				log.Error().Err(err).Str("account", accountUID).Msg("account failed")
				mu.Lock()
				accountsFailed++
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 || accountsFailed > 0 {
		fatalf("%d of %d input files and %d of %d accounts failed\n",
			len(failures), len(inputs), accountsFailed, len(accounts))
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
