// Package combine drives the full reconciliation pipeline: parse and clean
// the input statement files, group their statements per account, merge every
// account into one ledger and optionally plug balance gaps.
package combine

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerloom/statement-combiner/internal/cleaner"
	"github.com/ledgerloom/statement-combiner/internal/flavour"
	"github.com/ledgerloom/statement-combiner/internal/ledger"
	"github.com/ledgerloom/statement-combiner/internal/models"
	"github.com/ledgerloom/statement-combiner/internal/parser"
)

// Options configure one combine run.
type Options struct {
	// ConfigDir is the directory holding the in/, out/ and ren/ flavour trees.
	ConfigDir string
	// FlavourIn names the input flavour (the bank the files come from).
	FlavourIn string
	// PlugGaps inserts synthetic balancing transactions between statement
	// files whose balances don't chain.
	PlugGaps bool

	// Parallelism bounds concurrent file parsing; 0 means no bound.
	Parallelism int
}

// FileError is the failure of one input file. One broken file doesn't stop
// the batch; the driver reports all failures after attempting every file.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// ProcessFiles parses and cleans all input files and groups the resulting
// statements per account UID. Distinct files are independent and processed
// concurrently. Statements without transactions are dropped with a warning
// from the cleaner.
func ProcessFiles(paths []string, opts Options, log zerolog.Logger) (map[string][]*models.Statement, []*FileError) {
	var (
		mu       sync.Mutex
		accounts = make(map[string][]*models.Statement)
		failures []*FileError
	)

	var g errgroup.Group
	if opts.Parallelism > 0 {
		g.SetLimit(opts.Parallelism)
	}

	for _, path := range paths {
		path := path
		g.Go(func() error {
			statements, err := processFile(path, opts, log)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, &FileError{File: path, Err: err})
				return nil
			}
			for _, st := range statements {
				accounts[st.AccountUID] = append(accounts[st.AccountUID], st)
			}
			return nil
		})
	}
	// Workers never return an error, they record failures instead.
	_ = g.Wait()

	// Concurrent processing loses the argument order; put each account's
	// statements into a stable order by file name so merging stays
	// deterministic.
	for _, statements := range accounts {
		sort.SliceStable(statements, func(i, j int) bool {
			return statements[i].File < statements[j].File
		})
	}

	return accounts, failures
}

func processFile(path string, opts Options, log zerolog.Logger) ([]*models.Statement, error) {
	extension := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	fl, err := flavour.LoadInput(opts.ConfigDir, extension, opts.FlavourIn)
	if err != nil {
		return nil, err
	}

	statements, err := parser.ParseFile(path, fl, log)
	if err != nil {
		return nil, err
	}

	kept := statements[:0]
	for _, st := range statements {
		if err := cleaner.Clean(st, log); err != nil {
			return nil, err
		}
		if len(st.Transactions) == 0 {
			continue
		}
		kept = append(kept, st)
	}
	return kept, nil
}

// CombineAccount merges the cleaned statements of one account and plugs
// balance gaps when requested.
func CombineAccount(accountUID string, statements []*models.Statement, opts Options, log zerolog.Logger) (models.Ledger, error) {
	log.Info().Str("account", accountUID).Int("files", len(statements)).Msg("handling account")

	combined, err := ledger.Merge(statements, log)
	if err != nil {
		return nil, err
	}
	if opts.PlugGaps {
		combined = ledger.PlugGaps(combined, log)
	}
	return combined, nil
}
