// Package renamer renames downloaded statement files according to the rules
// of a rename flavour, typically to get a sortable date prefix into names
// that banks generate with the date in the middle.
package renamer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerloom/statement-combiner/internal/flavour"
)

// Rename applies the first matching rule to the file and renames it, unless
// dryRun is set. It returns the new path, or "" when no rule matched.
func Rename(path string, rules *flavour.Rename, dryRun bool, log zerolog.Logger) (string, error) {
	dir, name := filepath.Split(path)

	for i := range rules.Renames {
		rule := &rules.Renames[i]
		m := rule.Regexp().FindStringSubmatch(name)
		if m == nil {
			continue
		}

		groups := make(map[string]string)
		for gi, gname := range rule.Regexp().SubexpNames() {
			if gi > 0 && gname != "" {
				groups[gname] = m[gi]
			}
		}
		// Epoch groups become human-readable timestamps in the new name.
		if epoch, ok := groups["epoch"]; ok {
			sec, err := strconv.ParseInt(epoch, 10, 64)
			if err != nil {
				return "", fmt.Errorf("rename %s: epoch %q: %w", name, epoch, err)
			}
			groups["epoch"] = time.Unix(sec, 0).Format("2006-01-02 15:04:05")
		}

		newName, err := fillTemplate(rule.To, groups)
		if err != nil {
			return "", fmt.Errorf("rename %s: %w", name, err)
		}
		target := filepath.Join(dir, newName)

		log.Info().Str("from", path).Str("to", target).Bool("dry_run", dryRun).Msg("renaming")
		if !dryRun {
			if err := os.Rename(path, target); err != nil {
				return "", err
			}
		}
		return target, nil
	}

	log.Debug().Str("file", path).Msg("no rename rule matched")
	return "", nil
}

func fillTemplate(template string, groups map[string]string) (string, error) {
	result := template
	for name, value := range groups {
		result = strings.ReplaceAll(result, "{"+name+"}", value)
	}
	if i := strings.IndexByte(result, '{'); i >= 0 {
		return "", fmt.Errorf("template %q references an unknown group", template)
	}
	return result, nil
}
