package ledger

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ledgerloom/statement-combiner/internal/models"
)

// CollisionError reports two transactions resolving to the same UID, which
// means the intra-day order assumption broke for this account.
type CollisionError struct {
	UID  int64
	File string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("transaction uid %d assigned twice while merging %s", e.UID, e.File)
}

// Merge combines the cleaned statements of one account into a single ledger.
// Transactions are tagged with their UID as they are inserted. Statements
// without transactions are skipped; a recomputed UID that is already present
// is a hard error rather than a silent overwrite.
func Merge(statements []*models.Statement, log zerolog.Logger) (models.Ledger, error) {
	combined := models.Ledger{}

	for _, st := range statements {
		if len(st.Transactions) == 0 {
			continue
		}
		log.Info().
			Str("file", filepath.Base(st.File)).
			Int("transactions", len(st.Transactions)).
			Msg("combining statement file")

		assigner := &UIDAssigner{}
		for i, tx := range st.Transactions {
			date, ok := tx.Date(models.KeyDate)
			if !ok {
				return nil, fmt.Errorf("transaction %d of %s has no date", i+1, filepath.Base(st.File))
			}
			uid := assigner.Next(date)
			if _, exists := combined[uid]; exists {
				return nil, &CollisionError{UID: uid, File: filepath.Base(st.File)}
			}
			tx[models.KeyUID] = uid
			combined[uid] = tx
		}
	}

	return combined, nil
}
