package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ledgerloom/statement-combiner/internal/flavour"
	"github.com/ledgerloom/statement-combiner/internal/models"
)

func loadTestFlavour(t *testing.T, yml string) *flavour.Input {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in", "csv", "test.yml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	fl, err := flavour.LoadInput(dir, "csv", "test")
	if err != nil {
		t.Fatalf("loading flavour: %v", err)
	}
	return fl
}

func writeStatement(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const bankFlavour = `
identifier: account_uid
locale: de_DE
lines:
  - type: match
    pattern: '"Konto";"(?P<account_uid>[A-Z0-9]+)"'
  - type: match
    pattern: '"Kontostand";"(?P<account_new_balance_amount>-?[\d.,]+)"'
  - type: csv
    dialect:
      delimiter: ';'
    map:
      - key: Buchungstag
        pattern: '(?P<transaction_booking_date>[\d.]+)'
      - key: Umsatz
        pattern: '(?P<transaction_amount>-?[\d.,]+) (?P<transaction_currency>\S+)'
`

func TestParseFile_MatchAndCSV(t *testing.T) {
	fl := loadTestFlavour(t, bankFlavour)
	path := writeStatement(t, `"Konto";"DE02120300000000202051"
"Kontostand";"110,00"

Buchungstag;Umsatz;Empfänger
05.01.2024;-20,00 EUR;REWE
06.01.2024;30,00 EUR;Arbeitgeber
`)

	statements, err := ParseFile(path, fl, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statements) != 1 {
		t.Fatalf("statements: got %d, want 1", len(statements))
	}

	st := statements[0]
	if st.AccountUID != "DE02120300000000202051" {
		t.Errorf("account uid: got %q", st.AccountUID)
	}
	if st.Fields.Str("account_new_balance_amount") != "110,00" {
		t.Errorf("new balance: got %q", st.Fields.Str("account_new_balance_amount"))
	}
	if len(st.Transactions) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(st.Transactions))
	}

	tx := st.Transactions[0]
	if tx.Str(models.KeyBookingDate) != "05.01.2024" {
		t.Errorf("booking date: got %q", tx.Str(models.KeyBookingDate))
	}
	if tx.Str(models.KeyAmount) != "-20,00" {
		t.Errorf("amount: got %q", tx.Str(models.KeyAmount))
	}
	if tx.Str(models.KeyCurrency) != "EUR" {
		t.Errorf("currency: got %q", tx.Str(models.KeyCurrency))
	}
	// The raw column survives next to the mapped fields.
	if tx.Str("Empfänger") != "REWE" {
		t.Errorf("raw column: got %q", tx.Str("Empfänger"))
	}
}

func TestParseFile_RuleThatDoesNotMatchIsSkipped(t *testing.T) {
	fl := loadTestFlavour(t, bankFlavour)
	// No balance line; the csv rule still finds the table.
	path := writeStatement(t, `"Konto";"DE02120300000000202051"
Buchungstag;Umsatz
05.01.2024;-20,00 EUR
`)

	statements, err := ParseFile(path, fl, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := statements[0]
	if st.Fields.Has("account_new_balance_amount") {
		t.Error("balance should be absent")
	}
	if len(st.Transactions) != 1 {
		t.Errorf("transactions: got %d, want 1", len(st.Transactions))
	}
}

func TestParseFile_MultipleAccounts(t *testing.T) {
	fl := loadTestFlavour(t, `
identifier: account_uid
lines:
  - type: match
    pattern: 'Konto (?P<account_uid>\S+)'
  - type: csv
    dialect:
      delimiter: ';'
  - type: match
    pattern: 'Konto (?P<account_uid>\S+)'
  - type: csv
    dialect:
      delimiter: ';'
`)
	path := writeStatement(t, `Konto FIRST
Datum;Betrag
05.01.2024;-20,00
Konto SECOND
Datum;Betrag
06.01.2024;30,00
07.01.2024;1,00
`)

	statements, err := ParseFile(path, fl, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statements) != 2 {
		t.Fatalf("statements: got %d, want 2", len(statements))
	}
	if statements[0].AccountUID != "FIRST" || len(statements[0].Transactions) != 1 {
		t.Errorf("first account: %q with %d transactions", statements[0].AccountUID, len(statements[0].Transactions))
	}
	if statements[1].AccountUID != "SECOND" || len(statements[1].Transactions) != 2 {
		t.Errorf("second account: %q with %d transactions", statements[1].AccountUID, len(statements[1].Transactions))
	}
}

func TestParseFile_NoIdentifier(t *testing.T) {
	fl := loadTestFlavour(t, `
identifier: account_uid
lines:
  - type: csv
    dialect:
      delimiter: ';'
`)
	path := writeStatement(t, "Datum;Betrag\n05.01.2024;-20,00\n")

	statements, err := ParseFile(path, fl, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if statements[0].AccountUID != models.NoAccountUID {
		t.Errorf("account uid: got %q, want %q", statements[0].AccountUID, models.NoAccountUID)
	}
}

func TestParseFile_ReverseAndIgnore(t *testing.T) {
	fl := loadTestFlavour(t, `
identifier: account_uid
lines:
  - type: csv
    dialect:
      delimiter: ';'
    reverse: true
    ignore:
      key: Status
      value: vorgemerkt
`)
	path := writeStatement(t, `Datum;Betrag;Status
07.01.2024;1,00;vorgemerkt
06.01.2024;30,00;gebucht
05.01.2024;-20,00;gebucht
`)

	statements, err := ParseFile(path, fl, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	txs := statements[0].Transactions
	if len(txs) != 2 {
		t.Fatalf("transactions: got %d, want 2 (pending row ignored)", len(txs))
	}
	// Newest-first input comes out oldest-first.
	if txs[0].Str("Datum") != "05.01.2024" || txs[1].Str("Datum") != "06.01.2024" {
		t.Errorf("order: got %q, %q", txs[0].Str("Datum"), txs[1].Str("Datum"))
	}
}

func TestParseFile_SkipMatchRule(t *testing.T) {
	fl := loadTestFlavour(t, `
identifier: account_uid
lines:
  - type: match
    pattern: 'Umsatzliste.*'
    skip: true
  - type: match
    pattern: 'Konto (?P<account_uid>\S+)'
`)
	path := writeStatement(t, "Umsatzliste vom 05.01.2024\nKonto DE1\n")

	statements, err := ParseFile(path, fl, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if statements[0].AccountUID != "DE1" {
		t.Errorf("account uid: got %q, want DE1", statements[0].AccountUID)
	}
}

func TestMapFields_ThenElse(t *testing.T) {
	fl := loadTestFlavour(t, `
identifier: account_uid
lines:
  - type: csv
    dialect:
      delimiter: ';'
    map:
      - key: Betrag
        pattern: '(?P<transaction_amount>-.*)'
        then:
          - key: Empfänger
            pattern: '(?P<transaction_receiver_name>.+)'
        else:
          - key: Auftraggeber
            pattern: '(?P<transaction_originator_name>.+)'
`)
	path := writeStatement(t, `Betrag;Empfänger;Auftraggeber
-20,00;REWE;me
30,00;me;Arbeitgeber
`)

	statements, err := ParseFile(path, fl, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	txs := statements[0].Transactions

	// Negative amount matches, so the then-branch names the receiver.
	if txs[0].Str(models.KeyReceiver) != "REWE" {
		t.Errorf("tx[0] receiver: got %q, want REWE", txs[0].Str(models.KeyReceiver))
	}
	if txs[0].Has(models.KeyOriginator) {
		t.Error("tx[0] should not have an originator")
	}

	// Positive amount falls into the else-branch.
	if txs[1].Str(models.KeyOriginator) != "Arbeitgeber" {
		t.Errorf("tx[1] originator: got %q, want Arbeitgeber", txs[1].Str(models.KeyOriginator))
	}
	if txs[1].Has(models.KeyAmount) {
		t.Error("tx[1] amount pattern should not have matched")
	}
}

func TestParseFile_FirstPatternWins(t *testing.T) {
	fl := loadTestFlavour(t, `
identifier: account_uid
lines:
  - type: csv
    dialect:
      delimiter: ';'
    map:
      - key: Art
        pattern:
          - '(?P<transaction_payment_type>Lastschrift)'
          - '(?P<transaction_details>.*)'
`)
	path := writeStatement(t, "Art\nLastschrift\nGutschrift\n")

	statements, err := ParseFile(path, fl, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	txs := statements[0].Transactions
	if txs[0].Str(models.KeyPaymentType) != "Lastschrift" {
		t.Errorf("tx[0]: got %q", txs[0].Str(models.KeyPaymentType))
	}
	if txs[0].Has(models.KeyDetails) {
		t.Error("tx[0]: fallback pattern should not run after a match")
	}
	if txs[1].Str(models.KeyDetails) != "Gutschrift" {
		t.Errorf("tx[1]: got %q", txs[1].Str(models.KeyDetails))
	}
}
