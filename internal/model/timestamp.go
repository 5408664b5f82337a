package model

import "time"

// LedgerTimeLayout is the fixed local-time format every row's created column
// uses: MM-DD-YYYY hh:mm:ss AM/PM. The engine never reasons about timezones;
// the string is stored and compared as parsed wall-clock time.
//
// Note the format does not sort lexicographically, so any ordering by created
// must parse first (see repository reindex helpers).
const LedgerTimeLayout = "01-02-2006 03:04:05 PM"

// FormatLedgerTime renders t in the ledger's timestamp format.
func FormatLedgerTime(t time.Time) string {
	return t.Format(LedgerTimeLayout)
}

// ParseLedgerTime parses a created column value.
func ParseLedgerTime(s string) (time.Time, error) {
	return time.Parse(LedgerTimeLayout, s)
}
