package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const balancedJSON = `{
	"journalNumber": "JE-0001",
	"entryDate": "2026-03-14",
	"fiscalPeriodId": "2026-03",
	"currency": "USD",
	"lines": [
		{"ledgerAccountId": "5000", "debitAmount": "100.00"},
		{"ledgerAccountId": "2000", "creditAmount": "60.00"},
		{"ledgerAccountId": "2000", "creditAmount": "40.00"}
	]
}`

const balancedYAML = `journalNumber: JE-0002
entryDate: "2026-03-14"
fiscalPeriodId: "2026-03"
currency: EUR
lines:
  - ledgerAccountId: "1100"
    debitAmount: "12.50"
  - ledgerAccountId: "4000"
    creditAmount: 12.5
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestValidateCommandBalanced(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	code := ValidateCommand(ValidateOptions{Path: writeFile(t, "entry.json", balancedJSON), Stdout: stdout, Stderr: stderr})
	require.Equal(t, ExitOK, code, stderr.String())
	require.Contains(t, stdout.String(), "OK: entry is balanced and valid")
	require.Empty(t, stderr.String())
}

func TestValidateCommandYAML(t *testing.T) {
	stdout := new(bytes.Buffer)
	code := ValidateCommand(ValidateOptions{Path: writeFile(t, "entry.yaml", balancedYAML), JSONOutput: true, Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Equal(t, ExitOK, code, stdout.String())

	var summary ValidateSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.True(t, summary.OK)
	require.Equal(t, "EUR", summary.Balance.Currency)
	require.Equal(t, "12.5", summary.Balance.TotalDebits.Format())
}

func TestValidateCommandUnbalanced(t *testing.T) {
	body := strings.Replace(balancedJSON, `"40.00"`, `"39.99"`, 1)
	stdout := new(bytes.Buffer)
	code := ValidateCommand(ValidateOptions{Path: writeFile(t, "entry.json", body), JSONOutput: true, Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Equal(t, ExitInvalid, code)

	var summary ValidateSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.False(t, summary.OK)
	require.Equal(t, "0.01", summary.Balance.Difference.Format())
	require.Len(t, summary.Errors, 1)
}

func TestValidateCommandReportsLineFailures(t *testing.T) {
	body := `{"journalNumber":"JE-3","entryDate":"03/14/2026","fiscalPeriodId":"2026-03","currency":"USD",
	"lines":[{"ledgerAccountId":"","debitAmount":"5"},{"ledgerAccountId":"2000"}]}`
	stdout := new(bytes.Buffer)
	code := ValidateCommand(ValidateOptions{Path: writeFile(t, "entry.json", body), Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Equal(t, ExitInvalid, code)
	out := stdout.String()
	require.Contains(t, out, "INVALID:")
	require.Contains(t, out, "entryDate")
	require.Contains(t, out, "line 1")
	require.Contains(t, out, "line 2")
}

func TestValidateCommandNegativeAmount(t *testing.T) {
	body := strings.Replace(balancedJSON, `"100.00"`, `"-100.00"`, 1)
	stderr := new(bytes.Buffer)
	code := ValidateCommand(ValidateOptions{Path: writeFile(t, "entry.json", body), Stdout: new(bytes.Buffer), Stderr: stderr})
	require.Equal(t, ExitInvalid, code)
	require.Contains(t, stderr.String(), "negative")
}

func TestValidateCommandUnreadable(t *testing.T) {
	stderr := new(bytes.Buffer)
	code := ValidateCommand(ValidateOptions{Path: filepath.Join(t.TempDir(), "missing.json"), Stdout: new(bytes.Buffer), Stderr: stderr})
	require.Equal(t, ExitIOError, code)
	require.Contains(t, stderr.String(), "validate:")
}

func TestRootValidateFromStdin(t *testing.T) {
	stdout := new(bytes.Buffer)
	root := NewRootCommand(strings.NewReader(balancedJSON), stdout, new(bytes.Buffer))
	root.SetArgs([]string{"validate", "-"})
	require.NoError(t, root.Execute())
	require.Contains(t, stdout.String(), "OK")

	root = NewRootCommand(strings.NewReader(strings.Replace(balancedJSON, `"40.00"`, `"1"`, 1)), new(bytes.Buffer), new(bytes.Buffer))
	root.SetArgs([]string{"validate", "-"})
	err := root.Execute()
	var exit *ExitError
	require.True(t, errors.As(err, &exit))
	require.Equal(t, ExitInvalid, exit.Code)
}
