package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/odyssey-journals/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-journals/internal/journal"
	"github.com/odyssey-erp/odyssey-journals/internal/money"
)

// Exit codes of the validate command.
const (
	ExitOK      = 0
	ExitIOError = 1
	ExitInvalid = 10
)

// ValidateOptions defines available flags for the validate command.
type ValidateOptions struct {
	Path       string
	JSONOutput bool
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
}

// ValidateSummary describes the JSON response for validate.
type ValidateSummary struct {
	OK      bool                  `json:"ok"`
	Balance journal.BalanceResult `json:"balance"`
	Errors  []string              `json:"errors,omitempty"`
}

// ValidateCommand checks a journal entry file offline and prints the
// outcome. "-" reads standard input. Files ending in .yaml or .yml are read
// as YAML, everything else as JSON.
func ValidateCommand(opts ValidateOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	raw, err := readSource(opts)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "validate: %v\n", err)
		return ExitIOError
	}
	req, err := decodeEntry(opts.Path, raw)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "validate: %v\n", err)
		if errors.Is(err, money.ErrInvalidAmount) {
			return ExitInvalid
		}
		return ExitIOError
	}

	summary := ValidateSummary{}
	if _, err := time.Parse(journals.DateLayout, req.EntryDate); err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("entryDate: expected YYYY-MM-DD, got %q", req.EntryDate))
	}
	bal, err := journal.Preview(req.Input())
	summary.Balance = bal
	if err != nil {
		var ve *journal.ValidationError
		if errors.As(err, &ve) {
			for _, e := range ve.Errors {
				summary.Errors = append(summary.Errors, e.Error())
			}
		} else {
			summary.Errors = append(summary.Errors, err.Error())
		}
	}
	if err := bal.Err(); err != nil {
		summary.Errors = append(summary.Errors, err.Error())
	}
	summary.OK = len(summary.Errors) == 0

	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "validate: encode json: %v\n", err)
			return ExitIOError
		}
	} else {
		renderValidateHuman(opts.Stdout, summary)
	}
	if !summary.OK {
		return ExitInvalid
	}
	return ExitOK
}

func readSource(opts ValidateOptions) ([]byte, error) {
	if opts.Path == "" {
		return nil, errors.New("a file path or - is required")
	}
	if opts.Path == "-" {
		return io.ReadAll(opts.Stdin)
	}
	return os.ReadFile(opts.Path)
}

// decodeEntry accepts the HTTP request body shape. YAML input is converted
// to JSON first so amounts follow the same parsing rules.
func decodeEntry(path string, raw []byte) (journals.CreateRequest, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return journals.CreateRequest{}, fmt.Errorf("parse yaml: %w", err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return journals.CreateRequest{}, fmt.Errorf("convert yaml: %w", err)
		}
		raw = converted
	}
	var req journals.CreateRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return journals.CreateRequest{}, fmt.Errorf("parse entry: %w", err)
	}
	return req, nil
}

func renderValidateHuman(w io.Writer, summary ValidateSummary) {
	bal := summary.Balance
	_, _ = fmt.Fprintf(w, "lines:   %d\n", bal.LineCount)
	_, _ = fmt.Fprintf(w, "debits:  %s\n", money.Display(bal.TotalDebits, bal.Currency))
	_, _ = fmt.Fprintf(w, "credits: %s\n", money.Display(bal.TotalCredits, bal.Currency))
	_, _ = fmt.Fprintf(w, "diff:    %s\n", money.Display(bal.Difference, bal.Currency))
	if summary.OK {
		_, _ = fmt.Fprintln(w, "OK: entry is balanced and valid")
		return
	}
	_, _ = fmt.Fprintln(w, "INVALID:")
	for _, msg := range summary.Errors {
		_, _ = fmt.Fprintf(w, "  - %s\n", msg)
	}
}
