package journal

// Preview checks a candidate entry without touching collaborators. The
// balance is computed even when validation fails so forms can show running
// totals; the error aggregates every header and line failure.
func Preview(in CreateInput) (BalanceResult, error) {
	header := normaliseHeader(in.Header)
	errs := ValidateHeader(header)

	lines := make([]Line, len(in.Lines))
	for i, line := range in.Lines {
		line.LineNumber = i + 1
		normalised, lineErrs := checkLine(i, line, header.Currency)
		errs = append(errs, lineErrs...)
		lines[i] = normalised
	}
	return CheckBalance(lines), validationErr(errs)
}
