package shared

import "fmt"

// PeriodLockKey names the critical section guarding a fiscal period status change.
func PeriodLockKey(orgID, periodID string) string {
	return fmt.Sprintf("finance:%s:period:%s:lock", orgID, periodID)
}

// LedgerVersionKey names the cache version counter of a period's ledger balances.
func LedgerVersionKey(orgID, periodID string) string {
	return fmt.Sprintf("ledger:%s:period:%s:version", orgID, periodID)
}
