// Package services holds the business logic behind the HTTP controllers.
//
// Services defined in this package:
//   - AuthService: registration, login and subject lookups for the auth middleware
//   - WalletService: top-ups, balances and ledger history
//   - PrinterService: the printer registry and printer auto-selection
//   - JobService: the print job lifecycle
//   - UserService: account listings and preferences
//   - SettingsService: pricing and public settings
//   - MaintenanceService: retention cleanup, printer health and low-balance sweeps
package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/yigit/printq/internal/pkg/logger"
)

// Clock returns the current time; tests replace it
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// PickupPINDigits is the length of the code a student types at the printer
const PickupPINDigits = 6

var pinUpperBound = big.NewInt(1_000_000)

// generatePickupPIN returns a uniformly random zero-padded 6 digit code
func generatePickupPIN() (string, error) {
	n, err := rand.Int(rand.Reader, pinUpperBound)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read randomness for pickup PIN")
		return "", fmt.Errorf("failed to generate pickup PIN: %w", err)
	}
	return fmt.Sprintf("%0*d", PickupPINDigits, n.Int64()), nil
}
