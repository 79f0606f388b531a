package services

import (
	"fmt"
	"time"
)

// GenerateLotNumber formats LOT-YYYYMM-NNN where NNN is the next prep id.
func GenerateLotNumber(now time.Time, nextID uint) string {
	return fmt.Sprintf("LOT-%04d%02d-%03d", now.Year(), int(now.Month()), nextID)
}
