// Package stash keeps the last ended session report of every user until it
// is saved. Entries are stored as JSON under "sessionReport:<user id>"; an
// entry that cannot be decoded is reported as missing.
package stash

import (
	"encoding/json"
	"fmt"

	"github.com/msomdec/healthyu/internal/domain"
)

// KeyPrefix is the key namespace of stashed reports.
const KeyPrefix = "sessionReport"

// Key returns the stash key of a user's report.
func Key(userID int64) string {
	return fmt.Sprintf("%s:%d", KeyPrefix, userID)
}

func encode(r domain.SessionReport) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*domain.SessionReport, error) {
	var r domain.SessionReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: unreadable report: %v", domain.ErrNotFound, err)
	}
	return &r, nil
}
