package sensor

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxIDLength is the longest accepted sensor ID, matching the registry column width.
const MaxIDLength = 50

// idPattern is the allow-list for sensor IDs. IDs become part of table
// names, so nothing outside it may reach SQL.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,50}$`)

// reservedID would map onto the registry table itself.
const reservedID = "ids"

// ValidateID checks a sensor ID against the allow-list.
//
// Returns ErrInvalidSensorID (wrapped with the offending value) for empty
// or over-long IDs, IDs with characters outside [A-Za-z0-9_], and the
// reserved ID "ids".
func ValidateID(id string) error {
	if !idPattern.MatchString(id) || strings.EqualFold(id, reservedID) {
		return fmt.Errorf("%w: %q", ErrInvalidSensorID, id)
	}
	return nil
}

// tableName returns the reading table for a validated ID.
func tableName(id string) string {
	return "sensor_" + id
}

// indexName returns the time index for a validated ID. It stays within
// PostgreSQL's 63 byte identifier limit for the longest IDs.
func indexName(id string) string {
	return "idx_" + id + "_time"
}
