package postgres

import (
	"regexp"
	"strings"
	"testing"
)

// Coordinate presence is enforced by the submission workflow, not the
// database, so the journeys columns must stay nullable.
func TestSchemaJourneyCoordinatesNullable(t *testing.T) {
	var journeysDDL string
	for _, stmt := range schemaStatements {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS journeys") {
			journeysDDL = stmt
			break
		}
	}
	if journeysDDL == "" {
		t.Fatalf("journeys DDL not found")
	}

	for _, column := range []string{"latitude", "longitude"} {
		pattern := regexp.MustCompile(column + `\s+DOUBLE PRECISION\s+NOT NULL`)
		if pattern.MatchString(journeysDDL) {
			t.Fatalf("column %s must be nullable", column)
		}
		if !strings.Contains(journeysDDL, column+" DOUBLE PRECISION") {
			t.Fatalf("column %s missing from journeys DDL", column)
		}
	}
}

func TestSchemaStatementsAreIdempotent(t *testing.T) {
	for _, stmt := range schemaStatements {
		if !strings.Contains(stmt, "IF NOT EXISTS") {
			t.Fatalf("statement is not idempotent: %s", strings.SplitN(strings.TrimSpace(stmt), "\n", 2)[0])
		}
	}
}
