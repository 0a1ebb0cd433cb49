package repository

import (
	"fmt"
	"strings"
	"testing"

	"pricepredictor/internal/pricing"
)

func TestSchemaStatements(t *testing.T) {
	stmts := schemaStatements()
	if len(stmts) == 0 || !strings.Contains(stmts[0], "CREATE EXTENSION IF NOT EXISTS vector") {
		t.Fatalf("first statement should enable pgvector: %v", stmts)
	}

	table := stmts[1]
	want := fmt.Sprintf("vector(%d)", pricing.FeatureDimensions)
	if !strings.Contains(table, want) {
		t.Errorf("features column should be %s:\n%s", want, table)
	}

	for _, col := range strings.Split(predictionColumns, ",") {
		col = strings.TrimSpace(col)
		if !strings.Contains(table, col+" ") {
			t.Errorf("column %q missing from table definition", col)
		}
	}
}
