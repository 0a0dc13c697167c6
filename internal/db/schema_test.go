package db

import (
	"strings"
	"testing"
)

func TestEnumDDL(t *testing.T) {
	got := enumDDL("coverage", "booking_status", []string{"pending", "it's"})

	if !strings.Contains(got, `CREATE TYPE "coverage"."booking_status" AS ENUM ('pending', 'it''s');`) {
		t.Errorf("unexpected DDL:\n%s", got)
	}
	if !strings.Contains(got, "duplicate_object") {
		t.Error("DDL should tolerate an existing type")
	}
}

func TestEnsureEnum_RequiresValues(t *testing.T) {
	if err := EnsureEnum(nil, "coverage", "empty"); err == nil {
		t.Fatal("expected error for an enum without values")
	}
}
