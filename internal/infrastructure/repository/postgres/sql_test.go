package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("select season: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(fmt.Errorf("boom")) {
		t.Fatalf("expected unrelated error to be ignored")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert season: %w", &pq.Error{Code: "23505", Constraint: "seasons_one_active_per_competition"})

	t.Run("matches any constraint", func(t *testing.T) {
		if !isUniqueViolation(err, "") {
			t.Fatalf("expected unique violation")
		}
	})

	t.Run("matches named constraint", func(t *testing.T) {
		if !isUniqueViolation(err, "seasons_one_active_per_competition") {
			t.Fatalf("expected unique violation on named constraint")
		}
	})

	t.Run("ignores other constraint", func(t *testing.T) {
		if isUniqueViolation(err, "teams_external_id_key") {
			t.Fatalf("expected false for another constraint")
		}
	})

	t.Run("ignores other codes", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "23503"}, "") {
			t.Fatalf("expected false for foreign key violation")
		}
	})
}

func TestNullableConversions(t *testing.T) {
	if got := nullInt64ToIntPtr(sql.NullInt64{}); got != nil {
		t.Fatalf("expected nil for null int, got %d", *got)
	}
	score := 3
	if got := nullInt64ToIntPtr(intPtrToNull(&score)); got == nil || *got != 3 {
		t.Fatalf("expected round trip of 3, got %v", got)
	}

	if got := nullTimeToTimePtr(timePtrToNull(nil)); got != nil {
		t.Fatalf("expected nil time, got %v", got)
	}
	at := time.Date(2024, 5, 1, 18, 30, 0, 0, time.FixedZone("X", 3*3600))
	got := nullTimeToTimePtr(timePtrToNull(&at))
	if got == nil || !got.Equal(at) || got.Location() != time.UTC {
		t.Fatalf("expected UTC copy of %s, got %v", at, got)
	}
}
