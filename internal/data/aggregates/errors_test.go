package aggregates

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/nahuelRo/first-plug-api/internal/domain/aggregates"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want domainagg.ErrorCode
	}{
		{"validation", ValidationError("bad input"), domainagg.CodeValidation},
		{"conflict", ConflictError("stale"), domainagg.CodeConflict},
		{"not found", gorm.ErrRecordNotFound, domainagg.CodeNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, domainagg.CodeConflict},
		{"pg unique", &pgconn.PgError{Code: "23505"}, domainagg.CodeConflict},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, domainagg.CodeRetryable},
		{"sqlite unique", errors.New("UNIQUE constraint failed: asset.serial_number"), domainagg.CodeConflict},
		{"sqlite busy", errors.New("database is locked"), domainagg.CodeRetryable},
		{"unknown", errors.New("boom"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError("Inventory.Test", tc.in)
			if !domainagg.IsCode(got, tc.want) {
				t.Fatalf("code: want=%s got=%s (%v)", tc.want, domainagg.CodeOf(got), got)
			}
		})
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeDuplicateSerial, "op", "serial taken", nil)
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
	wrapped := errors.Join(errors.New("context"), in)
	if got := MapError("other", wrapped); !domainagg.IsCode(got, domainagg.CodeDuplicateSerial) {
		t.Fatalf("wrapped code: want=%s got=%s", domainagg.CodeDuplicateSerial, domainagg.CodeOf(got))
	}
}

func TestMapError_Nil(t *testing.T) {
	if err := MapError("op", nil); err != nil {
		t.Fatalf("nil: want=nil got=%v", err)
	}
}
