package migration

import (
	"testing"
	"time"
)

func TestParseAppliedAt(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	tests := []struct {
		name    string
		in      any
		wantErr bool
	}{
		{name: "time value", in: want.In(time.FixedZone("CEST", 2*3600))},
		{name: "sqlite text", in: "2024-05-06 07:08:09+00:00"},
		{name: "rfc3339", in: "2024-05-06T07:08:09Z"},
		{name: "mysql text", in: "2024-05-06 07:08:09"},
		{name: "bytes", in: []byte("2024-05-06 07:08:09")},
		{name: "go string form", in: "2024-05-06 07:08:09 +0000 UTC"},
		{name: "garbage", in: "yesterday", wantErr: true},
		{name: "null", in: nil, wantErr: true},
		{name: "wrong type", in: 42, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseAppliedAt(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAppliedAt(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(want) {
				t.Fatalf("parseAppliedAt(%v) = %v, want %v", tt.in, got, want)
			}
		})
	}
}

func TestLedgerDefinition(t *testing.T) {
	t.Parallel()

	def, err := ledger{table: "migrations"}.definition()
	if err != nil {
		t.Fatalf("definition() error = %v", err)
	}
	if def.PrimaryKey != "id" {
		t.Fatalf("PrimaryKey = %q, want id", def.PrimaryKey)
	}

	v, ok := def.Column(ColumnVersion)
	if !ok || v.Nullable || !v.Unique {
		t.Fatalf("version column = %+v, want NOT NULL UNIQUE", v)
	}
	a, ok := def.Column(ColumnAppliedAt)
	if !ok || a.Nullable {
		t.Fatalf("applied_at column = %+v, want NOT NULL", a)
	}
}
