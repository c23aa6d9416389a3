package catalog_repo

import (
	"testing"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	"github.com/shabani2/salemanagement-api/internal/domain"
)

func testRepo() *BaseCatalogRepo[any] {
	return NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "name", "created_at"}, func() any { return nil })
}

func TestListSelect_SQL(t *testing.T) {
	repo := testRepo()

	tests := []struct {
		name     string
		filter   domain.ListFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "default excludes deleted",
			filter:   domain.ListFilter{},
			wantSQL:  "SELECT id, name, created_at FROM test_table WHERE deletion_mark = $1",
			wantArgs: []any{false},
		},
		{
			name:     "include deleted",
			filter:   domain.ListFilter{IncludeDeleted: true},
			wantSQL:  "SELECT id, name, created_at FROM test_table",
			wantArgs: nil,
		},
		{
			name:     "search",
			filter:   domain.ListFilter{Search: "cola"},
			wantSQL:  "SELECT id, name, created_at FROM test_table WHERE deletion_mark = $1 AND name ILIKE $2",
			wantArgs: []any{false, "%cola%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.listSelect(tt.filter).ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}

			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("Args count mismatch\nwant: %d\ngot:  %d", len(tt.wantArgs), len(args))
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("Arg %d mismatch\nwant: %v\ngot:  %v", i, tt.wantArgs[i], args[i])
				}
			}
		})
	}
}

func TestParseOrderBy(t *testing.T) {
	repo := testRepo()

	tests := []struct {
		name    string
		orderBy string
		want    string
		wantErr bool
	}{
		{name: "empty defaults to created_at", orderBy: "", want: "created_at DESC"},
		{name: "column only", orderBy: "name", want: "name ASC"},
		{name: "explicit direction", orderBy: "name desc", want: "name DESC"},
		{name: "unknown column rejected", orderBy: "password", wantErr: true},
		{name: "injection rejected", orderBy: "name; DROP TABLE test_table", wantErr: true},
		{name: "bad direction rejected", orderBy: "name sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.orderBy)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				appErr, ok := apperror.AsAppError(err)
				if !ok || appErr.Code != apperror.CodeValidation {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOrderBy failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}
