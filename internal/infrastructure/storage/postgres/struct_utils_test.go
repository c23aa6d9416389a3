package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
)

type MockCatalog struct {
	entity.BaseCatalog
	Name string `db:"name" json:"name"`
	Unit string `db:"unit" json:"unit"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[MockCatalog]()

	expectedCols := []string{
		"id", "deletion_mark", "version", "created_at", "updated_at", "name", "unit",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	cat := MockCatalog{
		BaseCatalog: entity.BaseCatalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				DeletionMark: true,
				Version:      5,
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name: "Test Name",
		Unit: "piece",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "Test Name", m["name"])
	assert.Equal(t, "piece", m["unit"])
}

func TestStructToMap_SkipsUntaggedFields(t *testing.T) {
	type withUntagged struct {
		Name   string `db:"name"`
		Hidden string `db:"-"`
		Plain  string
	}

	m := StructToMap(withUntagged{Name: "a", Hidden: "b", Plain: "c"})

	assert.Equal(t, "a", m["name"])
	assert.Len(t, m, 1)
}
