package types

import (
	"encoding/json"
	"testing"

	"github.com/shabani2/salemanagement-api/internal/core/id"
)

type refTarget struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

func TestRefMarshal_Unresolved(t *testing.T) {
	entityID := id.New()
	ref := RefID[refTarget](entityID)

	data, err := json.Marshal(ref)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("unresolved ref must render as an id string, got %s", data)
	}
	if s != entityID.String() {
		t.Errorf("id = %q, want %q", s, entityID.String())
	}
}

func TestRefMarshal_Populated(t *testing.T) {
	entityID := id.New()
	ref := RefOf(entityID, &refTarget{Name: "Coca-Cola 50cl", Unit: "bottle"})

	data, err := json.Marshal(ref)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("populated ref must render as an object, got %s", data)
	}
	if obj["id"] != entityID.String() {
		t.Errorf("id = %v, want %v", obj["id"], entityID)
	}
	if obj["name"] != "Coca-Cola 50cl" {
		t.Errorf("name = %v, want Coca-Cola 50cl", obj["name"])
	}
	if obj["unit"] != "bottle" {
		t.Errorf("unit = %v, want bottle", obj["unit"])
	}
}

func TestRefUnmarshal_RoundTrip(t *testing.T) {
	entityID := id.New()

	var bare Ref[refTarget]
	if err := json.Unmarshal([]byte(`"`+entityID.String()+`"`), &bare); err != nil {
		t.Fatalf("Unmarshal(id string) error: %v", err)
	}
	if bare.ID != entityID || bare.IsPopulated() {
		t.Errorf("bare ref = %+v, want unresolved %v", bare, entityID)
	}

	populated := RefOf(entityID, &refTarget{Name: "Sucre Kwilu 1kg", Unit: "kg"})
	data, err := json.Marshal(populated)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var back Ref[refTarget]
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal(object) error: %v", err)
	}
	if back.ID != entityID {
		t.Errorf("id = %v, want %v", back.ID, entityID)
	}
	if !back.IsPopulated() || back.Value.Name != "Sucre Kwilu 1kg" {
		t.Errorf("value = %+v, want populated entity", back.Value)
	}
}
