package core

import (
	"encoding/json"
	"testing"
)

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		kind CategoryKind
		name string
	}{
		{"Food", CategoryStandard, "Food"},
		{" Travel ", CategoryStandard, "Travel"},
		{"food", CategoryCustom, "food"}, // case matters for standard names
		{"Subscriptions", CategoryCustom, "Subscriptions"},
		{"total", CategoryCustom, "total"},
	}
	for i, tc := range cases {
		got := ParseCategory(tc.in)
		if got.Kind != tc.kind || got.Name != tc.name {
			t.Fatalf("case %d: got kind=%d name=%q", i, got.Kind, got.Name)
		}
	}
}

func TestCategoryMatches(t *testing.T) {
	std := ParseCategory("Food")
	custom := Category{Kind: CategoryCustom, Name: "Food"}
	if !std.Matches(custom) {
		t.Fatalf("same name should match regardless of kind")
	}
	if std.Matches(ParseCategory("Travel")) {
		t.Fatalf("different names should not match")
	}
}

func TestCategoryIsTotal(t *testing.T) {
	if !ParseCategory("total").IsTotal() {
		t.Fatalf("total marker not recognized")
	}
	if ParseCategory("Food").IsTotal() {
		t.Fatalf("Food is not the total marker")
	}
}

func TestCategoryJSON(t *testing.T) {
	b, err := json.Marshal(ParseCategory("Food"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"Food"` {
		t.Fatalf("category should marshal as bare string, got %s", b)
	}

	var c Category
	if err := json.Unmarshal([]byte(`"Gadgets"`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Kind != CategoryCustom || c.Name != "Gadgets" {
		t.Fatalf("expected custom Gadgets, got %+v", c)
	}
}
