package table

import (
	"encoding/json"
	"testing"
)

func TestNormalize_shapes(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantItems int
		wantTotal int
	}{
		{
			name:      "bare array",
			raw:       `[{"id":1},{"id":2}]`,
			wantItems: 2,
			wantTotal: 2,
		},
		{
			name:      "data array",
			raw:       `{"data":[{"id":1}],"total":42}`,
			wantItems: 1,
			wantTotal: 42,
		},
		{
			name:      "nested submissions",
			raw:       `{"data":{"submissions":[{"id":1},{"id":2}],"total":20}}`,
			wantItems: 2,
			wantTotal: 20,
		},
		{
			name:      "nested payments",
			raw:       `{"data":{"payments":[{"id":1}],"count":7}}`,
			wantItems: 1,
			wantTotal: 7,
		},
		{
			name:      "items array",
			raw:       `{"items":[{"id":1},{"id":2},{"id":3}],"totalCount":30}`,
			wantItems: 3,
			wantTotal: 30,
		},
		{
			name:      "messages array",
			raw:       `{"messages":[{"id":1}]}`,
			wantItems: 1,
			wantTotal: 1,
		},
		{
			name:      "empty bare array",
			raw:       `[]`,
			wantItems: 0,
			wantTotal: 0,
		},
		{
			name:      "unrecognized object",
			raw:       `{"unexpected":true}`,
			wantItems: 0,
			wantTotal: 0,
		},
		{
			name:      "scalar",
			raw:       `42`,
			wantItems: 0,
			wantTotal: 0,
		},
		{
			name:      "malformed",
			raw:       `{"data":`,
			wantItems: 0,
			wantTotal: 0,
		},
		{
			name:      "empty input",
			raw:       ``,
			wantItems: 0,
			wantTotal: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(json.RawMessage(tt.raw))
			if res.Items == nil {
				t.Fatal("Items is nil, want an empty slice at minimum")
			}
			if len(res.Items) != tt.wantItems {
				t.Errorf("len(Items) = %d, want %d", len(res.Items), tt.wantItems)
			}
			if res.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", res.Total, tt.wantTotal)
			}
		})
	}
}

func TestNormalize_priorityOrder(t *testing.T) {
	// "data" wins over "items" over "messages" when several are present
	raw := json.RawMessage(`{"data":[{"id":"d"}],"items":[{"id":"i1"},{"id":"i2"}],"messages":[]}`)
	res := Normalize(raw)
	if len(res.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(res.Items))
	}
	var item struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(res.Items[0], &item); err != nil {
		t.Fatal(err)
	}
	if item.ID != "d" {
		t.Errorf(`picked the %q collection, want "data"`, item.ID)
	}
}

func TestNormalize_totalResolution(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"outer total wins over nested", `{"data":{"items":[{"a":1}],"total":5},"total":50}`, 50},
		{"outer totalCount", `{"data":[{"a":1}],"totalCount":12}`, 12},
		{"outer count", `{"data":[{"a":1}],"count":9}`, 9},
		{"nested total when outer absent", `{"data":{"records":[{"a":1}],"totalCount":8}}`, 8},
		{"falls back to item count", `{"data":[{"a":1},{"a":2}]}`, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(json.RawMessage(tt.raw)).Total; got != tt.want {
				t.Errorf("Total = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalize_preservesItemOrder(t *testing.T) {
	raw := json.RawMessage(`{"data":[{"id":3},{"id":1},{"id":2}]}`)
	res := Normalize(raw)

	var ids []int
	for _, item := range res.Items {
		var it struct {
			ID int `json:"id"`
		}
		if err := json.Unmarshal(item, &it); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, it.ID)
	}
	if ids[0] != 3 || ids[1] != 1 || ids[2] != 2 {
		t.Errorf("items reordered: %v", ids)
	}
}
