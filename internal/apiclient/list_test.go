package apiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID string `json:"_id"`
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantIDs   []string
		wantTotal int
	}{
		{"bare array", `[{"_id":"a"},{"_id":"b"}]`, []string{"a", "b"}, 2},
		{"items envelope", `{"items":[{"_id":"a"}],"total":12}`, []string{"a"}, 12},
		{"meals envelope", `{"meals":[{"_id":"m1"},{"_id":"m2"}],"total":20}`, []string{"m1", "m2"}, 20},
		{"orders envelope without total", `{"orders":[{"_id":"o1"}]}`, []string{"o1"}, 1},
		{"requests envelope", `{"requests":[],"total":0}`, []string{}, 0},
		{"null", `null`, []string{}, 0},
		{"empty body", ``, []string{}, 0},
		{"unknown envelope", `{"ok":true}`, []string{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := DecodeList[item]([]byte(tt.raw))
			require.NoError(t, err)
			ids := make([]string, 0, len(list.Items))
			for _, it := range list.Items {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantTotal, list.Total)
		})
	}
}

func TestDecodeList_Malformed(t *testing.T) {
	_, err := DecodeList[item]([]byte(`{"meals":"nope"}`))
	assert.Error(t, err)
}
