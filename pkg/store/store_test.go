package store_test

import (
	"testing"

	"github.com/eufgis/fgrdb/pkg/store"
	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		msg   string
		doc   map[string]any
		patch map[string]any
		want  map[string]any
	}{
		{
			msg:   "replace scalar",
			doc:   map[string]any{"a": 1.0, "b": "x"},
			patch: map[string]any{"a": 2.0},
			want:  map[string]any{"a": 2.0, "b": "x"},
		},
		{
			msg:   "null removes",
			doc:   map[string]any{"a": 1.0, "b": "x"},
			patch: map[string]any{"b": nil},
			want:  map[string]any{"a": 1.0},
		},
		{
			msg: "nested objects",
			doc: map[string]any{"_title": map[string]any{
				"iso_639_3_eng": "Beech", "iso_639_3_ita": "Faggio",
			}},
			patch: map[string]any{"_title": map[string]any{
				"iso_639_3_eng": "European beech", "iso_639_3_ita": nil,
			}},
			want: map[string]any{"_title": map[string]any{
				"iso_639_3_eng": "European beech",
			}},
		},
		{
			msg:   "lists are replaced",
			doc:   map[string]any{"_tag": []any{"a", "b"}},
			patch: map[string]any{"_tag": []any{"c"}},
			want:  map[string]any{"_tag": []any{"c"}},
		},
		{
			msg:   "object over scalar",
			doc:   map[string]any{"a": "x"},
			patch: map[string]any{"a": map[string]any{"b": 1.0, "c": nil}},
			want:  map[string]any{"a": map[string]any{"b": 1.0}},
		},
		{
			msg:   "nil doc",
			patch: map[string]any{"a": 1.0},
			want:  map[string]any{"a": 1.0},
		},
	}

	for _, v := range tests {
		res := store.Merge(v.doc, v.patch)
		assert.Equal(t, v.want, res, v.msg)
	}
}
