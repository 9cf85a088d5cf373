package filter_test

import (
	"testing"

	"github.com/eufgis/fgrdb/pkg/errcode"
	"github.com/eufgis/fgrdb/pkg/filter"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_SkipsUnknownAndEmpty(t *testing.T) {
	tests := []struct {
		msg    string
		params map[string]any
	}{
		{"nil", nil},
		{"unknown", map[string]any{"colour": "red"}},
		{"empty string", map[string]any{"species": "  "}},
		{"empty list", map[string]any{"chr_tree_code": []any{}}},
		{"null", map[string]any{"std_date": nil}},
		{"empty selection", map[string]any{
			"std_dataset_id": []any{},
		}},
		{"punctuation only", map[string]any{"species": "--"}},
		{"wrong shape", map[string]any{"gcu_id_number": 12.0}},
		{"range without bounds", map[string]any{
			"std_date": map[string]any{"include_start": true},
		}},
	}

	for _, v := range tests {
		res := filter.Compile(filter.DataSchema, v.params)
		assert.Empty(t, res, v.msg)
	}
}

func TestCompile_Dataset(t *testing.T) {
	params := map[string]any{
		"_key":        []any{"a", "b"},
		"std_dataset": "FAG%",
		"_title":      "Beech forests",
		"_classes":    map[string]any{"items": []any{"_class_quantity"}, "doAll": true},
		"_tag":        map[string]any{"items": []any{"t1", "t2"}},
		"_domain":     map[string]any{"items": []any{}},
		"count":       map[string]any{"start": 10.0},
		"std_date": map[string]any{
			"start": "2000", "end": "2020", "include_end": false,
		},
		"not_a_field": "x",
	}

	res := filter.Compile(filter.DatasetSchema, params)
	require.Len(t, res, 7)

	// sorted by parameter name
	assert.Equal(t, filter.KindAll, res[0].Kind)
	assert.Equal(t, "_classes", res[0].Field)

	assert.Equal(t, filter.In("_key", "a", "b"), res[1])

	assert.Equal(t, filter.KindAny, res[2].Kind)
	assert.Equal(t, "_tag", res[2].Field)
	assert.Equal(t, []string{"t1", "t2"}, res[2].Values)

	assert.Equal(t, filter.KindText, res[3].Kind)
	assert.Equal(t, []string{"beech", "forests"}, res[3].Tokens)

	assert.Equal(t, filter.KindRange, res[4].Kind)
	assert.Equal(t, "count", res[4].Field)
	assert.Equal(t, 10.0, res[4].Lower.Value)
	assert.Nil(t, res[4].Upper)

	assert.Equal(t, "std_dataset", res[5].Field)
	assert.Equal(t, "FAG%", res[5].Pattern)

	dates := res[6]
	assert.Equal(t, "std_date_start", dates.Field)
	assert.Equal(t, "std_date_end", dates.UpperField)
	assert.True(t, dates.Lower.Inclusive)
	assert.False(t, dates.Upper.Inclusive)
}

func TestCompile_Language(t *testing.T) {
	c := filter.New(filter.DatasetSchema, filter.OptLanguage("iso_639_3_eng"))
	res := c.Compile(map[string]any{"_description": "Fagus"})
	require.Len(t, res, 1)
	assert.Equal(t, "iso_639_3_eng", res[0].Language)
}

func TestRange_Inclusivity(t *testing.T) {
	tests := []struct {
		msg        string
		incl, incu bool
		want       []string
	}{
		{"both inclusive", true, true, []string{"2000", "2010", "2020"}},
		{"start only", true, false, []string{"2000", "2010"}},
		{"end only", false, true, []string{"2010", "2020"}},
		{"exclusive", false, false, []string{"2010"}},
	}

	dates := []string{"1999", "2000", "2010", "2020", "2021"}
	for _, v := range tests {
		preds := filter.Compile(filter.DataSchema, map[string]any{
			"std_date": map[string]any{
				"start":         "2000",
				"end":           "2020",
				"include_start": v.incl,
				"include_end":   v.incu,
			},
		})
		require.Len(t, preds, 1, v.msg)

		var got []string
		for _, d := range dates {
			if preds[0].Match(map[string]any{"std_date": d}) {
				got = append(got, d)
			}
		}
		assert.Equal(t, v.want, got, v.msg)
	}
}

func TestRange_Aliases(t *testing.T) {
	tests := []struct {
		msg   string
		value map[string]any
		lower any
		upper any
	}{
		{"min max", map[string]any{"min": 10.0, "max": 20.0}, 10.0, 20.0},
		{"min only", map[string]any{"min": 10.0}, 10.0, nil},
		{"start wins", map[string]any{"start": 5.0, "min": 10.0}, 5.0, nil},
	}

	for _, v := range tests {
		params := map[string]any{"count": v.value}
		require.NoError(t, filter.Validate(filter.DatasetSchema, params), v.msg)
		preds := filter.Compile(filter.DatasetSchema, params)
		require.Len(t, preds, 1, v.msg)
		assert.Equal(t, v.lower, preds[0].Lower.Value, v.msg)
		if v.upper == nil {
			assert.Nil(t, preds[0].Upper, v.msg)
			continue
		}
		assert.Equal(t, v.upper, preds[0].Upper.Value, v.msg)
	}

	params := map[string]any{
		"std_date": map[string]any{
			"std_date_start": "2000",
			"std_date_end":   "2020",
			"include_end":    false,
		},
	}
	require.NoError(t, filter.Validate(filter.DataSchema, params))
	preds := filter.Compile(filter.DataSchema, params)
	require.Len(t, preds, 1)
	assert.True(t, preds[0].Match(map[string]any{"std_date": "2000"}))
	assert.False(t, preds[0].Match(map[string]any{"std_date": "2020"}))
}

func TestRange_Numeric(t *testing.T) {
	lower := &filter.Bound{Value: 10.0, Inclusive: false}
	upper := &filter.Bound{Value: 20.0, Inclusive: true}
	p := filter.InRange("count", lower, upper)

	assert.False(t, p.Match(map[string]any{"count": 10.0}))
	assert.True(t, p.Match(map[string]any{"count": 15.0}))
	assert.True(t, p.Match(map[string]any{"count": 20.0}))
	assert.True(t, p.Match(map[string]any{"count": "20"}))
	assert.False(t, p.Match(map[string]any{"count": 21.0}))
	assert.False(t, p.Match(map[string]any{}))
}

func TestSelect(t *testing.T) {
	docs := map[string]map[string]any{
		"ab":  {"_tag": []any{"a", "b"}},
		"a":   {"_tag": []any{"a"}},
		"c":   {"_tag": []any{"c"}},
		"abc": {"_tag": []any{"a", "b", "c"}},
		"non": {},
	}
	tests := []struct {
		msg   string
		doAll bool
		items []any
		want  []string
	}{
		{"all", true, []any{"a", "b"}, []string{"ab", "abc"}},
		{"any", false, []any{"b", "c"}, []string{"ab", "abc", "c"}},
	}

	for _, v := range tests {
		preds := filter.Compile(filter.DatasetSchema, map[string]any{
			"_tag": map[string]any{"items": v.items, "doAll": v.doAll},
		})
		require.Len(t, preds, 1)
		var got []string
		for _, k := range []string{"a", "ab", "abc", "c", "non"} {
			if preds[0].Match(docs[k]) {
				got = append(got, k)
			}
		}
		assert.Equal(t, v.want, got, v.msg)
	}

	// empty selection does not constrain anything
	preds := filter.Compile(filter.DatasetSchema, map[string]any{
		"_tag": map[string]any{"items": []any{}, "doAll": true},
	})
	assert.Empty(t, preds)
}

func TestLike(t *testing.T) {
	p := filter.Like("gcu_id_number", "ESP%")
	assert.True(t, p.Match(map[string]any{"gcu_id_number": "ESP0001"}))
	assert.False(t, p.Match(map[string]any{"gcu_id_number": "esp0001"}))
	assert.False(t, p.Match(map[string]any{"gcu_id_number": "FRA0001"}))
	assert.False(t, p.Match(map[string]any{"gcu_id_number": "XESP001"}))

	p = filter.Like("gcu_id_number", "E_P0.0%")
	assert.True(t, p.Match(map[string]any{"gcu_id_number": "ESP0.01"}))
	assert.False(t, p.Match(map[string]any{"gcu_id_number": "ESP0101"}))

	p = filter.Like("std_dataset", `100\%`)
	assert.True(t, p.Match(map[string]any{"std_dataset": "100%"}))
	assert.False(t, p.Match(map[string]any{"std_dataset": "1000"}))
}

func TestText(t *testing.T) {
	p := filter.Text("species", "Fagus ORIENTALIS")
	assert.True(t, p.Match(map[string]any{"species": "Fagus sylvatica"}))
	assert.True(t, p.Match(map[string]any{"species": "Fagus orientalis Lipsky"}))
	assert.False(t, p.Match(map[string]any{"species": "Abies alba"}))

	title := map[string]any{"_title": map[string]any{
		"iso_639_3_eng": "Beech stands",
		"iso_639_3_ita": "Faggete",
	}}
	p = filter.Text("_title", "faggete")
	assert.True(t, p.Match(title))
	p.Language = "iso_639_3_eng"
	assert.False(t, p.Match(title))

	list := map[string]any{"species_list": []any{"Abies alba", "Picea abies"}}
	assert.True(t, filter.Text("species_list", "picea").Match(list))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"fagus", "sylvatica", "l"},
		filter.Tokens("Fagus sylvatica L., fagus"))
	assert.Empty(t, filter.Tokens(" ,; "))
}

func TestMatches(t *testing.T) {
	doc := map[string]any{"species": "Fagus sylvatica", "std_date": "2001"}
	yes := filter.Text("species", "fagus")
	no := filter.In("std_date", "1999")

	assert.True(t, filter.Matches(doc, []filter.Predicate{yes}, filter.And))
	assert.False(t, filter.Matches(doc, []filter.Predicate{yes, no}, filter.And))
	assert.True(t, filter.Matches(doc, []filter.Predicate{yes, no}, filter.Or))
	assert.False(t, filter.Matches(doc, nil, filter.And))
	assert.False(t, filter.Matches(doc, nil, filter.Or))
}

func TestParseOp(t *testing.T) {
	tests := []struct {
		in   string
		want filter.Op
		err  bool
	}{
		{"", filter.And, false},
		{"and", filter.And, false},
		{" OR ", filter.Or, false},
		{"XOR", filter.And, true},
	}
	for _, v := range tests {
		op, err := filter.ParseOp(v.in)
		assert.Equal(t, v.want, op, v.in)
		assert.Equal(t, v.err, err != nil, v.in)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		msg    string
		params map[string]any
		ok     bool
	}{
		{"valid", map[string]any{
			"std_date":      map[string]any{"start": "2000"},
			"species":       "Fagus",
			"chr_tree_code": []any{"T1"},
		}, true},
		{"unknown ignored", map[string]any{"foo": 1}, true},
		{"range no bounds", map[string]any{
			"std_date": map[string]any{"include_start": true},
		}, false},
		{"range bad bound", map[string]any{
			"std_date": map[string]any{"start": true},
		}, false},
		{"range not object", map[string]any{"std_date": "2000"}, false},
		{"range min max", map[string]any{
			"std_date": map[string]any{"min": "2000", "max": "2010"},
		}, true},
		{"range unknown key", map[string]any{
			"std_date": map[string]any{"start": "2000", "from": "1"},
		}, false},
		{"text not string", map[string]any{"species": []any{"a"}}, false},
		{"list of numbers", map[string]any{"chr_tree_code": []any{1.0}}, false},
	}

	for _, v := range tests {
		err := filter.Validate(filter.DataSchema, v.params)
		if v.ok {
			assert.NoError(t, err, v.msg)
			continue
		}
		require.Error(t, err, v.msg)
		gnErr, ok := err.(*gn.Error)
		require.True(t, ok, v.msg)
		assert.Equal(t, errcode.InvalidFilterError, gnErr.Code, v.msg)
	}
}

func TestValidate_Selector(t *testing.T) {
	tests := []struct {
		msg   string
		value any
		ok    bool
	}{
		{"items", map[string]any{"items": []any{"a"}, "doAll": true}, true},
		{"empty items", map[string]any{"items": []any{}}, true},
		{"no items", map[string]any{"doAll": true}, false},
		{"empty item", map[string]any{"items": []any{""}}, false},
		{"not object", []any{"a"}, false},
	}

	for _, v := range tests {
		err := filter.Validate(filter.DatasetSchema,
			map[string]any{"_classes": v.value})
		assert.Equal(t, v.ok, err == nil, v.msg)
	}
}
