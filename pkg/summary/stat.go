package summary

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/eufgis/fgrdb/pkg/record"
)

// Stat is an aggregate function over numeric values.
type Stat string

const (
	Min      Stat = "MIN"
	Max      Stat = "MAX"
	Avg      Stat = "AVG"
	Median   Stat = "MEDIAN"
	StdDev   Stat = "STDDEV"
	Variance Stat = "VARIANCE"
)

// Stats lists supported statistics.
var Stats = []Stat{Min, Max, Avg, Median, StdDev, Variance}

// ParseStat converts a name into Stat. The name is case-insensitive.
func ParseStat(s string) (Stat, error) {
	res := Stat(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(Stats, res) {
		return "", UnsupportedStatError(s)
	}
	return res, nil
}

// Compute applies the statistic to numeric values and ignores the rest.
// Returns false if there are no numeric values. Deviation and variance
// are population statistics.
func (s Stat) Compute(vals []any) (float64, bool) {
	nums := Numbers(vals)
	if len(nums) == 0 {
		return 0, false
	}

	switch s {
	case Min:
		return slices.Min(nums), true
	case Max:
		return slices.Max(nums), true
	case Avg:
		return mean(nums), true
	case Median:
		slices.Sort(nums)
		mid := len(nums) / 2
		if len(nums)%2 == 1 {
			return nums[mid], true
		}
		return (nums[mid-1] + nums[mid]) / 2, true
	case Variance:
		return variance(nums), true
	case StdDev:
		return math.Sqrt(variance(nums)), true
	}
	return 0, false
}

// Numbers returns numeric values from a list of decoded JSON values.
func Numbers(vals []any) []float64 {
	res := make([]float64, 0, len(vals))
	for _, v := range vals {
		switch t := v.(type) {
		case float64:
			res = append(res, t)
		case float32:
			res = append(res, float64(t))
		case int:
			res = append(res, float64(t))
		case int64:
			res = append(res, float64(t))
		case json.Number:
			if f, err := t.Float64(); err == nil {
				res = append(res, f)
			}
		}
	}
	return res
}

func mean(nums []float64) float64 {
	var sum float64
	for _, v := range nums {
		sum += v
	}
	return sum / float64(len(nums))
}

func variance(nums []float64) float64 {
	m := mean(nums)
	var sum float64
	for _, v := range nums {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(nums))
}

// Groups collects values of chosen fields grouped by the value of a
// pivot field. Records without a pivot value are not grouped.
type Groups struct {
	pivot  string
	fields []string
	groups map[string]map[string][]any
}

// NewGroups creates Groups for a pivot and a set of fields.
func NewGroups(pivot string, fields ...string) *Groups {
	return &Groups{
		pivot:  pivot,
		fields: fields,
		groups: make(map[string]map[string][]any),
	}
}

// Add puts values of a record into its pivot group.
func (g *Groups) Add(d record.Data) {
	pv, ok := d.Value(g.pivot)
	if !ok {
		return
	}
	key := pivotString(pv)
	grp, ok := g.groups[key]
	if !ok {
		grp = make(map[string][]any)
		g.groups[key] = grp
	}
	for _, f := range g.fields {
		if v, ok := d.Value(f); ok {
			grp[f] = append(grp[f], v)
		}
	}
}

// Keys returns sorted pivot values.
func (g *Groups) Keys() []string {
	res := make([]string, 0, len(g.groups))
	for k := range g.groups {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}

// Values returns collected values of a field for a pivot value.
func (g *Groups) Values(key, field string) []any {
	return g.groups[key][field]
}

func pivotString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
