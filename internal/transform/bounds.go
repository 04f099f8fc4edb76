package transform

import (
	"context"
	"math"

	"github.com/propdoc/propdoc/internal/property"
)

type valueRange struct {
	min any
	max any
}

// integerRanges holds the exact two's-complement range per fixed-width
// integer type. Unsigned 64-bit maxima stay uint64 so they serialize
// without float rounding.
var integerRanges = map[string]valueRange{
	"int8_t":   {int64(math.MinInt8), int64(math.MaxInt8)},
	"uint8_t":  {int64(0), int64(math.MaxUint8)},
	"int16_t":  {int64(math.MinInt16), int64(math.MaxInt16)},
	"uint16_t": {int64(0), int64(math.MaxUint16)},
	"int32_t":  {int64(math.MinInt32), int64(math.MaxInt32)},
	"int":      {int64(math.MinInt32), int64(math.MaxInt32)},
	"uint32_t": {int64(0), int64(math.MaxUint32)},
	"unsigned": {int64(0), int64(math.MaxUint32)},
	"int64_t":  {int64(math.MinInt64), int64(math.MaxInt64)},
	"long":     {int64(math.MinInt64), int64(math.MaxInt64)},
	"uint64_t": {int64(0), uint64(math.MaxUint64)},
	"size_t":   {int64(0), uint64(math.MaxUint64)},
}

// durationWidths holds the standard's minimum representation bit count
// per chrono unit. The representable range is the signed two's
// complement range of that width.
var durationWidths = map[string]int{
	"nanoseconds":  64,
	"microseconds": 55,
	"milliseconds": 45,
	"seconds":      35,
	"minutes":      29,
	"hours":        23,
	"days":         25,
	"weeks":        22,
	"months":       20,
	"years":        17,
}

func durationRange(unit string) (valueRange, bool) {
	width, ok := durationWidths[unit]
	if !ok {
		return valueRange{}, false
	}
	if width >= 64 {
		return valueRange{int64(math.MinInt64), int64(math.MaxInt64)}, true
	}
	max := int64(1)<<(width-1) - 1
	return valueRange{-max - 1, max}, true
}

// numericBoundsTransformer contributes the representable range of
// fixed-width integer properties.
type numericBoundsTransformer struct{}

func (t *numericBoundsTransformer) Name() string    { return "numeric_bounds" }
func (t *numericBoundsTransformer) After() []string { return []string{"type_mapping"} }

func (t *numericBoundsTransformer) Accepts(rec *property.MergedRecord) bool {
	_, ok := integerBaseType(rec)
	return ok
}

func (t *numericBoundsTransformer) Apply(_ context.Context, rec *property.MergedRecord, out *property.Record) error {
	name, _ := integerBaseType(rec)
	r := integerRanges[name]
	out.Minimum = r.min
	out.Maximum = r.max
	return nil
}

func integerBaseType(rec *property.MergedRecord) (string, bool) {
	inner, isArray := unwrapBase(rec.BaseType)
	if isArray || rec.IsOneOrMany {
		return "", false
	}
	if _, ok := integerRanges[inner]; !ok {
		return "", false
	}
	return inner, true
}

// durationBoundsTransformer contributes the representable range of
// chrono duration properties, keyed by unit width rather than integer
// type name.
type durationBoundsTransformer struct{}

func (t *durationBoundsTransformer) Name() string    { return "duration_bounds" }
func (t *durationBoundsTransformer) After() []string { return []string{"type_mapping"} }

func (t *durationBoundsTransformer) Accepts(rec *property.MergedRecord) bool {
	_, ok := durationBaseUnit(rec)
	return ok
}

func (t *durationBoundsTransformer) Apply(_ context.Context, rec *property.MergedRecord, out *property.Record) error {
	unit, _ := durationBaseUnit(rec)
	r, _ := durationRange(unit)
	out.Minimum = r.min
	out.Maximum = r.max
	return nil
}

func durationBaseUnit(rec *property.MergedRecord) (string, bool) {
	inner, isArray := unwrapBase(rec.BaseType)
	if isArray || rec.IsOneOrMany {
		return "", false
	}
	unit := property.Unqualify(inner)
	if _, ok := durationWidths[unit]; !ok {
		return "", false
	}
	return unit, true
}
