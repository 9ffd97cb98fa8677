package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"mediascan/internal/mediatypes"
)

// Metadata is everything the extractor derives for one media file.
// Zero Width/Height mean the dimensions could not be determined.
type Metadata struct {
	Path         string
	Name         string
	OriginalName string
	Kind         mediatypes.Kind
	Size         int64
	Digest       string
	Perceptual   string // empty when absent (videos, undecodable images)
	Width        int
	Height       int
	CreatedAt    time.Time
	ModifiedAt   time.Time
	Tags         map[string]MetaValue // format-specific tags (EXIF), nil when none
	ScannedAt    time.Time
}

// MetaKind discriminates the scalar variants a MetaValue can hold.
type MetaKind int

const (
	// MetaString holds printable text, including the stringified
	// fallback for unrepresentable tag values.
	MetaString MetaKind = iota
	// MetaInt holds a signed integer.
	MetaInt
	// MetaFloat holds a floating-point number.
	MetaFloat
	// MetaBool holds a boolean.
	MetaBool
)

// MetaValue is a tagged union of the scalar types a format tag can carry.
// Anything that does not fit one of the variants is stringified and
// truncated into MetaString.
type MetaValue struct {
	Kind  MetaKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// StringValue wraps a string in a MetaValue.
func StringValue(s string) MetaValue {
	return MetaValue{Kind: MetaString, Str: s}
}

// IntValue wraps an integer in a MetaValue.
func IntValue(i int64) MetaValue {
	return MetaValue{Kind: MetaInt, Int: i}
}

// FloatValue wraps a float in a MetaValue.
func FloatValue(f float64) MetaValue {
	return MetaValue{Kind: MetaFloat, Float: f}
}

// BoolValue wraps a boolean in a MetaValue.
func BoolValue(b bool) MetaValue {
	return MetaValue{Kind: MetaBool, Bool: b}
}

// String renders the value as text.
func (v MetaValue) String() string {
	switch v.Kind {
	case MetaInt:
		return strconv.FormatInt(v.Int, 10)
	case MetaFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case MetaBool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// MarshalJSON emits the underlying scalar, so a tag map serializes to the
// plain {"Make": "Canon", "ISO": 200} shape consumers expect.
func (v MetaValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case MetaInt:
		return json.Marshal(v.Int)
	case MetaFloat:
		return json.Marshal(v.Float)
	case MetaBool:
		return json.Marshal(v.Bool)
	default:
		return json.Marshal(v.Str)
	}
}

// UnmarshalJSON accepts any scalar and maps it onto the matching variant.
func (v *MetaValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case string:
		*v = StringValue(val)
	case bool:
		*v = BoolValue(val)
	case float64:
		// JSON numbers arrive as float64; keep integral values integral.
		if val == float64(int64(val)) {
			*v = IntValue(int64(val))
		} else {
			*v = FloatValue(val)
		}
	case nil:
		*v = StringValue("")
	default:
		*v = StringValue(fmt.Sprintf("%v", val))
	}
	return nil
}
