package sqlite

import (
	"database/sql/driver"
	"time"
)

// BindPolicy controls the lifetime of textual and binary payloads
// handed to the engine at bind time.
type BindPolicy int

const (
	// Copy duplicates byte payloads before binding, so the caller may
	// reuse its buffer immediately. This is the default and the only
	// policy used by one-shot execution.
	Copy BindPolicy = iota

	// Borrow hands the caller's backing array to the engine layer
	// without cloning. The caller must keep the buffer stable until the
	// statement is executed again or closed. Worth it only for reused
	// prepared statements on hot paths.
	Borrow
)

// Param is implemented by adapter types that bind themselves into a
// positional parameter slot. The native scalar types are handled
// directly by Execute; Param is the extension point for the generic
// adapters (Null, Enum, Buffer).
type Param interface {
	bindValue(policy BindPolicy) (driver.Value, error)
}

// ColumnReader is implemented by adapter types that read themselves out
// of a column of the current row.
type ColumnReader interface {
	scanValue(v driver.Value) error
}

// Scalar is the closed set of native value types understood by the
// binding and extraction machinery.
type Scalar interface {
	int | int32 | int64 | float64 | bool | string | []byte | time.Time
}

// Integral constrains enumeration adapters to types with an integral
// underlying representation.
type Integral interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
}

// bindArg converts one caller-supplied argument into a driver value.
// The type switch is the closed dispatch table: anything outside it is
// a contract violation, never silently coerced.
func bindArg(policy BindPolicy, arg any) (driver.Value, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case Param:
		return v.bindValue(policy)
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return v, nil
	case bool:
		return v, nil
	case string:
		return v, nil
	case []byte:
		if policy == Copy {
			return append([]byte(nil), v...), nil
		}
		return v, nil
	case time.Time:
		return v, nil
	default:
		return nil, errorf("cannot bind value of type %T", arg)
	}
}

// scanArg reads one column value into a caller-supplied destination.
// NULL coerces to the zero value for every non-optional destination.
func scanArg(out any, v driver.Value) error {
	switch p := out.(type) {
	case ColumnReader:
		return p.scanValue(v)
	case *int:
		n, err := valueInt64(v)
		if err != nil {
			return err
		}
		*p = int(n)
	case *int32:
		n, err := valueInt64(v)
		if err != nil {
			return err
		}
		*p = int32(n)
	case *int64:
		n, err := valueInt64(v)
		if err != nil {
			return err
		}
		*p = n
	case *float64:
		f, err := valueFloat64(v)
		if err != nil {
			return err
		}
		*p = f
	case *bool:
		n, err := valueInt64(v)
		if err != nil {
			return err
		}
		*p = n != 0
	case *string:
		s, err := valueText(v)
		if err != nil {
			return err
		}
		*p = s
	case *[]byte:
		b, err := valueBlob(v)
		if err != nil {
			return err
		}
		*p = b
	case *time.Time:
		t, err := valueTime(v)
		if err != nil {
			return err
		}
		*p = t
	default:
		return errorf("cannot read column into %T", out)
	}
	return nil
}

// sqliteTimeFormats are the textual timestamp layouts accepted when a
// column stores its datetime as TEXT (datetime('now') and friends).
var sqliteTimeFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339Nano,
}

func valueInt64(v driver.Value) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return t, nil
	case float64:
		return int64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	}
	return 0, errorf("cannot convert column value %T to integer", v)
}

func valueFloat64(v driver.Value) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	}
	return 0, errorf("cannot convert column value %T to float", v)
}

func valueText(v driver.Value) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case time.Time:
		return t.Format("2006-01-02 15:04:05"), nil
	}
	return "", errorf("cannot convert column value %T to text", v)
}

func valueBlob(v driver.Value) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		// The driver may reuse its buffer on the next step.
		return append([]byte(nil), t...), nil
	case string:
		return []byte(t), nil
	}
	return nil, errorf("cannot convert column value %T to blob", v)
}

func valueTime(v driver.Value) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t, nil
	case int64:
		return time.Unix(t, 0).UTC(), nil
	case string:
		return parseTime(t)
	case []byte:
		return parseTime(string(t))
	}
	return time.Time{}, errorf("cannot convert column value %T to time", v)
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range sqliteTimeFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errorf("cannot parse %q as a timestamp", s)
}

// Null is an optional value of any supported scalar type. An absent
// value binds as SQL NULL; a NULL column reads back as absent. This is
// the adapter to use when NULL must be observable rather than coerced
// to a zero value.
type Null[T Scalar] struct {
	V     T
	Valid bool
}

// Value wraps v as a present Null[T].
func Value[T Scalar](v T) Null[T] {
	return Null[T]{V: v, Valid: true}
}

func (n Null[T]) bindValue(policy BindPolicy) (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return bindArg(policy, n.V)
}

func (n *Null[T]) scanValue(v driver.Value) error {
	if v == nil {
		var zero T
		n.V, n.Valid = zero, false
		return nil
	}
	n.Valid = true
	return scanArg(any(&n.V), v)
}

// Enum binds a named integral (enumeration) type through its underlying
// representation. Dispatch is resolved at compile time by the type
// parameter.
func Enum[T Integral](v T) Param {
	return enumParam(v)
}

type enumParam int64

func (e enumParam) bindValue(BindPolicy) (driver.Value, error) {
	return int64(e), nil
}

// EnumColumn reads a column into a named integral (enumeration) type
// through its underlying representation.
func EnumColumn[T Integral](p *T) ColumnReader {
	return enumColumn[T]{p: p}
}

type enumColumn[T Integral] struct {
	p *T
}

func (e enumColumn[T]) scanValue(v driver.Value) error {
	n, err := valueInt64(v)
	if err != nil {
		return err
	}
	*e.p = T(n)
	return nil
}

// Buf adapts a caller-owned fixed-capacity byte buffer. As a parameter
// it binds the whole buffer as a blob. As a column destination it
// copies at most len(B) bytes and silently truncates longer source
// data; shorter data zero-fills the remainder.
type Buf struct {
	B []byte
}

// Buffer wraps b as a fixed-capacity buffer adapter.
func Buffer(b []byte) Buf {
	return Buf{B: b}
}

func (f Buf) bindValue(policy BindPolicy) (driver.Value, error) {
	if policy == Copy {
		return append([]byte(nil), f.B...), nil
	}
	return f.B, nil
}

func (f Buf) scanValue(v driver.Value) error {
	src, err := valueBlob(v)
	if err != nil {
		return err
	}
	n := copy(f.B, src)
	for i := n; i < len(f.B); i++ {
		f.B[i] = 0
	}
	return nil
}
