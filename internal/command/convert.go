package command

import "strconv"

// Value enumerates the types a token can be converted to.
//
// string yields the token itself (a zero-copy substring of the buffer); []byte
// yields an owned copy. Numeric and bool conversions parse the full token and fail
// on any residue.
type Value interface {
	int | int64 | uint | float32 | float64 | bool | string | []byte
}

// convert parses tok into a T.
//
// Postcondition: Returns (value, true) on success, or (zero, false) if tok is not
// a valid representation of T.
func convert[T Value](tok string) (T, bool) {
	var out T
	switch p := any(&out).(type) {
	case *int:
		v, err := strconv.Atoi(tok)
		if err != nil {
			return out, false
		}
		*p = v
	case *int64:
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return out, false
		}
		*p = v
	case *uint:
		v, err := strconv.ParseUint(tok, 10, strconv.IntSize)
		if err != nil {
			return out, false
		}
		*p = uint(v)
	case *float32:
		v, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return out, false
		}
		*p = float32(v)
	case *float64:
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return out, false
		}
		*p = v
	case *bool:
		v, err := strconv.ParseBool(tok)
		if err != nil {
			return out, false
		}
		*p = v
	case *string:
		*p = tok
	case *[]byte:
		*p = []byte(tok)
	}
	return out, true
}

// Get converts the already-scanned token at idx to T. It never scans further.
//
// Postcondition: Returns (zero, false) if idx >= a.Len() or the token does not
// convert; otherwise the converted value and true.
func Get[T Value](a *Args, idx int) (T, bool) {
	tok, ok := a.Token(idx)
	if !ok {
		var zero T
		return zero, false
	}
	return convert[T](tok)
}

// Req is Get with fallback substituted for any failure.
func Req[T Value](a *Args, idx int, fallback T) T {
	if v, ok := Get[T](a, idx); ok {
		return v
	}
	return fallback
}
