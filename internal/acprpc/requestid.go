// ABOUTME: Polymorphic JSON-RPC request id (string or integer variant)
// ABOUTME: Equality is by variant and value; used as the pending-request map key

package acprpc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// RequestId is either an integer or a string id, per §3. The zero value is
// the integer 0, which is never assigned by this SDK's own id generator
// (outbound ids start at 1), so it doubles as an "absent" sentinel when
// paired with a separate presence flag where one is needed.
type RequestId struct {
	isString bool
	str      string
	num      int64
}

// IntRequestId builds an integer-variant RequestId.
func IntRequestId(n int64) RequestId {
	return RequestId{num: n}
}

// StringRequestId builds a string-variant RequestId.
func StringRequestId(s string) RequestId {
	return RequestId{isString: true, str: s}
}

// IsString reports whether this id is the string variant.
func (r RequestId) IsString() bool { return r.isString }

// Int returns the integer value (valid only when IsString is false).
func (r RequestId) Int() int64 { return r.num }

// Str returns the string value (valid only when IsString is true).
func (r RequestId) Str() string { return r.str }

// Equal compares two ids by variant and value.
func (r RequestId) Equal(other RequestId) bool {
	if r.isString != other.isString {
		return false
	}
	if r.isString {
		return r.str == other.str
	}
	return r.num == other.num
}

// Key renders a value usable as a Go map key that respects variant equality
// (an integer id and a same-valued string id are distinct keys).
func (r RequestId) Key() string {
	if r.isString {
		return "s:" + r.str
	}
	return "i:" + strconv.FormatInt(r.num, 10)
}

// String renders the id for logging.
func (r RequestId) String() string {
	if r.isString {
		return r.str
	}
	return strconv.FormatInt(r.num, 10)
}

// MarshalJSON emits the id as the JSON primitive matching its variant.
func (r RequestId) MarshalJSON() ([]byte, error) {
	if r.isString {
		return json.Marshal(r.str)
	}
	return json.Marshal(r.num)
}

// UnmarshalJSON decodes either a JSON string or a JSON number into a
// RequestId, preserving the variant it arrived as.
func (r *RequestId) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*r = RequestId{isString: true, str: asString}
		return nil
	}

	var asNumber int64
	if err := json.Unmarshal(data, &asNumber); err == nil {
		*r = RequestId{num: asNumber}
		return nil
	}

	return fmt.Errorf("acprpc: request id is neither string nor integer: %s", data)
}
