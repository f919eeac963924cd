// Package user defines the remotely generated user records displayed by roster.
package user

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// UID is the source-assigned identifier of a user. The remote source sends
// it as a JSON number or a JSON string; both decode to the same textual form.
// UIDs are intended to be unique but the source does not guarantee it across
// separate fetches.
type UID string

// UnmarshalJSON accepts a JSON string, a JSON number, or null.
func (u *UID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*u = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("uid must be a string or number: %w", err)
		}
		*u = UID(n.String())
		return nil
	}
}

// String returns the textual form of the uid.
func (u UID) String() string { return string(u) }

// User is one remotely generated identity.
type User struct {
	UID       UID
	FirstName string
	LastName  string
	Avatar    string

	// Extra holds every other field the source sent, verbatim.
	Extra map[string]json.RawMessage
}

// Known JSON keys. Everything else lands in Extra.
const (
	keyUID       = "uid"
	keyFirstName = "first_name"
	keyLastName  = "last_name"
	keyAvatar    = "avatar"
)

// ErrMissingField is returned when a user object lacks one of the keys every
// record must carry.
var ErrMissingField = errors.New("missing required field")

// UnmarshalJSON decodes a user object, keeping unknown fields in Extra. The
// uid, first_name, last_name and avatar keys must all be present and the uid
// must be non-empty; name and avatar values may be null.
func (u *User) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("user must be a JSON object")
	}

	var decoded User
	raw, ok := fields[keyUID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingField, keyUID)
	}
	if err := json.Unmarshal(raw, &decoded.UID); err != nil {
		return fmt.Errorf("field %s: %w", keyUID, err)
	}
	if decoded.UID == "" {
		return fmt.Errorf("%w: %s is null or empty", ErrMissingField, keyUID)
	}
	delete(fields, keyUID)

	for _, f := range []struct {
		key string
		dst *string
	}{
		{keyFirstName, &decoded.FirstName},
		{keyLastName, &decoded.LastName},
		{keyAvatar, &decoded.Avatar},
	} {
		key, dst := f.key, f.dst
		raw, ok := fields[key]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingField, key)
		}
		if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			if err := json.Unmarshal(raw, dst); err != nil {
				return fmt.Errorf("field %s: %w", key, err)
			}
		}
		delete(fields, key)
	}
	if len(fields) > 0 {
		decoded.Extra = fields
	}

	*u = decoded
	return nil
}

// MarshalJSON writes the known fields plus everything in Extra.
func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Extra)+4)
	for k, v := range u.Extra {
		out[k] = v
	}
	out[keyUID] = string(u.UID)
	out[keyFirstName] = u.FirstName
	out[keyLastName] = u.LastName
	out[keyAvatar] = u.Avatar
	return json.Marshal(out)
}

// DisplayName returns "First Last", tolerating either part being empty.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Initials returns up to two uppercase initials for avatar badges.
func (u User) Initials() string {
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		for _, r := range part {
			b.WriteString(strings.ToUpper(string(r)))
			break
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}
