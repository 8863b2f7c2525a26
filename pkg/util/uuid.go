package util

import (
	"encoding/json"

	"github.com/google/uuid"
)

// frameSpace namespaces content ids so they never collide with other
// name based uuids over the same bytes.
var frameSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:ffv1:frame"))

// ContentUUID is a stable id for a block of pixel data
func ContentUUID(data []byte) string {
	return uuid.NewMD5(frameSpace, data).String()
}

// HashUUID ids any json serializable value, empty if it cannot be marshalled
func HashUUID(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return uuid.NewMD5(uuid.Nil, raw).String()
}
