package shelter

import (
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
)

// Record is a schemaless document. Field order is preserved as stored.
type Record = bson.D

// Lookup returns the value of a top-level field
func Lookup(r Record, key string) (interface{}, bool) {
	for _, e := range r {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// isMapping reports whether v is a document the store can take as a
// record, filter or update specification: bson.D or any map keyed by
// strings.
func isMapping(v interface{}) bool {
	switch v.(type) {
	case bson.D:
		return true
	case nil:
		return false
	}
	t := reflect.TypeOf(v)
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

// isAbsent reports whether v carries no document at all
func isAbsent(v interface{}) bool {
	if v == nil {
		return true
	}
	if d, ok := v.(bson.D); ok {
		return d == nil
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.IsNil()
}
