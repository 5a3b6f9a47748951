package shelter

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// memCollection is an in-memory Collection understanding the small
// subset of the query language the gateway and presets use: equality,
// $in, $eq, $ne, $lt, $lte, $gt, $gte and $set.
type memCollection struct {
	docs []bson.D

	insertErr error
	findErr   error
	updateErr error
	deleteErr error
	omitID    bool
	panicOn   string

	inserts int
	updates []bson.D
}

func newMemCollection(seed ...bson.D) *memCollection {
	m := &memCollection{}
	for _, d := range seed {
		if _, err := m.InsertOne(context.Background(), d); err != nil {
			panic(err)
		}
	}
	m.inserts = 0
	return m
}

func (m *memCollection) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if m.panicOn == "insert" {
		panic("boom")
	}
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	doc, err := normalize(document)
	if err != nil {
		return nil, err
	}
	m.inserts++
	if m.omitID {
		m.docs = append(m.docs, doc)
		return &mongo.InsertOneResult{}, nil
	}
	id, ok := Lookup(doc, "_id")
	if !ok {
		id = primitive.NewObjectID()
		doc = append(bson.D{{Key: "_id", Value: id}}, doc...)
	}
	m.docs = append(m.docs, doc)
	return &mongo.InsertOneResult{InsertedID: id}, nil
}

func (m *memCollection) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	f, err := normalize(filter)
	if err != nil {
		return nil, err
	}
	var out []interface{}
	for _, d := range m.docs {
		if matches(d, f) {
			out = append(out, d)
		}
	}
	return mongo.NewCursorFromDocuments(out, nil, nil)
}

func (m *memCollection) UpdateMany(_ context.Context, filter interface{}, update interface{}, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	f, err := normalize(filter)
	if err != nil {
		return nil, err
	}
	u, err := normalize(update)
	if err != nil {
		return nil, err
	}
	m.updates = append(m.updates, u)

	setVal, _ := Lookup(u, "$set")
	set, ok := setVal.(bson.D)
	if !ok || len(set) == 0 {
		return nil, errors.New("'$set' is empty. You must specify a field like so: {$set: {<field>: ...}}")
	}

	result := &mongo.UpdateResult{}
	for i, d := range m.docs {
		if !matches(d, f) {
			continue
		}
		result.MatchedCount++
		changed := false
		for _, e := range set {
			cur, exists := Lookup(d, e.Key)
			if exists && compare(cur, e.Value) == 0 {
				continue
			}
			d = setField(d, e.Key, e.Value)
			changed = true
		}
		if changed {
			m.docs[i] = d
			result.ModifiedCount++
		}
	}
	return result, nil
}

func (m *memCollection) DeleteMany(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	f, err := normalize(filter)
	if err != nil {
		return nil, err
	}
	kept := m.docs[:0]
	var removed int64
	for _, d := range m.docs {
		if matches(d, f) {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	m.docs = kept
	return &mongo.DeleteResult{DeletedCount: removed}, nil
}

// normalize round-trips v through BSON so every document has the same
// shape the real driver would see.
func normalize(v interface{}) (bson.D, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return d, nil
}

func setField(d bson.D, key string, value interface{}) bson.D {
	for i := range d {
		if d[i].Key == key {
			d[i].Value = value
			return d
		}
	}
	return append(d, bson.E{Key: key, Value: value})
}

func matches(doc, filter bson.D) bool {
	for _, cond := range filter {
		val, exists := Lookup(doc, cond.Key)
		ops, isOps := cond.Value.(bson.D)
		if isOps && len(ops) > 0 && strings.HasPrefix(ops[0].Key, "$") {
			for _, op := range ops {
				if !applyOp(op.Key, val, exists, op.Value) {
					return false
				}
			}
			continue
		}
		if !exists || compare(val, cond.Value) != 0 {
			return false
		}
	}
	return true
}

func applyOp(op string, val interface{}, exists bool, arg interface{}) bool {
	switch op {
	case "$eq":
		return exists && compare(val, arg) == 0
	case "$ne":
		return !exists || compare(val, arg) != 0
	case "$in":
		list, _ := arg.(bson.A)
		for _, candidate := range list {
			if exists && compare(val, candidate) == 0 {
				return true
			}
		}
		return false
	case "$lt":
		return exists && ordered(val, arg) && compare(val, arg) < 0
	case "$lte":
		return exists && ordered(val, arg) && compare(val, arg) <= 0
	case "$gt":
		return exists && ordered(val, arg) && compare(val, arg) > 0
	case "$gte":
		return exists && ordered(val, arg) && compare(val, arg) >= 0
	}
	panic("memCollection: unsupported operator " + op)
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func ordered(a, b interface{}) bool {
	_, an := number(a)
	_, bn := number(b)
	if an && bn {
		return true
	}
	_, as := a.(string)
	_, bs := b.(string)
	return as && bs
}

// compare orders numbers numerically and strings lexically. Other
// values are only ever equal (0) or unequal (1).
func compare(a, b interface{}) int {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	}
	if reflect.DeepEqual(a, b) {
		return 0
	}
	return 1
}
