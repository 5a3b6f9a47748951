// Package shelter mediates between application code and the animal
// records collection. It validates argument shapes, turns requests into
// store-native filter and update documents, and normalizes results.
//
// The plain methods (Create, Read, Update, Delete and the preset reads)
// never return errors: any failure is logged and reported as false, an
// empty slice or zero. The Try variants return the same values together
// with an error for callers that need to tell "no match" from "failed".
package shelter

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/grazioso/shelter/internal/logger"
)

// Collection is the subset of the MongoDB collection API the gateway
// forwards to. *mongo.Collection satisfies it.
type Collection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

var _ Collection = (*mongo.Collection)(nil)

// Gateway is the record access layer over one collection.
//
// Gateway holds no mutable state of its own. It is safe for concurrent
// use exactly when the injected Collection is; *mongo.Collection is.
type Gateway struct {
	collection Collection
}

// New creates a gateway over an already connected collection
func New(collection Collection) *Gateway {
	return &Gateway{collection: collection}
}

// Create inserts one record. It reports true only when the store
// assigned the record an identifier.
func (g *Gateway) Create(ctx context.Context, record interface{}) bool {
	ok, err := g.TryCreate(ctx, record)
	if err != nil {
		logger.Error("Error in create: %v", err)
		return false
	}
	return ok
}

// TryCreate is Create with the failure reason returned
func (g *Gateway) TryCreate(ctx context.Context, record interface{}) (created bool, err error) {
	defer recoverFault("insert", &err)

	if isAbsent(record) {
		return false, ErrEmptyInput
	}
	if !isMapping(record) {
		return false, validationError("record", record)
	}
	if g.collection == nil {
		return false, newStoreFault("insert", fmt.Errorf("no collection configured"))
	}

	result, err := g.collection.InsertOne(ctx, record)
	if err != nil {
		return false, newStoreFault("insert", err)
	}

	if result == nil || result.InsertedID == nil {
		logger.Warning("Insert completed without an assigned id")
		return false, nil
	}

	logger.Info("Document inserted successfully: %v", result.InsertedID)
	return true, nil
}

// Read returns every record matching filter. A nil filter matches all
// records. The cursor is drained before returning.
func (g *Gateway) Read(ctx context.Context, filter interface{}) []Record {
	records, err := g.TryRead(ctx, filter)
	if err != nil {
		logger.Error("Error in read: %v", err)
		return []Record{}
	}
	return records
}

// TryRead is Read with the failure reason returned
func (g *Gateway) TryRead(ctx context.Context, filter interface{}) (records []Record, err error) {
	defer recoverFault("find", &err)

	if isAbsent(filter) {
		filter = bson.D{}
	}
	if !isMapping(filter) {
		return []Record{}, validationError("query", filter)
	}
	if g.collection == nil {
		return []Record{}, newStoreFault("find", fmt.Errorf("no collection configured"))
	}

	cursor, err := g.collection.Find(ctx, filter)
	if err != nil {
		return []Record{}, newStoreFault("find", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &records); err != nil {
		return []Record{}, newStoreFault("find", err)
	}
	if records == nil {
		records = []Record{}
	}

	logger.Info("Query successful. Found %d documents", len(records))
	return records, nil
}

// Update sets the fields in spec on every record matching filter and
// returns how many records changed. Records that already held the
// target values are matched but not counted.
func (g *Gateway) Update(ctx context.Context, filter, spec interface{}) int64 {
	n, err := g.TryUpdate(ctx, filter, spec)
	if err != nil {
		logger.Error("Error in update: %v", err)
		return 0
	}
	return n
}

// TryUpdate is Update with the failure reason returned
func (g *Gateway) TryUpdate(ctx context.Context, filter, spec interface{}) (modified int64, err error) {
	defer recoverFault("update", &err)

	if !isMapping(filter) {
		return 0, validationError("query", filter)
	}
	if !isMapping(spec) {
		return 0, validationError("update data", spec)
	}
	if g.collection == nil {
		return 0, newStoreFault("update", fmt.Errorf("no collection configured"))
	}

	result, err := g.collection.UpdateMany(ctx, filter, bson.D{{Key: "$set", Value: spec}})
	if err != nil {
		return 0, newStoreFault("update", err)
	}
	if result == nil {
		return 0, nil
	}

	logger.Info("Update successful. Matched %d, modified %d documents", result.MatchedCount, result.ModifiedCount)
	return result.ModifiedCount, nil
}

// Delete removes every record matching filter and returns the count
func (g *Gateway) Delete(ctx context.Context, filter interface{}) int64 {
	n, err := g.TryDelete(ctx, filter)
	if err != nil {
		logger.Error("Error in delete: %v", err)
		return 0
	}
	return n
}

// TryDelete is Delete with the failure reason returned
func (g *Gateway) TryDelete(ctx context.Context, filter interface{}) (deleted int64, err error) {
	defer recoverFault("delete", &err)

	if !isMapping(filter) {
		return 0, validationError("query", filter)
	}
	if g.collection == nil {
		return 0, newStoreFault("delete", fmt.Errorf("no collection configured"))
	}

	result, err := g.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, newStoreFault("delete", err)
	}
	if result == nil {
		return 0, nil
	}

	logger.Info("Delete successful. Removed %d documents", result.DeletedCount)
	return result.DeletedCount, nil
}

// ReadPreset runs the named preset query
func (g *Gateway) ReadPreset(ctx context.Context, p Preset) []Record {
	return g.Read(ctx, p.Filter())
}

// ReadWaterRescue returns young dogs of water rescue breeds
func (g *Gateway) ReadWaterRescue(ctx context.Context) []Record {
	return g.ReadPreset(ctx, PresetWaterRescue)
}

// ReadMountainRescue returns young dogs of mountain rescue breeds
func (g *Gateway) ReadMountainRescue(ctx context.Context) []Record {
	return g.ReadPreset(ctx, PresetMountainRescue)
}

// ReadDisasterTracking returns young dogs of disaster and tracking breeds
func (g *Gateway) ReadDisasterTracking(ctx context.Context) []Record {
	return g.ReadPreset(ctx, PresetDisasterTracking)
}

// recoverFault turns a panic raised inside the store client into a
// StoreFault so nothing escapes the gateway.
func recoverFault(op string, err *error) {
	if r := recover(); r != nil {
		*err = newStoreFault(op, fmt.Errorf("panic: %v", r))
	}
}
