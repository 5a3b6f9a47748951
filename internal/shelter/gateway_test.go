package shelter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/grazioso/shelter/internal/logger"
)

func animal(kind, breed string, weeks int) bson.D {
	return bson.D{
		{Key: "animal_type", Value: kind},
		{Key: "breed", Value: breed},
		{Key: "age_upon_outcome_in_weeks", Value: weeks},
	}
}

func fieldOf(t *testing.T, r Record, key string) interface{} {
	t.Helper()
	v, ok := Lookup(r, key)
	require.True(t, ok, "record has no field %q: %v", key, r)
	return v
}

func breedsOf(t *testing.T, records []Record) []string {
	t.Helper()
	var out []string
	for _, r := range records {
		out = append(out, fieldOf(t, r, "breed").(string))
	}
	return out
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.Init(logger.DEBUG, &buf)
	t.Cleanup(func() { logger.Init(logger.INFO, nil) })
	return &buf
}

func TestCreateRejectsNonMappings(t *testing.T) {
	ctx := context.Background()
	coll := newMemCollection()
	g := New(coll)

	inputs := []interface{}{
		"a string",
		42,
		3.5,
		true,
		[]string{"Dog"},
		bson.A{"Dog"},
		struct{ Breed string }{"Beagle"},
		&bson.M{"breed": "Beagle"},
		map[int]string{1: "Dog"},
	}
	for _, in := range inputs {
		assert.False(t, g.Create(ctx, in), "input %#v", in)

		_, err := g.TryCreate(ctx, in)
		assert.ErrorIs(t, err, ErrValidation, "input %#v", in)
	}
	assert.Zero(t, coll.inserts)
}

func TestCreateRejectsMissingRecord(t *testing.T) {
	ctx := context.Background()
	coll := newMemCollection()
	g := New(coll)

	var nilMap map[string]interface{}
	for _, in := range []interface{}{nil, nilMap, bson.D(nil), bson.M(nil)} {
		assert.False(t, g.Create(ctx, in))

		_, err := g.TryCreate(ctx, in)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
	assert.Zero(t, coll.inserts)
}

func TestCreateInsertsMappings(t *testing.T) {
	ctx := context.Background()
	coll := newMemCollection()
	g := New(coll)

	assert.True(t, g.Create(ctx, animal("Dog", "Beagle", 20)))
	assert.True(t, g.Create(ctx, bson.M{"animal_type": "Cat"}))
	assert.True(t, g.Create(ctx, map[string]string{"animal_type": "Bird"}))
	assert.True(t, g.Create(ctx, map[string]interface{}{
		"animal_type": "Dog",
		"tags":        []string{"friendly", "trained"},
		"location":    map[string]interface{}{"lat": 30.2, "long": -97.7},
		"fixed":       true,
	}))

	assert.Equal(t, 4, coll.inserts)
	assert.Len(t, g.Read(ctx, nil), 4)
}

func TestCreateWithoutAssignedID(t *testing.T) {
	coll := newMemCollection()
	coll.omitID = true
	g := New(coll)

	created, err := g.TryCreate(context.Background(), animal("Dog", "Beagle", 20))
	require.NoError(t, err)
	assert.False(t, created)
	assert.False(t, g.Create(context.Background(), animal("Dog", "Pug", 30)))
}

func TestCreateStoreFault(t *testing.T) {
	logs := captureLogs(t)
	coll := newMemCollection()
	coll.insertErr = errors.New("connection refused")
	g := New(coll)

	assert.False(t, g.Create(context.Background(), animal("Dog", "Beagle", 20)))
	assert.Contains(t, logs.String(), "connection refused")

	_, err := g.TryCreate(context.Background(), animal("Dog", "Beagle", 20))
	assert.ErrorIs(t, err, ErrStoreFault)

	var fault *StoreFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "insert", fault.Op)
}

func TestCreateRecoversFromPanic(t *testing.T) {
	coll := newMemCollection()
	coll.panicOn = "insert"
	g := New(coll)

	assert.NotPanics(t, func() {
		assert.False(t, g.Create(context.Background(), animal("Dog", "Beagle", 20)))
	})
}

func TestReadWithoutFilterReturnsEverything(t *testing.T) {
	coll := newMemCollection(
		animal("Dog", "Beagle", 20),
		animal("Cat", "Siamese", 10),
		animal("Dog", "Bloodhound", 60),
	)
	g := New(coll)

	records := g.Read(context.Background(), nil)
	require.Len(t, records, len(coll.docs))
	assert.Equal(t, []string{"Beagle", "Siamese", "Bloodhound"}, breedsOf(t, records))

	assert.Len(t, g.Read(context.Background(), bson.M{}), 3)
}

func TestReadPreservesFieldOrder(t *testing.T) {
	g := New(newMemCollection(animal("Dog", "Beagle", 20)))

	records := g.Read(context.Background(), nil)
	require.Len(t, records, 1)

	var keys []string
	for _, e := range records[0] {
		keys = append(keys, e.Key)
	}
	if diff := cmp.Diff([]string{"_id", "animal_type", "breed", "age_upon_outcome_in_weeks"}, keys); diff != "" {
		t.Errorf("field order mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFilters(t *testing.T) {
	g := New(newMemCollection(
		animal("Dog", "Beagle", 20),
		animal("Cat", "Siamese", 10),
		animal("Dog", "Bloodhound", 60),
	))
	ctx := context.Background()

	assert.Equal(t, []string{"Beagle", "Bloodhound"}, breedsOf(t, g.Read(ctx, bson.M{"animal_type": "Dog"})))
	assert.Equal(t, []string{"Beagle", "Siamese"}, breedsOf(t, g.Read(ctx, bson.M{
		"age_upon_outcome_in_weeks": bson.M{"$lte": 20},
	})))
	assert.Empty(t, g.Read(ctx, bson.M{"animal_type": "Horse"}))
}

func TestReadRejectsNonMappings(t *testing.T) {
	g := New(newMemCollection(animal("Dog", "Beagle", 20)))

	for _, in := range []interface{}{"animal_type=Dog", 7, []interface{}{"Dog"}} {
		records := g.Read(context.Background(), in)
		assert.NotNil(t, records)
		assert.Empty(t, records)

		_, err := g.TryRead(context.Background(), in)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestReadStoreFault(t *testing.T) {
	coll := newMemCollection(animal("Dog", "Beagle", 20))
	coll.findErr = errors.New("server selection timeout")
	g := New(coll)

	records := g.Read(context.Background(), nil)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	_, err := g.TryRead(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStoreFault)
}

func TestUpdateModifiesOnlyMatchingRecords(t *testing.T) {
	coll := newMemCollection(
		animal("Dog", "Beagle", 20),
		animal("Dog", "Beagle", 30),
		animal("Cat", "Siamese", 10),
	)
	g := New(coll)
	ctx := context.Background()

	filter := bson.M{"breed": "Beagle"}
	matched := len(g.Read(ctx, filter))

	n := g.Update(ctx, filter, bson.M{"outcome_type": "Adoption"})
	assert.Equal(t, int64(2), n)
	assert.LessOrEqual(t, n, int64(matched))

	for _, r := range g.Read(ctx, nil) {
		outcome, has := Lookup(r, "outcome_type")
		if fieldOf(t, r, "breed") == "Beagle" {
			assert.Equal(t, "Adoption", outcome)
		} else {
			assert.False(t, has, "non-matching record was modified: %v", r)
		}
	}

	// Applying the same values again matches both but modifies none.
	assert.Zero(t, g.Update(ctx, filter, bson.M{"outcome_type": "Adoption"}))
}

func TestUpdateWrapsSpecInSet(t *testing.T) {
	coll := newMemCollection(animal("Dog", "Beagle", 20))
	g := New(coll)

	g.Update(context.Background(), bson.M{}, bson.M{"name": "Rex"})
	require.Len(t, coll.updates, 1)

	set, ok := Lookup(coll.updates[0], "$set")
	require.True(t, ok)
	assert.Equal(t, bson.D{{Key: "name", Value: "Rex"}}, set)
}

func TestUpdateMergesFields(t *testing.T) {
	g := New(newMemCollection(animal("Dog", "Beagle", 20)))
	ctx := context.Background()

	require.Equal(t, int64(1), g.Update(ctx, bson.M{"breed": "Beagle"}, bson.M{"name": "Rex"}))

	records := g.Read(ctx, nil)
	require.Len(t, records, 1)
	assert.Equal(t, "Rex", fieldOf(t, records[0], "name"))
	assert.Equal(t, "Dog", fieldOf(t, records[0], "animal_type"))
}

func TestUpdateValidation(t *testing.T) {
	coll := newMemCollection(animal("Dog", "Beagle", 20))
	g := New(coll)
	ctx := context.Background()

	assert.Zero(t, g.Update(ctx, "breed=Beagle", bson.M{"name": "Rex"}))
	assert.Zero(t, g.Update(ctx, bson.M{"breed": "Beagle"}, "name=Rex"))
	assert.Zero(t, g.Update(ctx, nil, bson.M{"name": "Rex"}))

	_, err := g.TryUpdate(ctx, bson.M{}, []string{"name"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, coll.updates)
}

func TestUpdateStoreFault(t *testing.T) {
	coll := newMemCollection(animal("Dog", "Beagle", 20))
	g := New(coll)
	ctx := context.Background()

	// An empty $set is rejected by the store.
	assert.Zero(t, g.Update(ctx, bson.M{}, bson.M{}))

	coll.updateErr = errors.New("not primary")
	assert.Zero(t, g.Update(ctx, bson.M{}, bson.M{"name": "Rex"}))
	_, err := g.TryUpdate(ctx, bson.M{}, bson.M{"name": "Rex"})
	assert.ErrorIs(t, err, ErrStoreFault)
}

func TestDeleteThenReadIsEmpty(t *testing.T) {
	g := New(newMemCollection(
		animal("Dog", "Beagle", 20),
		animal("Dog", "Beagle", 30),
		animal("Cat", "Siamese", 10),
	))
	ctx := context.Background()
	filter := bson.M{"breed": "Beagle"}

	assert.Equal(t, int64(2), g.Delete(ctx, filter))
	assert.Empty(t, g.Read(ctx, filter))
	assert.Zero(t, g.Delete(ctx, filter))
	assert.Len(t, g.Read(ctx, nil), 1)
}

func TestDeleteValidationAndFault(t *testing.T) {
	coll := newMemCollection(animal("Dog", "Beagle", 20))
	g := New(coll)
	ctx := context.Background()

	assert.Zero(t, g.Delete(ctx, nil))
	assert.Zero(t, g.Delete(ctx, "everything"))
	_, err := g.TryDelete(ctx, 12)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Len(t, coll.docs, 1)

	coll.deleteErr = errors.New("write concern error")
	assert.Zero(t, g.Delete(ctx, bson.M{}))
	_, err = g.TryDelete(ctx, bson.M{})
	assert.ErrorIs(t, err, ErrStoreFault)
}

func TestNilCollectionNeverPanics(t *testing.T) {
	g := New(nil)
	ctx := context.Background()

	assert.False(t, g.Create(ctx, bson.M{"a": 1}))
	assert.Empty(t, g.Read(ctx, nil))
	assert.Zero(t, g.Update(ctx, bson.M{}, bson.M{"a": 2}))
	assert.Zero(t, g.Delete(ctx, bson.M{}))
}

func TestConcurrentReadsShareOneGateway(t *testing.T) {
	buf := captureLogs(t)
	g := New(newMemCollection(
		animal("Dog", "Newfoundland", 50),
		animal("Dog", "Bloodhound", 30),
		animal("Cat", "Siamese", 10),
	))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8*5*4)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				if _, err := g.TryRead(ctx, "bad"); !errors.Is(err, ErrValidation) {
					errs <- fmt.Errorf("TryRead(\"bad\") = %v", err)
				}
				if got := g.Read(ctx, 5); len(got) != 0 {
					errs <- fmt.Errorf("Read(5) returned %d records", len(got))
				}
				if got := g.ReadWaterRescue(ctx); len(got) != 1 {
					errs <- fmt.Errorf("ReadWaterRescue returned %d records", len(got))
				}
				if got := g.Read(ctx, nil); len(got) != 3 {
					errs <- fmt.Errorf("Read(nil) returned %d records", len(got))
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Contains(t, buf.String(), "validation error")
}

func TestWaterRescueScenario(t *testing.T) {
	g := New(newMemCollection(
		animal("Dog", "Newfoundland", 50),
		animal("Cat", "Siamese", 10),
	))

	records := g.ReadWaterRescue(context.Background())
	require.Len(t, records, 1)
	assert.Equal(t, "Dog", fieldOf(t, records[0], "animal_type"))
	assert.Equal(t, "Newfoundland", fieldOf(t, records[0], "breed"))
	assert.EqualValues(t, 50, fieldOf(t, records[0], "age_upon_outcome_in_weeks"))
}

func TestPresetReads(t *testing.T) {
	fixture := []bson.D{
		animal("Dog", "Labrador Retriever", 30),
		animal("Dog", "Labrador Retriever", 105), // too old
		animal("Dog", "Newfoundland", 104),       // boundary
		animal("Cat", "Newfoundland", 10),        // wrong type
		animal("Dog", "German Shepherd", 52),
		animal("Dog", "Siberian Husky", 12),
		animal("Dog", "Bloodhound", 90),
		animal("Dog", "Belgian Malinois", 200), // too old
		animal("Dog", "Beagle", 20),
	}
	g := New(newMemCollection(fixture...))
	ctx := context.Background()

	assert.Equal(t, []string{"Labrador Retriever", "Newfoundland"}, breedsOf(t, g.ReadWaterRescue(ctx)))
	assert.Equal(t, []string{"German Shepherd", "Siberian Husky"}, breedsOf(t, g.ReadMountainRescue(ctx)))
	assert.Equal(t, []string{"German Shepherd", "Bloodhound"}, breedsOf(t, g.ReadDisasterTracking(ctx)))

	all := g.Read(ctx, bson.M{})
	for _, p := range Presets() {
		breeds := p.Breeds()
		for _, r := range g.ReadPreset(ctx, p) {
			assert.Contains(t, all, r)
			assert.Equal(t, "Dog", fieldOf(t, r, "animal_type"))
			assert.Contains(t, breeds, fieldOf(t, r, "breed"))
			weeks, _ := number(fieldOf(t, r, "age_upon_outcome_in_weeks"))
			assert.LessOrEqual(t, weeks, float64(MaxRescueAgeWeeks))
		}
	}
}

func TestPresetFiltersAreImmutable(t *testing.T) {
	f := PresetWaterRescue.Filter()
	f[0].Value = "Cat"
	breeds := PresetWaterRescue.Breeds()
	breeds[0] = "Poodle"

	fresh := PresetWaterRescue.Filter()
	assert.Equal(t, "Dog", fresh[0].Value)
	assert.Equal(t, "Labrador Retriever", PresetWaterRescue.Breeds()[0])
}

func TestParsePreset(t *testing.T) {
	for in, want := range map[string]Preset{
		"water":             PresetWaterRescue,
		"mountain-rescue":   PresetMountainRescue,
		"disaster":          PresetDisasterTracking,
		"disaster-tracking": PresetDisasterTracking,
	} {
		got, err := ParsePreset(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParsePreset("avalanche")
	assert.Error(t, err)
}
