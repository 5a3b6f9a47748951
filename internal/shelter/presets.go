package shelter

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// MaxRescueAgeWeeks is the oldest age, in weeks, a rescue candidate may be
const MaxRescueAgeWeeks = 104

// Preset names a rescue query bundled with the gateway
type Preset string

const (
	PresetWaterRescue      Preset = "water-rescue"
	PresetMountainRescue   Preset = "mountain-rescue"
	PresetDisasterTracking Preset = "disaster-tracking"
)

var presetBreeds = map[Preset][]string{
	PresetWaterRescue:      {"Labrador Retriever", "Chesapeake Bay Retriever", "Newfoundland"},
	PresetMountainRescue:   {"German Shepherd", "Alaskan Malamute", "Siberian Husky"},
	PresetDisasterTracking: {"Bloodhound", "Belgian Malinois", "German Shepherd"},
}

// Presets returns every preset in a stable order
func Presets() []Preset {
	return []Preset{PresetWaterRescue, PresetMountainRescue, PresetDisasterTracking}
}

// ParsePreset accepts the full preset name or its first word
// ("water", "mountain", "disaster").
func ParsePreset(name string) (Preset, error) {
	switch name {
	case "water", string(PresetWaterRescue):
		return PresetWaterRescue, nil
	case "mountain", string(PresetMountainRescue):
		return PresetMountainRescue, nil
	case "disaster", string(PresetDisasterTracking):
		return PresetDisasterTracking, nil
	}
	return "", fmt.Errorf("unknown preset: %s", name)
}

// Breeds returns a copy of the breeds the preset accepts
func (p Preset) Breeds() []string {
	return append([]string(nil), presetBreeds[p]...)
}

// Filter builds the preset's query. A fresh document is returned on
// every call so the presets cannot be altered through it.
func (p Preset) Filter() bson.D {
	breeds := bson.A{}
	for _, b := range presetBreeds[p] {
		breeds = append(breeds, b)
	}
	return bson.D{
		{Key: "animal_type", Value: "Dog"},
		{Key: "breed", Value: bson.D{{Key: "$in", Value: breeds}}},
		{Key: "age_upon_outcome_in_weeks", Value: bson.D{{Key: "$lte", Value: MaxRescueAgeWeeks}}},
	}
}
