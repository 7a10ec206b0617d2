package service

import (
	"testing"

	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestSampleStaysWithinCategoryBand(t *testing.T) {
	sampler := NewSimulatedEnvironment(42)

	cases := []struct {
		category string
		minTemp  float64
		maxTemp  float64
		minHum   float64
		maxHum   float64
		location string
	}{
		{model.StorageRefrigerated, 2, 5, 85, 95, "Cold Storage A"},
		{model.StorageFrozen, -25, -18, 85, 95, "Freezer Unit B"},
		{model.StorageAmbient, 18, 25, 40, 70, "Dry Storage C"},
		{model.StorageControlledAtmosphere, 0, 4, 90, 98, "CA Chamber D"},
	}

	for _, tc := range cases {
		t.Run(tc.category, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				reading := sampler.Sample(tc.category)
				// 读数取一位小数,区间判断放宽半个最小刻度
				assert.GreaterOrEqual(t, reading.Temperature, tc.minTemp-0.05)
				assert.LessOrEqual(t, reading.Temperature, tc.maxTemp+0.05)
				assert.GreaterOrEqual(t, reading.Humidity, tc.minHum-0.05)
				assert.LessOrEqual(t, reading.Humidity, tc.maxHum+0.05)
				assert.Equal(t, tc.location, reading.Location)
			}
		})
	}
}

func TestSampleUnknownCategoryUsesAmbient(t *testing.T) {
	sampler := NewSimulatedEnvironment(7)

	reading := sampler.Sample("mystery_room")
	assert.Equal(t, "Dry Storage C", reading.Location)
	assert.GreaterOrEqual(t, reading.Temperature, 18.0-0.05)
	assert.LessOrEqual(t, reading.Temperature, 25.0+0.05)
}

func TestSampleDeterministicWithSeed(t *testing.T) {
	a := NewSimulatedEnvironment(99)
	b := NewSimulatedEnvironment(99)

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Sample(model.StorageRefrigerated), b.Sample(model.StorageRefrigerated))
	}
}
