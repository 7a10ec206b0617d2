package service

import (
	"math/rand"
	"sync"

	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
)

// EnvironmentalReading 环境读数
type EnvironmentalReading struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Location    string  `json:"location"`
}

// EnvironmentSampler 环境采样接口
// 生产环境可替换为真实传感器数据源,下游组件不感知差异
type EnvironmentSampler interface {
	Sample(storageCategory string) EnvironmentalReading
}

// categoryBand 存储类别的环境取值区间
type categoryBand struct {
	minTemp     float64
	maxTemp     float64
	minHumidity float64
	maxHumidity float64
	location    string
}

// 各存储类别的固定区间,未知类别回退到 ambient
var categoryBands = map[string]categoryBand{
	model.StorageRefrigerated: {
		minTemp: 2, maxTemp: 5,
		minHumidity: 85, maxHumidity: 95,
		location: "Cold Storage A",
	},
	model.StorageFrozen: {
		minTemp: -25, maxTemp: -18,
		minHumidity: 85, maxHumidity: 95,
		location: "Freezer Unit B",
	},
	model.StorageAmbient: {
		minTemp: 18, maxTemp: 25,
		minHumidity: 40, maxHumidity: 70,
		location: "Dry Storage C",
	},
	model.StorageControlledAtmosphere: {
		minTemp: 0, maxTemp: 4,
		minHumidity: 90, maxHumidity: 98,
		location: "CA Chamber D",
	},
}

// SimulatedEnvironment 模拟环境采样器
// 每次调用从类别区间内取一个新样本
type SimulatedEnvironment struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedEnvironment 创建模拟环境采样器
func NewSimulatedEnvironment(seed int64) *SimulatedEnvironment {
	return &SimulatedEnvironment{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Sample 采样指定存储类别的环境读数
func (s *SimulatedEnvironment) Sample(storageCategory string) EnvironmentalReading {
	band, ok := categoryBands[storageCategory]
	if !ok {
		band = categoryBands[model.StorageAmbient]
	}

	s.mu.Lock()
	t := band.minTemp + s.rng.Float64()*(band.maxTemp-band.minTemp)
	h := band.minHumidity + s.rng.Float64()*(band.maxHumidity-band.minHumidity)
	s.mu.Unlock()

	return EnvironmentalReading{
		Temperature: roundTo(t, 1),
		Humidity:    roundTo(h, 1),
		Location:    band.location,
	}
}

func roundTo(v float64, places int) float64 {
	factor := 1.0
	for i := 0; i < places; i++ {
		factor *= 10
	}
	return float64(int(v*factor+0.5*sign(v))) / factor
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
