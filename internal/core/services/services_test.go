package services_test

import (
	"context"
	"errors"
	"math/rand"

	"github.com/IANDYI/longevity-service/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockPredictiveModel is a mock implementation of ports.PredictiveModel
type MockPredictiveModel struct {
	mock.Mock
}

func (m *MockPredictiveModel) Predict(ctx context.Context, features []float64) (float64, error) {
	args := m.Called(ctx, features)
	return args.Get(0).(float64), args.Error(1)
}

// scenarioB is the 45-year-old male reference case
func scenarioB() (domain.BodyComposition, domain.HealthHistory) {
	body := domain.BodyComposition{
		HeightM:                1.65,
		WeightKG:               70,
		BodyFatPct:             25,
		VisceralFatLevel:       8,
		SkeletalMuscleMassKG:   30,
		BasalMetabolicRateKcal: 1500,
	}
	history := domain.HealthHistory{
		Age:            45,
		Sex:            domain.SexMale,
		SystolicBP:     120,
		FastingGlucose: 90,
	}
	return body, history
}

// healthyFemale scores zero on every term
func healthyFemale() (domain.BodyComposition, domain.HealthHistory) {
	body := domain.BodyComposition{
		HeightM:                1.70,
		WeightKG:               58,
		BodyFatPct:             20,
		VisceralFatLevel:       3,
		SkeletalMuscleMassKG:   35,
		BasalMetabolicRateKcal: 1600,
	}
	history := domain.HealthHistory{
		Age:            30,
		Sex:            domain.SexFemale,
		SystolicBP:     115,
		FastingGlucose: 85,
	}
	return body, history
}

// randomRecords draws records uniformly from the validated input ranges
func randomRecords(r *rand.Rand) (domain.BodyComposition, domain.HealthHistory) {
	between := func(lo, hi float64) float64 { return lo + r.Float64()*(hi-lo) }
	sex := domain.SexMale
	if r.Intn(2) == 0 {
		sex = domain.SexFemale
	}
	body := domain.BodyComposition{
		HeightM:                between(140, 220) / 100,
		WeightKG:               between(40, 200),
		BodyFatPct:             between(5, 60),
		VisceralFatLevel:       between(1, 20),
		SkeletalMuscleMassKG:   between(20, 50),
		BasalMetabolicRateKcal: between(1000, 2500),
	}
	history := domain.HealthHistory{
		Age:              18 + r.Intn(83),
		Sex:              sex,
		IsSmoker:         r.Intn(2) == 0,
		SystolicBP:       between(90, 200),
		FastingGlucose:   between(70, 300),
		FamilyHistoryCVD: r.Intn(2) == 0,
	}
	return body, history
}

var errBoom = errors.New("boom")

