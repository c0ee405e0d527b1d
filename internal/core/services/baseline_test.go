package services_test

import (
	"testing"

	"github.com/IANDYI/longevity-service/internal/core/domain"
	"github.com/IANDYI/longevity-service/internal/core/services"
	"github.com/stretchr/testify/assert"
)

func TestBaseline_ReferenceValues(t *testing.T) {
	assert.InDelta(t, 70.0, services.Baseline(100, domain.SexMale), 1e-9)
	assert.InDelta(t, 81.15, services.Baseline(45, domain.SexFemale), 1e-9)
	assert.InDelta(t, 78.25, services.Baseline(45, domain.SexMale), 1e-9)
}

func TestBaseline_FloorsAcrossValidAges(t *testing.T) {
	for age := 18; age <= 100; age++ {
		assert.GreaterOrEqual(t, services.Baseline(age, domain.SexMale), 50.0, "male age %d", age)
		assert.GreaterOrEqual(t, services.Baseline(age, domain.SexFemale), 52.0, "female age %d", age)
	}
}

func TestBaseline_FloorApplies(t *testing.T) {
	assert.Equal(t, 50.0, services.Baseline(300, domain.SexMale))
	assert.Equal(t, 52.0, services.Baseline(300, domain.SexFemale))
}

func TestMemoizedBaseline_ComputesOncePerKey(t *testing.T) {
	calls := 0
	counting := services.BaselineFunc(func(age int, sex domain.Sex) float64 {
		calls++
		return services.Baseline(age, sex)
	})
	memo := services.NewMemoizedBaseline(counting)

	first := memo.Baseline(45, domain.SexMale)
	second := memo.Baseline(45, domain.SexMale)
	other := memo.Baseline(45, domain.SexFemale)

	assert.Equal(t, first, second)
	assert.InDelta(t, 81.15, other, 1e-9)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, memo.Len())
}
