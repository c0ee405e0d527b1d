package services

import (
	"math"
	"sync"

	"github.com/IANDYI/longevity-service/internal/core/domain"
)

// BaselineEstimator maps (age, sex) to an unadjusted life expectancy in years
type BaselineEstimator interface {
	Baseline(age int, sex domain.Sex) float64
}

// BaselineFunc adapts a plain function to BaselineEstimator
type BaselineFunc func(age int, sex domain.Sex) float64

// Baseline calls f(age, sex)
func (f BaselineFunc) Baseline(age int, sex domain.Sex) float64 {
	return f(age, sex)
}

// Baseline is the age/sex-only starting estimate
// Male: max(85 - 0.15*age, 50). Female: max(87 - 0.13*age, 52).
func Baseline(age int, sex domain.Sex) float64 {
	if sex.IsMale() {
		return math.Max(85-float64(age)*0.15, 50)
	}
	return math.Max(87-float64(age)*0.13, 52)
}

type baselineKey struct {
	age int
	sex domain.Sex
}

// MemoizedBaseline caches the results of another estimator per (age, sex)
// The cache belongs to the instance; share one instance to share the cache
type MemoizedBaseline struct {
	next  BaselineEstimator
	cache sync.Map
}

// NewMemoizedBaseline wraps next with a per-instance cache
func NewMemoizedBaseline(next BaselineEstimator) *MemoizedBaseline {
	return &MemoizedBaseline{next: next}
}

// Baseline returns the cached value, computing it on first use
func (m *MemoizedBaseline) Baseline(age int, sex domain.Sex) float64 {
	key := baselineKey{age: age, sex: sex}
	if v, ok := m.cache.Load(key); ok {
		return v.(float64)
	}
	v := m.next.Baseline(age, sex)
	m.cache.Store(key, v)
	return v
}

// Len returns the number of cached entries
func (m *MemoizedBaseline) Len() int {
	n := 0
	m.cache.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}
