package indicator

import (
	"slices"
	"sync"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

// IndicatorRegistry holds one indicator per type.
type IndicatorRegistry interface {
	// Register adds ind. A second indicator of the same type is rejected.
	Register(ind Indicator) error
	// Replace adds ind, dropping any indicator of the same type.
	Replace(ind Indicator)
	Get(name types.IndicatorType) (Indicator, error)
	// Configure passes params to the registered indicator's Config.
	Configure(name types.IndicatorType, params ...any) error
	// Names lists registered types in sorted order.
	Names() []types.IndicatorType
}

// Registry is the IndicatorRegistry used by the analysis pipeline.
type Registry struct {
	mu         sync.RWMutex
	indicators map[types.IndicatorType]Indicator
}

// NewIndicatorRegistry creates an empty registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &Registry{
		mu:         sync.RWMutex{},
		indicators: make(map[types.IndicatorType]Indicator),
	}
}

// NewDefaultRegistry registers RSI and Bollinger Bands with their default periods.
func NewDefaultRegistry() IndicatorRegistry {
	r := NewIndicatorRegistry()
	r.Replace(NewRSI())
	r.Replace(NewBollingerBands())

	return r
}

func (r *Registry) Register(ind Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.indicators[ind.Name()]; taken {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "%s is already registered", ind.Name())
	}

	r.indicators[ind.Name()] = ind

	return nil
}

func (r *Registry) Replace(ind Indicator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.indicators[ind.Name()] = ind
}

func (r *Registry) Get(name types.IndicatorType) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ind, ok := r.indicators[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "%s is not registered", name)
	}

	return ind, nil
}

func (r *Registry) Configure(name types.IndicatorType, params ...any) error {
	ind, err := r.Get(name)
	if err != nil {
		return err
	}

	return ind.Config(params...)
}

func (r *Registry) Names() []types.IndicatorType {
	r.mu.RLock()
	names := make([]types.IndicatorType, 0, len(r.indicators))
	for name := range r.indicators {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)

	return names
}
