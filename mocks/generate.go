package mocks

//go:generate mockgen -destination=./mock_adapter.go -package=mocks github.com/MLEngineer1/smc-cash-cow/pkg/marketdata/provider Adapter
//go:generate mockgen -destination=./mock_cache.go -package=mocks github.com/MLEngineer1/smc-cash-cow/internal/cache Cache
//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/MLEngineer1/smc-cash-cow/internal/indicator Indicator
