package errors

// ErrorCode identifies an error independently of its message.
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = 1

	// Validation of user input, configuration and indicator parameters.
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInsufficientData     ErrorCode = 106
	ErrCodeInvalidType          ErrorCode = 107
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidStdDev        ErrorCode = 113
	ErrCodeInvalidMarket        ErrorCode = 120
	ErrCodeInvalidTimeframe     ErrorCode = 121

	// Candle storage.
	ErrCodeNoDataFound ErrorCode = 204
	ErrCodeCacheFailed ErrorCode = 206

	// Indicator registry and calculation.
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Market data sources.
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataSchema      ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 704
)
