package domain

import "errors"

var (
	// ErrInvalidPrediction means the model returned NaN or an infinite value.
	ErrInvalidPrediction = errors.New("invalid prediction")

	// ErrEmptyInput means a ranking was requested over zero entries.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidConfiguration signals bad static data, such as a non-positive
	// safe limit or a malformed importance set.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnknownPollutant means a name outside the canonical six was used.
	ErrUnknownPollutant = errors.New("unknown pollutant")

	// ErrInvalidReading means an ingress reading was negative or non-finite.
	ErrInvalidReading = errors.New("invalid reading")
)

// ErrorKind returns a short, stable label for the error class, used for
// metric labels and API error codes.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidPrediction):
		return "invalid_prediction"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrInvalidConfiguration):
		return "invalid_configuration"
	case errors.Is(err, ErrUnknownPollutant):
		return "unknown_pollutant"
	case errors.Is(err, ErrInvalidReading):
		return "invalid_reading"
	default:
		return "internal"
	}
}
