package model

import (
	"github.com/go-playground/validator/v10"

	"github.com/LimeMojito/trading-data-stream/pkg/errors"
)

// NewValidator builds the validator used for tick, bar and criteria checks,
// including the cross-field OHLC ordering rule on bars.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterStructValidation(barStructLevel, Bar{})
	return validate
}

// ValidateModel runs struct validation and maps failures to invalid_argument.
func ValidateModel(validate *validator.Validate, model any) error {
	if err := validate.Struct(model); err != nil {
		return errors.WrapCoded(errors.InvalidArgumentError, err)
	}
	return nil
}

func barStructLevel(sl validator.StructLevel) {
	bar := sl.Current().Interface().(Bar)
	if bar.Low > bar.Open || bar.Open > bar.High {
		sl.ReportError(bar.Open, "Open", "open", "ohlcrange", "")
	}
	if bar.Low > bar.Close || bar.Close > bar.High {
		sl.ReportError(bar.Close, "Close", "close", "ohlcrange", "")
	}
	if bar.Low > bar.High {
		sl.ReportError(bar.Low, "Low", "low", "ohlcrange", "")
	}
	if bar.Period != "" && bar.StartMillisecondsUTC%bar.Period.DurationMilliseconds() != 0 {
		sl.ReportError(bar.StartMillisecondsUTC, "StartMillisecondsUTC", "startMillisecondsUtc", "bargrid", "")
	}
}
