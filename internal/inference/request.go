package inference

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidOptions is returned by Request.Validate.
var ErrInvalidOptions = errors.New("invalid generation options")

const (
	DefaultSteps       = 100
	DefaultTemperature = 0.5
)

// GenDefaults are generation settings shipped with a model.
type GenDefaults struct {
	Temperature *float64
	Steps       *int
}

type RequestOptions struct {
	SeedText *string

	Steps       *int
	Temperature *float64
	RNGSeed     *int64
	Strict      *bool
}

// ResolveRequest applies model defaults, then explicit options, over the
// built-in defaults.
func ResolveRequest(opts RequestOptions, defaults GenDefaults) Request {
	req := Request{
		Steps:       DefaultSteps,
		Temperature: DefaultTemperature,
		RNGSeed:     -1,
	}

	if defaults.Temperature != nil && *defaults.Temperature > 0 {
		req.Temperature = *defaults.Temperature
	}
	if defaults.Steps != nil && *defaults.Steps >= 0 {
		req.Steps = *defaults.Steps
	}

	if opts.SeedText != nil {
		req.SeedText = *opts.SeedText
	}
	if opts.Steps != nil {
		req.Steps = *opts.Steps
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if opts.RNGSeed != nil {
		req.RNGSeed = *opts.RNGSeed
	}
	if opts.Strict != nil {
		req.Strict = *opts.Strict
	}

	return req
}

// Validate reports settings no generation can run with.
func (r *Request) Validate() error {
	if r.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalidOptions, r.Steps)
	}
	if r.Temperature <= 0 || math.IsNaN(r.Temperature) || math.IsInf(r.Temperature, 0) {
		return fmt.Errorf("%w: temperature must be a positive number, got %v", ErrInvalidOptions, r.Temperature)
	}
	return nil
}
