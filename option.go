package flume

import (
	"github.com/brickingsoft/errors"
)

// DefaultLabel is the label carried by event mode deliveries when the
// request did not name one.
const DefaultLabel = "data"

type Options struct {
	DefaultLabel string
}

type Option func(options *Options) (err error)

// WithDefaultLabel sets the label used when RequestBytes is called with an
// empty one.
func WithDefaultLabel(label string) Option {
	return func(options *Options) (err error) {
		if label == "" {
			err = errors.New("flume: default label must not be empty")
			return
		}
		options.DefaultLabel = label
		return
	}
}
