package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/urbanlens/counterfact/domain/counterfactual"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Common field constructors for the counterfactual runtime.

// RunID adds a run ID field.
func RunID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("run_id", id)
	}
}

// State adds a workflow state field.
func State(s counterfactual.State) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("state", string(s))
	}
}

// ImagePath adds the input image path field.
func ImagePath(path string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("image", path)
	}
}

// TargetAttribute adds the perceptual attribute field.
func TargetAttribute(attr string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("target_attribute", attr)
	}
}

// TargetObject adds the target object field.
func TargetObject(obj string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("target_object", obj)
	}
}

// Attempt adds the attempt counter field.
func Attempt(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("attempt", n)
	}
}

// Model adds a backend model identifier field.
func Model(model string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("model", model)
	}
}

// UsedMock adds the mock fallback flag field.
func UsedMock(mock bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("used_mock", mock)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// Bool adds an arbitrary boolean field.
func Bool(key string, value bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool(key, value)
	}
}

// Str adds an arbitrary string field.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Str("error", err.Error())
	}
}
