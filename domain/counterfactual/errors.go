package counterfactual

import "errors"

// Domain errors for the counterfactual runtime.
var (
	// ErrMissingEditedImage indicates critique was invoked before an
	// edited image was produced.
	ErrMissingEditedImage = errors.New("missing edited image before critique")

	// ErrMissingMask indicates inpainting was invoked before a mask was
	// produced.
	ErrMissingMask = errors.New("missing mask before inpainting")

	// ErrUnsupportedBackend indicates the configured editing backend is
	// not recognized.
	ErrUnsupportedBackend = errors.New("unsupported editing backend")

	// ErrUnsupportedImageFormat indicates an image file suffix the
	// planner cannot encode for a vision prompt.
	ErrUnsupportedImageFormat = errors.New("unsupported image format")

	// ErrRunTerminated indicates an operation was attempted on a
	// terminated run.
	ErrRunTerminated = errors.New("run already terminated")
)
