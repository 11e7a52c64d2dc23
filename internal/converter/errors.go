package converter

import "errors"

// ErrInputNotFound is returned when the folder or a sentinel image does not exist.
var ErrInputNotFound = errors.New("input not found")

// ErrDecodeFailure is returned when a file cannot be opened or decoded as an image.
var ErrDecodeFailure = errors.New("could not decode image")

// ErrWriteFailure is returned when an output file cannot be written.
var ErrWriteFailure = errors.New("could not write output")

// ErrNoImages is returned when there is nothing to convert.
var ErrNoImages = errors.New("no images to convert")
