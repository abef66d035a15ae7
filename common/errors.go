package common

import "errors"

// Errors returned by the post pipeline. Callers match them with errors.Is;
// the wrapped message carries the offending value.
var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidTitle      = errors.New("invalid title")
	ErrDirectoryNotFound = errors.New("directory not found")
	ErrImageDecode       = errors.New("image decode failed")
	ErrConfigLoad        = errors.New("config load failed")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrWrite             = errors.New("write failed")
)
