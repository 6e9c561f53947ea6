// Package errors provides structured error handling for the layout builder.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindLayout indicates a malformed layout (missing type, depth exceeded).
	KindLayout
	// KindBuild indicates a handler failed to produce an element.
	KindBuild
	// KindAttribute indicates an attribute could not be applied.
	KindAttribute
	// KindBitmap indicates an image reference could not be resolved.
	KindBitmap
	// KindConfig indicates an invalid configuration value.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindLayout:
		return "layout"
	case KindBuild:
		return "build"
	case KindAttribute:
		return "attribute"
	case KindBitmap:
		return "bitmap"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// SduiError represents a structured error raised while building a layout.
type SduiError struct {
	// Op is the operation that failed (e.g., "core.LoadBitmap").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// NodeType is the layout node type involved, if any.
	NodeType string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *SduiError) Error() string {
	if e.NodeType != "" {
		return fmt.Sprintf("%s [%s] type=%s: %v", e.Op, e.Kind, e.NodeType, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *SduiError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "core.ApplyAttribute").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// LayoutError signals a malformed layout. It is the only error the builder
// returns to its caller; every other anomaly is absorbed.
type LayoutError struct {
	// Reason describes what is wrong with the node.
	Reason string
	// Layout is the serialized form of the offending node.
	Layout string
	// Path locates the node from the build root (e.g., "container/1/text").
	Path string
}

func (e *LayoutError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("malformed layout at %s: %s in layout: %s", e.Path, e.Reason, e.Layout)
	}
	return fmt.Sprintf("malformed layout: %s in layout: %s", e.Reason, e.Layout)
}

// ErrorHandler receives errors reported by the builder and its collaborators.
type ErrorHandler interface {
	// HandleError is called when a contained error occurs.
	HandleError(err *SduiError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
