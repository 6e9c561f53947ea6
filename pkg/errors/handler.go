package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultHandler is the global error handler.
	// It defaults to LogHandler with verbose=false.
	DefaultHandler ErrorHandler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler configures the global error handler.
// Pass nil to restore the default LogHandler.
func SetHandler(h ErrorHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		DefaultHandler = &LogHandler{}
	} else {
		DefaultHandler = h
	}
}

// getHandler returns the current error handler.
func getHandler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// Report sends an error to the global handler.
// If err.Timestamp is zero, it is set to the current time.
func Report(err *SduiError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := getHandler(); h != nil {
		h.HandleError(err)
	}
}

// ReportErr wraps err in an SduiError and reports it. A nil err is ignored.
func ReportErr(op string, kind ErrorKind, nodeType string, err error) {
	if err == nil {
		return
	}
	Report(&SduiError{
		Op:       op,
		Kind:     kind,
		Err:      err,
		NodeType: nodeType,
	})
}

// ReportPanic sends a panic error to the global handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := getHandler(); h != nil {
		h.HandlePanic(err)
	}
}

// Recover is a helper for deferred panic recovery.
// Usage: defer errors.Recover("bitmap.Load")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{
			Op:         op,
			Value:      r,
			StackTrace: CaptureStack(),
			Timestamp:  time.Now(),
		})
	}
}

// RecoverWithCallback is like Recover but also calls the provided callback
// with the panic value after reporting it.
func RecoverWithCallback(op string, callback func(r any)) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{
			Op:         op,
			Value:      r,
			StackTrace: CaptureStack(),
			Timestamp:  time.Now(),
		})
		if callback != nil {
			callback(r)
		}
	}
}

// CaptureStack returns the current call stack as a string.
// It skips the runtime.Callers and CaptureStack frames.
func CaptureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		sb.WriteString(frame.Function)
		sb.WriteString("\n\t")
		sb.WriteString(frame.File)
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(frame.Line))
		sb.WriteString("\n")
		if !more {
			break
		}
	}
	return sb.String()
}

// Collector is an ErrorHandler that records everything it receives and
// optionally forwards to another handler. It is safe for concurrent use.
type Collector struct {
	// Next receives every error after it is recorded. May be nil.
	Next ErrorHandler

	mu     sync.Mutex
	errs   []*SduiError
	panics []*PanicError
}

// HandleError records err and forwards it.
func (c *Collector) HandleError(err *SduiError) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
	if c.Next != nil {
		c.Next.HandleError(err)
	}
}

// HandlePanic records err and forwards it.
func (c *Collector) HandlePanic(err *PanicError) {
	c.mu.Lock()
	c.panics = append(c.panics, err)
	c.mu.Unlock()
	if c.Next != nil {
		c.Next.HandlePanic(err)
	}
}

// Errors returns a copy of the recorded errors.
func (c *Collector) Errors() []*SduiError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*SduiError(nil), c.errs...)
}

// Panics returns a copy of the recorded panics.
func (c *Collector) Panics() []*PanicError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*PanicError(nil), c.panics...)
}

// Count returns how many errors of the given kind were recorded. Panics are
// counted under KindPanic.
func (c *Collector) Count(kind ErrorKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind == KindPanic {
		return len(c.panics)
	}
	n := 0
	for _, err := range c.errs {
		if err.Kind == kind {
			n++
		}
	}
	return n
}
