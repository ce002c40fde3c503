package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/remiblancher/capikey/pkg/rsakey"
)

var (
	// globalWriter is the default audit writer.
	globalWriter Writer = NopWriter{}
	globalMu     sync.RWMutex

	// enabled tracks whether audit logging is active.
	enabled bool
)

// Init installs w as the global audit writer. A nil writer disables auditing.
func Init(w Writer) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if w == nil {
		globalWriter = NopWriter{}
		enabled = false
		return nil
	}
	globalWriter = w
	enabled = true
	return nil
}

// InitFile initializes the global audit logger with a file writer.
func InitFile(path string) error {
	if path == "" {
		return Init(nil)
	}
	w, err := NewFileWriter(path)
	if err != nil {
		return err
	}
	return Init(w)
}

// Close closes the global audit writer.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	err := globalWriter.Close()
	globalWriter = NopWriter{}
	enabled = false
	return err
}

// Enabled returns whether audit logging is active.
func Enabled() bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return enabled
}

// Log writes an audit event to the global writer.
func Log(event *Event) error {
	globalMu.RLock()
	w := globalWriter
	globalMu.RUnlock()

	return w.Write(event)
}

// MustLog writes an audit event and returns an error suitable for
// failing the parent operation if audit logging fails.
func MustLog(event *Event) error {
	if err := Log(event); err != nil {
		return fmt.Errorf("audit log failed: %w", err)
	}
	return nil
}

// Fingerprint returns the SHA-256 of the key modulus.
func Fingerprint(k rsakey.Key) string {
	if rsakey.IsNil(k) {
		return ""
	}
	sum := sha256.Sum256(k.Public().Modulus)
	return HashPrefix + hex.EncodeToString(sum[:])
}

// KeyObject describes k for an audit event.
func KeyObject(objType, path string, k rsakey.Key) Object {
	obj := Object{Type: objType, Path: path}
	if !rsakey.IsNil(k) {
		obj.Fingerprint = Fingerprint(k)
		obj.BitLength = k.BitLength()
	}
	return obj
}

func resultOf(err error) (Result, string) {
	if err != nil {
		return ResultFailure, err.Error()
	}
	return ResultSuccess, ""
}

// LogBlobParsed logs the decoding of a key blob.
func LogBlobParsed(path string, k rsakey.Key, requestID string, opErr error) error {
	result, reason := resultOf(opErr)
	event := NewEvent(EventBlobParsed, result).
		WithObject(KeyObject("blob", path, k)).
		WithContext(Context{
			Format:    "blob",
			Private:   rsakey.IsPrivate(k),
			RequestID: requestID,
			Reason:    reason,
		})
	return MustLog(event)
}

// LogBlobBuilt logs the encoding of a key into a blob.
func LogBlobBuilt(path string, k rsakey.Key, private bool, requestID string) error {
	event := NewEvent(EventBlobBuilt, ResultSuccess).
		WithObject(KeyObject("blob", path, k)).
		WithContext(Context{
			Format:    "blob",
			Private:   private,
			RequestID: requestID,
		})
	return MustLog(event)
}

// LogKeyExported logs an export of k to another format.
func LogKeyExported(path string, k rsakey.Key, format string, private bool, requestID string) error {
	event := NewEvent(EventKeyExported, ResultSuccess).
		WithObject(KeyObject("key", path, k)).
		WithContext(Context{
			Format:    format,
			Private:   private,
			RequestID: requestID,
		})
	return MustLog(event)
}

// LogKeyWeakened logs the weak-exponent transform. The fingerprint is the
// modulus, which the transform leaves intact.
func LogKeyWeakened(path string, k rsakey.Key, requestID string) error {
	event := NewEvent(EventKeyWeakened, ResultSuccess).
		WithObject(KeyObject("blob", path, k)).
		WithContext(Context{
			Format:    "blob",
			Private:   true,
			RequestID: requestID,
		})
	return MustLog(event)
}
