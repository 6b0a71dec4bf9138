package vm

import "github.com/n3ledger/core/pkg/vm/stackitem"

// Exception is thrown by THROW/ABORT-family opcodes and runtime faults,
// carrying the stack item passed to THROW (or a string message for
// engine-raised faults).
type Exception struct {
	Value stackitem.Item
}

func (e *Exception) Error() string {
	s, err := e.Value.Bytes()
	if err != nil {
		return e.Value.String()
	}
	return string(s)
}

// NewException wraps a string as a thrown ByteString exception, the shape
// engine-raised faults (div by zero, bad cast, OOB) use.
func NewException(msg string) *Exception {
	return &Exception{Value: stackitem.NewByteArray([]byte(msg))}
}
