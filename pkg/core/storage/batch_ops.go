package storage

import "github.com/n3ledger/core/pkg/core/storage/dboper"

// BatchToOperations converts a MemBatch into the Added/Changed/Deleted log
// the way the teacher's diagnostics surface state changes.
func BatchToOperations(b *MemBatch) []dboper.Operation {
	ops := make([]dboper.Operation, 0, len(b.Put)+len(b.Deleted))
	for _, kv := range b.Put {
		state := "Added"
		if kv.Exists {
			state = "Changed"
		}
		ops = append(ops, dboper.Operation{State: state, Key: kv.Key, Value: kv.Value})
	}
	for _, kv := range b.Deleted {
		ops = append(ops, dboper.Operation{State: "Deleted", Key: kv.Key})
	}
	return ops
}
