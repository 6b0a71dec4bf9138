package storage

import (
	"errors"

	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/core/storage"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// Find's option bits, matching the FindOptions enum the reference client's
// ApplicationEngine.Find takes; a contract ORs these together as the third
// argument to System.Storage.Find.
const (
	FindDefault      int64 = 0
	FindKeysOnly     int64 = 1 << 0
	FindRemovePrefix int64 = 1 << 1
	FindValuesOnly   int64 = 1 << 2
	FindDeserialize  int64 = 1 << 3
	FindPick0        int64 = 1 << 4
	FindPick1        int64 = 1 << 5
	FindBackwards    int64 = 1 << 7

	// FindAll is the bitwise OR of every valid option; any bit outside it
	// is rejected.
	FindAll = FindKeysOnly | FindRemovePrefix | FindValuesOnly | FindDeserialize |
		FindPick0 | FindPick1 | FindBackwards
)

func validateFindOptions(opts int64) error {
	if opts&^FindAll != 0 {
		return errors.New("unknown find option")
	}
	if opts&FindKeysOnly != 0 && opts&(FindValuesOnly|FindDeserialize|FindPick0|FindPick1) != 0 {
		return errors.New("KeysOnly conflicts with other options")
	}
	if opts&FindValuesOnly != 0 && opts&(FindKeysOnly|FindRemovePrefix) != 0 {
		return errors.New("ValuesOnly conflicts with KeysOnly/RemovePrefix")
	}
	if opts&FindPick0 != 0 && opts&FindPick1 != 0 {
		return errors.New("PickField0 conflicts with PickField1")
	}
	if opts&(FindPick0|FindPick1) != 0 && opts&FindDeserialize == 0 {
		return errors.New("PickFieldN requires DeserializeValues")
	}
	return nil
}

// Find implements System.Storage.Find: push a cursor over every key in the
// given context starting with prefix, shaped per opts.
func Find(ic *interop.Context) error {
	stc, err := popContext(ic)
	if err != nil {
		return err
	}
	prefix := ic.VM.Estack().Pop().Bytes()
	opts := ic.VM.Estack().Pop().BigInt().Int64()

	if err := validateFindOptions(opts); err != nil {
		return err
	}

	var results []storage.KeyValue
	ic.DAO.Seek(stc.ID, storage.SeekRange{Prefix: prefix, Backwards: opts&FindBackwards != 0},
		func(k, v []byte) bool {
			results = append(results, storage.KeyValue{
				Key:   append([]byte{}, k...),
				Value: append([]byte{}, v...),
			})
			return true
		})

	ic.VM.Estack().PushItem(stackitem.NewInterop(&storageIterator{
		prefixLen: len(prefix),
		opts:      opts,
		items:     results,
		index:     -1,
	}))
	return nil
}

// storageIterator implements iterator.Iterator over a Find result set,
// deserializing and picking fields lazily so a bad value only faults the
// contract when it is actually observed.
type storageIterator struct {
	items     []storage.KeyValue
	index     int
	prefixLen int
	opts      int64
}

func (it *storageIterator) Next() bool {
	if it.index+1 >= len(it.items) {
		return false
	}
	it.index++
	return true
}

func (it *storageIterator) Value() stackitem.Item {
	kv := it.items[it.index]
	key := kv.Key
	if it.opts&FindRemovePrefix != 0 {
		key = key[it.prefixLen:]
	}

	value := kv.Value
	var valueItem stackitem.Item = stackitem.NewByteArray(value)
	if it.opts&FindDeserialize != 0 {
		item, err := stackitem.Deserialize(value)
		if err != nil {
			panic(err)
		}
		valueItem = item
		if it.opts&(FindPick0|FindPick1) != 0 {
			arr, ok := item.Value().([]stackitem.Item)
			if !ok {
				panic("PickFieldN target is not an array")
			}
			idx := 0
			if it.opts&FindPick1 != 0 {
				idx = 1
			}
			if idx >= len(arr) {
				panic("PickFieldN index out of range")
			}
			valueItem = arr[idx]
		}
	}

	switch {
	case it.opts&FindKeysOnly != 0:
		return stackitem.NewByteArray(key)
	case it.opts&FindValuesOnly != 0:
		return valueItem
	default:
		return stackitem.NewStruct([]stackitem.Item{
			stackitem.NewByteArray(key),
			valueItem,
		})
	}
}
