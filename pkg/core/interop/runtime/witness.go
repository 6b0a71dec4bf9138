package runtime

import (
	"errors"
	"fmt"

	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/core/state"
	"github.com/n3ledger/core/pkg/core/transaction"
	"github.com/n3ledger/core/pkg/crypto/keys"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// CheckWitness implements System.Runtime.CheckWitness: pop a script hash or
// compressed public key and push whether it witnessed the running
// transaction within the scope it was signed for.
func CheckWitness(ic *interop.Context) error {
	b := ic.VM.Estack().Pop().Bytes()

	var hash util.Uint160
	var err error
	switch len(b) {
	case util.Uint160Size:
		hash, err = util.Uint160DecodeBytesBE(b)
		if err != nil {
			return err
		}
	case 33:
		pub, err := keys.NewPublicKeyFromBytes(b)
		if err != nil {
			return err
		}
		hash = pub.GetScriptHash()
	default:
		return errors.New("invalid length for a witness hash/public key")
	}

	ok, err := checkWitness(ic, hash)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushVal(ok)
	return nil
}

func checkWitness(ic *interop.Context, hash util.Uint160) (bool, error) {
	if ic.Tx == nil {
		return false, errors.New("no transaction to check witnesses against")
	}
	for _, signer := range ic.Tx.Signers {
		if signer.Account != hash {
			continue
		}
		return checkScope(ic, signer)
	}
	return false, nil
}

// checkScope evaluates whether the currently executing frame falls inside
// the scope signer's witness was restricted to. Group-based scopes
// (CustomGroups, and the ConditionGroup/ConditionCalledByGroup rule
// conditions) require resolving a deployed contract's manifest group
// membership, which this interop has no native-contract lookup to perform
// yet; they are treated as never matching rather than silently granted.
func checkScope(ic *interop.Context, signer transaction.Signer) (bool, error) {
	if signer.Scopes&transaction.Global != 0 {
		return true, nil
	}

	current := ic.VM.Context()
	if current == nil {
		return false, errors.New("no executing context")
	}
	currentHash := current.ScriptHash()

	if signer.Scopes&transaction.CalledByEntry != 0 {
		entry := ic.VM.EntryContext()
		calling := ic.VM.CallingContext()
		if entry != nil && (calling == nil || calling.ScriptHash() == entry.ScriptHash()) {
			return true, nil
		}
	}

	if signer.Scopes&transaction.CustomContracts != 0 {
		for _, allowed := range signer.AllowedContracts {
			if allowed == currentHash {
				return true, nil
			}
		}
	}

	if signer.Scopes&transaction.Rules != 0 {
		mc := matchContext{ic}
		allow := false
		for i := range signer.Rules {
			rule := signer.Rules[i]
			matched, err := rule.Condition.Match(mc)
			if err != nil {
				return false, err
			}
			if matched {
				allow = rule.Action == transaction.WitnessAllow
			}
		}
		if allow {
			return true, nil
		}
	}

	return false, nil
}

// matchContext adapts an interop.Context to transaction.MatchContext, the
// minimal view a WitnessRule condition tree needs to decide if it matches.
type matchContext struct {
	ic *interop.Context
}

func (m matchContext) GetCallingScriptHash() util.Uint160 {
	if ctx := m.ic.VM.CallingContext(); ctx != nil {
		return ctx.ScriptHash()
	}
	return util.Uint160{}
}

func (m matchContext) GetCurrentScriptHash() util.Uint160 {
	if ctx := m.ic.VM.Context(); ctx != nil {
		return ctx.ScriptHash()
	}
	return util.Uint160{}
}

func (m matchContext) GetEntryScriptHash() util.Uint160 {
	if ctx := m.ic.VM.EntryContext(); ctx != nil {
		return ctx.ScriptHash()
	}
	return util.Uint160{}
}

func (m matchContext) CallingScriptHasGroup(*keys.PublicKey) (bool, error) { return false, nil }
func (m matchContext) CurrentScriptHasGroup(*keys.PublicKey) (bool, error) { return false, nil }

// Notify implements System.Runtime.Notify: record an application event
// under the currently executing contract's hash, the low-level primitive
// behind every contract-declared notification.
func Notify(ic *interop.Context) error {
	name, err := stackitem.ToString(ic.VM.Estack().Pop().Item())
	if err != nil {
		return err
	}
	args := ic.VM.Estack().Pop().Array()
	if len(name) > MaxEventNameLen {
		return fmt.Errorf("bad notification: event name must be less than %d", MaxEventNameLen+1)
	}

	encoded, err := stackitem.Serialize(stackitem.NewArray(args))
	if err != nil {
		return fmt.Errorf("bad notification: %w", err)
	}
	if len(encoded) > MaxNotificationSize {
		return fmt.Errorf("bad notification: notification size shouldn't exceed %d", MaxNotificationSize)
	}
	deepCopy, err := stackitem.Deserialize(encoded)
	if err != nil {
		return fmt.Errorf("bad notification: %w", err)
	}

	ctx := ic.VM.Context()
	if ctx == nil {
		return errors.New("no executing context")
	}
	ic.Notifications = append(ic.Notifications, state.NotificationEvent{
		ScriptHash: ctx.ScriptHash(),
		Name:       name,
		Item:       deepCopy.(*stackitem.Array),
	})
	return nil
}
