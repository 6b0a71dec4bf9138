package transaction

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// WitnessAction is what a WitnessRule does once its condition matches.
type WitnessAction byte

const (
	// WitnessDeny rejects the witness scope for matching contracts.
	WitnessDeny WitnessAction = 0
	// WitnessAllow accepts the witness scope for matching contracts.
	WitnessAllow WitnessAction = 1
)

// WitnessRule pairs a condition with the action to take when it matches,
// used by the Rules signer scope (spec.md §4.2).
type WitnessRule struct {
	Action    WitnessAction
	Condition WitnessCondition
}

// EncodeBinary implements the io.Serializable interface.
func (r *WitnessRule) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(r.Action))
	r.Condition.EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (r *WitnessRule) DecodeBinary(br *io.BinReader) {
	action := br.ReadB()
	if br.Err != nil {
		return
	}
	if action != byte(WitnessDeny) && action != byte(WitnessAllow) {
		br.Err = fmt.Errorf("invalid witness action %d", action)
		return
	}
	r.Action = WitnessAction(action)
	r.Condition = DecodeBinaryCondition(br)
}

type witnessRuleAux struct {
	Action    string          `json:"action"`
	Condition json.RawMessage `json:"condition"`
}

// MarshalJSON implements the json.Marshaler interface.
func (r WitnessRule) MarshalJSON() ([]byte, error) {
	if r.Condition == nil {
		return nil, errors.New("missing condition")
	}
	condJSON, err := r.Condition.MarshalJSON()
	if err != nil {
		return nil, err
	}
	actionStr := "Deny"
	if r.Action == WitnessAllow {
		actionStr = "Allow"
	}
	return json.Marshal(witnessRuleAux{Action: actionStr, Condition: condJSON})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (r *WitnessRule) UnmarshalJSON(data []byte) error {
	aux := new(witnessRuleAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	switch aux.Action {
	case "Allow":
		r.Action = WitnessAllow
	case "Deny":
		r.Action = WitnessDeny
	default:
		return fmt.Errorf("invalid witness action %q", aux.Action)
	}
	if len(aux.Condition) == 0 {
		return errors.New("missing condition")
	}
	cond, err := UnmarshalConditionJSON(aux.Condition)
	if err != nil {
		return err
	}
	r.Condition = cond
	return nil
}

// ToStackItem converts the rule to its NeoVM representation, as exposed to
// System.Contract.* introspection.
func (r *WitnessRule) ToStackItem() stackitem.Item {
	return stackitem.NewArray([]stackitem.Item{
		stackitem.Make(int64(r.Action)),
		r.Condition.ToStackItem(),
	})
}

// Copy returns a deep copy of r.
func (r *WitnessRule) Copy() *WitnessRule {
	return &WitnessRule{Action: r.Action, Condition: r.Condition.Copy()}
}
