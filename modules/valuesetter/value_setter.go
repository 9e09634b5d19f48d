// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package valuesetter is a minimal module storing a single value that only
// an admin may change. It shows how modules lay out their state in
// containers and how calls are executed on a working set.
package valuesetter

import (
	"fmt"

	"github.com/LukaszRozmej/sovereign/common"
	"github.com/LukaszRozmej/sovereign/common/codec"
	"github.com/LukaszRozmej/sovereign/state"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

const (
	ModulePath = "value_setter"
	TypeName   = "ValueSetter"

	// ErrWrongSender is returned if anybody but the admin tries to set the value.
	ErrWrongSender = common.ConstError("only admin can change the value")
)

// Config is the genesis configuration of the module.
type Config struct {
	Admin ethcommon.Address
}

// Context describes the origin of a call.
type Context struct {
	Sender ethcommon.Address
}

// SetValue is the only call message of the module.
type SetValue struct {
	_        struct{} `cbor:",toarray"`
	NewValue uint32
}

// Event is emitted by successful calls.
type Event struct {
	Key   string
	Value string
}

// CallResponse lists the events of a call.
type CallResponse struct {
	Events []Event
}

func (r *CallResponse) addEvent(key, value string) {
	r.Events = append(r.Events, Event{Key: key, Value: value})
}

type ValueSetter struct {
	value    state.StateValue[uint32]
	admin    state.StateValue[ethcommon.Address]
	messages codec.CBOR[SetValue]
	log      log.Logger
}

// New creates the module and registers the prefixes of its containers.
func New(registry *common.PrefixRegistry) (*ValueSetter, error) {
	valuePrefix, err := registry.RegisterStorage(ModulePath, TypeName, "value")
	if err != nil {
		return nil, err
	}
	adminPrefix, err := registry.RegisterStorage(ModulePath, TypeName, "admin")
	if err != nil {
		return nil, err
	}
	return &ValueSetter{
		value: state.NewStateValue[uint32](valuePrefix, codec.Uint32{}),
		admin: state.NewStateValue[ethcommon.Address](adminPrefix, codec.RLP[ethcommon.Address]{}),
		log:   log.New("module", ModulePath),
	}, nil
}

// Genesis initializes the state of the module.
func (m *ValueSetter) Genesis(config Config, ws *state.WorkingSet) error {
	m.admin.Set(config.Admin, ws)
	return ws.Check()
}

// EncodeCall produces the serialized form of a call message.
func (m *ValueSetter) EncodeCall(msg SetValue) []byte {
	return m.messages.Encode(msg)
}

// Call decodes and executes a serialized call message. A failed call leaves
// no writes behind.
func (m *ValueSetter) Call(data []byte, ctx Context, ws *state.WorkingSet) (CallResponse, error) {
	msg, err := m.messages.Decode(data)
	if err != nil {
		return CallResponse{}, fmt.Errorf("invalid call message: %w", err)
	}
	snapshot := ws.Snapshot()
	res, err := m.setValue(msg.NewValue, ctx, ws)
	if err == nil {
		err = ws.Check()
	}
	if err != nil {
		ws.RevertToSnapshot(snapshot)
		return CallResponse{}, err
	}
	return res, nil
}

func (m *ValueSetter) setValue(value uint32, ctx Context, ws *state.WorkingSet) (CallResponse, error) {
	var res CallResponse
	admin, err := m.admin.GetOrErr(ws)
	if err != nil {
		return res, err
	}
	if admin != ctx.Sender {
		return res, fmt.Errorf("%w: sender %v", ErrWrongSender, ctx.Sender)
	}
	m.value.Set(value, ws)
	res.addEvent("set", fmt.Sprintf("value_set: %d", value))
	m.log.Debug("Value set", "value", value, "sender", ctx.Sender)
	return res, nil
}

// Value returns the current value, if set.
func (m *ValueSetter) Value(ws *state.WorkingSet) (uint32, bool, error) {
	return m.value.Get(ws)
}

// Admin returns the configured admin.
func (m *ValueSetter) Admin(ws *state.WorkingSet) (ethcommon.Address, error) {
	return m.admin.GetOrErr(ws)
}
