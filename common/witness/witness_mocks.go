// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package witness

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockWitness is a mock of Witness interface.
type MockWitness struct {
	ctrl     *gomock.Controller
	recorder *MockWitnessMockRecorder
}

// MockWitnessMockRecorder is the mock recorder for MockWitness.
type MockWitnessMockRecorder struct {
	mock *MockWitness
}

// NewMockWitness creates a new mock instance.
func NewMockWitness(ctrl *gomock.Controller) *MockWitness {
	mock := &MockWitness{ctrl: ctrl}
	mock.recorder = &MockWitnessMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockWitness) EXPECT() *MockWitnessMockRecorder {
	return m.recorder
}

// AddHint mocks base method.
func (m *MockWitness) AddHint(hint any) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AddHint", hint)
	ret0, _ := ret[0].(error)
	return ret0
}

// AddHint indicates an expected call of AddHint.
func (mr *MockWitnessMockRecorder) AddHint(hint any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddHint", reflect.TypeOf((*MockWitness)(nil).AddHint), hint)
}

// GetHint mocks base method.
func (m *MockWitness) GetHint(out any) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetHint", out)
	ret0, _ := ret[0].(error)
	return ret0
}

// GetHint indicates an expected call of GetHint.
func (mr *MockWitnessMockRecorder) GetHint(out any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetHint", reflect.TypeOf((*MockWitness)(nil).GetHint), out)
}

// Len mocks base method.
func (m *MockWitness) Len() int {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Len")
	ret0, _ := ret[0].(int)
	return ret0
}

// Len indicates an expected call of Len.
func (mr *MockWitnessMockRecorder) Len() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Len", reflect.TypeOf((*MockWitness)(nil).Len))
}

// MarshalBinary mocks base method.
func (m *MockWitness) MarshalBinary() ([]byte, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MarshalBinary")
	ret0, _ := ret[0].([]byte)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// MarshalBinary indicates an expected call of MarshalBinary.
func (mr *MockWitnessMockRecorder) MarshalBinary() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MarshalBinary", reflect.TypeOf((*MockWitness)(nil).MarshalBinary))
}

// Mode mocks base method.
func (m *MockWitness) Mode() Mode {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Mode")
	ret0, _ := ret[0].(Mode)
	return ret0
}

// Mode indicates an expected call of Mode.
func (mr *MockWitnessMockRecorder) Mode() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Mode", reflect.TypeOf((*MockWitness)(nil).Mode))
}

// Remaining mocks base method.
func (m *MockWitness) Remaining() int {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Remaining")
	ret0, _ := ret[0].(int)
	return ret0
}

// Remaining indicates an expected call of Remaining.
func (mr *MockWitnessMockRecorder) Remaining() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Remaining", reflect.TypeOf((*MockWitness)(nil).Remaining))
}
