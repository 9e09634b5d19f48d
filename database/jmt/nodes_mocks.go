// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package jmt

import (
	reflect "reflect"

	common "github.com/LukaszRozmej/sovereign/common"
	gomock "go.uber.org/mock/gomock"
)

// MockNodeReader is a mock of NodeReader interface.
type MockNodeReader struct {
	ctrl     *gomock.Controller
	recorder *MockNodeReaderMockRecorder
}

// MockNodeReaderMockRecorder is the mock recorder for MockNodeReader.
type MockNodeReaderMockRecorder struct {
	mock *MockNodeReader
}

// NewMockNodeReader creates a new mock instance.
func NewMockNodeReader(ctrl *gomock.Controller) *MockNodeReader {
	mock := &MockNodeReader{ctrl: ctrl}
	mock.recorder = &MockNodeReaderMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockNodeReader) EXPECT() *MockNodeReaderMockRecorder {
	return m.recorder
}

// GetNode mocks base method.
func (m *MockNodeReader) GetNode(key NodeKey) (Node, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetNode", key)
	ret0, _ := ret[0].(Node)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetNode indicates an expected call of GetNode.
func (mr *MockNodeReaderMockRecorder) GetNode(key any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetNode", reflect.TypeOf((*MockNodeReader)(nil).GetNode), key)
}

// MockNode is a mock of Node interface.
type MockNode struct {
	ctrl     *gomock.Controller
	recorder *MockNodeMockRecorder
}

// MockNodeMockRecorder is the mock recorder for MockNode.
type MockNodeMockRecorder struct {
	mock *MockNode
}

// NewMockNode creates a new mock instance.
func NewMockNode(ctrl *gomock.Controller) *MockNode {
	mock := &MockNode{ctrl: ctrl}
	mock.recorder = &MockNodeMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockNode) EXPECT() *MockNodeMockRecorder {
	return m.recorder
}

// Hash mocks base method.
func (m *MockNode) Hash(hasher common.Hasher) common.Hash {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Hash", hasher)
	ret0, _ := ret[0].(common.Hash)
	return ret0
}

// Hash indicates an expected call of Hash.
func (mr *MockNodeMockRecorder) Hash(hasher any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Hash", reflect.TypeOf((*MockNode)(nil).Hash), hasher)
}

// kind mocks base method.
func (m *MockNode) kind() nodeKind {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "kind")
	ret0, _ := ret[0].(nodeKind)
	return ret0
}

// kind indicates an expected call of kind.
func (mr *MockNodeMockRecorder) kind() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "kind", reflect.TypeOf((*MockNode)(nil).kind))
}
