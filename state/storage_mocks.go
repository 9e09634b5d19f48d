// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	reflect "reflect"

	common "github.com/LukaszRozmej/sovereign/common"
	witness "github.com/LukaszRozmej/sovereign/common/witness"
	cache "github.com/LukaszRozmej/sovereign/state/cache"
	gomock "go.uber.org/mock/gomock"
)

// MockStorage is a mock of Storage interface.
type MockStorage struct {
	ctrl     *gomock.Controller
	recorder *MockStorageMockRecorder
}

// MockStorageMockRecorder is the mock recorder for MockStorage.
type MockStorageMockRecorder struct {
	mock *MockStorage
}

// NewMockStorage creates a new mock instance.
func NewMockStorage(ctrl *gomock.Controller) *MockStorage {
	mock := &MockStorage{ctrl: ctrl}
	mock.recorder = &MockStorageMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockStorage) EXPECT() *MockStorageMockRecorder {
	return m.recorder
}

// Get mocks base method.
func (m *MockStorage) Get(key common.StorageKey, w witness.Witness) (common.StorageValue, bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", key, w)
	ret0, _ := ret[0].(common.StorageValue)
	ret1, _ := ret[1].(bool)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// Get indicates an expected call of Get.
func (mr *MockStorageMockRecorder) Get(key, w any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockStorage)(nil).Get), key, w)
}

// ValidateAndCommit mocks base method.
func (m *MockStorage) ValidateAndCommit(log *cache.Log, w witness.Witness) (common.Hash, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ValidateAndCommit", log, w)
	ret0, _ := ret[0].(common.Hash)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ValidateAndCommit indicates an expected call of ValidateAndCommit.
func (mr *MockStorageMockRecorder) ValidateAndCommit(log, w any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ValidateAndCommit", reflect.TypeOf((*MockStorage)(nil).ValidateAndCommit), log, w)
}
