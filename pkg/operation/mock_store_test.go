package operation

import (
	"context"

	"github.com/kwanter/formfix/pkg/document"
	"github.com/stretchr/testify/mock"
)

// mockStore is a testify mock of Store
type mockStore struct {
	mock.Mock
}

func newMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *mockStore {
	m := &mockStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockStore) Read(ctx context.Context, identity string) (document.Document, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(document.Document), args.Error(1)
}

func (m *mockStore) Write(ctx context.Context, doc document.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *mockStore) BackupExists(ctx context.Context, identity string) (bool, error) {
	args := m.Called(ctx, identity)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) WriteBackup(ctx context.Context, doc document.Document) error {
	return m.Called(ctx, doc).Error(0)
}
