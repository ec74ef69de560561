package testing

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDNS is a mock implementation of the DKIM record publisher.
type MockDNS struct {
	mock.Mock
}

// LookupTXT returns the configured record content.
func (m *MockDNS) LookupTXT(ctx context.Context, domain, name string) (string, bool, error) {
	args := m.Called(ctx, domain, name)
	return args.String(0), args.Bool(1), args.Error(2)
}

// UpsertTXT records the call.
func (m *MockDNS) UpsertTXT(ctx context.Context, domain, name, content string) error {
	args := m.Called(ctx, domain, name, content)
	return args.Error(0)
}

// MockObjectStore is a mock implementation of the key backup store.
type MockObjectStore struct {
	mock.Mock
}

// Get returns the configured object content and whether it exists.
func (m *MockObjectStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	var data []byte
	if v := args.Get(0); v != nil {
		data = v.([]byte)
	}
	return data, args.Bool(1), args.Error(2)
}

// Put records the upload.
func (m *MockObjectStore) Put(ctx context.Context, key string, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}
