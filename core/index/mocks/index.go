package mocks

import (
	"context"

	"datadiff/core/index"

	"github.com/stretchr/testify/mock"
)

// KeyedIndex is a mock implementation of index.KeyedIndex
type KeyedIndex struct {
	mock.Mock
}

func (m *KeyedIndex) Get(ctx context.Context, side index.Side, key string) (index.Entry, bool, error) {
	args := m.Called(ctx, side, key)
	e, _ := args.Get(0).(index.Entry)
	return e, args.Bool(1), args.Error(2)
}

func (m *KeyedIndex) Put(ctx context.Context, side index.Side, e index.Entry) error {
	args := m.Called(ctx, side, e)
	return args.Error(0)
}

func (m *KeyedIndex) Count(ctx context.Context, side index.Side) (int, error) {
	args := m.Called(ctx, side)
	return args.Int(0), args.Error(1)
}

func (m *KeyedIndex) Clear(ctx context.Context, side index.Side) error {
	args := m.Called(ctx, side)
	return args.Error(0)
}

// Scan feeds the entries given as the first return value to fn.
func (m *KeyedIndex) Scan(ctx context.Context, side index.Side, fn func(index.Entry) bool) error {
	args := m.Called(ctx, side, fn)
	if entries, ok := args.Get(0).([]index.Entry); ok {
		for _, e := range entries {
			if !fn(e) {
				break
			}
		}
	}
	return args.Error(1)
}

// Join feeds the local entries given as the first return value to fn, each
// without a foreign entry.
func (m *KeyedIndex) Join(ctx context.Context, q index.JoinQuery, fn func(local index.Entry, foreign *index.Entry) bool) error {
	args := m.Called(ctx, q, fn)
	if entries, ok := args.Get(0).([]index.Entry); ok {
		for _, e := range entries {
			if !fn(e, nil) {
				break
			}
		}
	}
	return args.Error(1)
}

func (m *KeyedIndex) Close() error {
	args := m.Called()
	return args.Error(0)
}
