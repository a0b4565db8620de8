package chatwebhook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewServiceReturnsNilWhenUnconfigured(t *testing.T) {
	assert.Nil(t, NewService("", "C1"))
	assert.Nil(t, NewService("tok", ""))
	assert.Nil(t, NewService("", ""))
}

func TestNilServiceMethodsAreNoOps(t *testing.T) {
	var s *Service
	assert.NotPanics(t, func() {
		s.NotifyStart(context.Background(), "m-1", "req-1")
		s.NotifyTerminal(context.Background(), "m-1", "completed", false)
	})
}

func TestNewServiceReturnsConfiguredInstanceWhenBothSet(t *testing.T) {
	s := NewService("tok", "C1")
	assert.NotNil(t, s)
}
