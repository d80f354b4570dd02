package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledFCMService(t *testing.T) {
	svc := NewDisabledFCMService()
	require.NotNil(t, svc)
	assert.False(t, svc.Enabled())

	t.Run("aucun envoi sans firebase", func(t *testing.T) {
		success, failed, failedTokens := svc.SendToAll(context.Background(), []string{"a", "b"}, "titre", "corps", nil)
		assert.Zero(t, success)
		assert.Zero(t, failed)
		assert.Empty(t, failedTokens)
	})
}
