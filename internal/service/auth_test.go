package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/odontoprint/gapheal/internal/domain"
)

func TestAuthService_CreateAPIKey(t *testing.T) {
	ctx := context.Background()

	t.Run("creates admin key and returns plaintext token", func(t *testing.T) {
		mockRepo := new(MockAPIKeyRepository)
		svc := NewAuthService(mockRepo, NewMockUUIDGenerator("key-1"))

		var storedHash string
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(k *domain.APIKey) bool {
			storedHash = k.KeyHash
			return k.ID == "key-1" &&
				k.Name == "ci-bot" &&
				k.Role == domain.APIKeyRoleAdmin &&
				k.RevokedAt == nil
		})).Return(nil)

		token, err := svc.CreateAPIKey(ctx, "ci-bot", domain.APIKeyRoleAdmin)

		require.NoError(t, err)
		assert.True(t, IsValidAPIToken(token))
		assert.NotContains(t, storedHash, token, "plaintext must not be persisted")
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty role defaults to viewer", func(t *testing.T) {
		mockRepo := new(MockAPIKeyRepository)
		svc := NewAuthService(mockRepo, NewMockUUIDGenerator("key-1"))

		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(k *domain.APIKey) bool {
			return k.Role == domain.APIKeyRoleViewer
		})).Return(nil)

		_, err := svc.CreateAPIKey(ctx, "reader", "")

		require.NoError(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		svc := NewAuthService(new(MockAPIKeyRepository), NewMockUUIDGenerator())

		_, err := svc.CreateAPIKey(ctx, "", domain.APIKeyRoleAdmin)

		require.Error(t, err)
	})
}

func TestAuthService_ValidateAPIKey(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token resolves its stored key", func(t *testing.T) {
		mockRepo := new(MockAPIKeyRepository)
		svc := NewAuthService(mockRepo, NewMockUUIDGenerator("key-1"))

		mockRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			key := args.Get(1).(*domain.APIKey)
			mockRepo.On("GetByHash", mock.Anything, key.KeyHash).Return(key, nil)
		}).Return(nil)

		token, err := svc.CreateAPIKey(ctx, "ci-bot", domain.APIKeyRoleAdmin)
		require.NoError(t, err)

		key, err := svc.ValidateAPIKey(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, "key-1", key.ID)
		assert.True(t, key.IsAdmin())
	})

	t.Run("malformed token is rejected without a lookup", func(t *testing.T) {
		mockRepo := new(MockAPIKeyRepository)
		svc := NewAuthService(mockRepo, NewMockUUIDGenerator())

		_, err := svc.ValidateAPIKey(ctx, "not-a-token")

		require.ErrorIs(t, err, domain.ErrInvalidAPIKey)
		mockRepo.AssertNotCalled(t, "GetByHash", mock.Anything, mock.Anything)
	})

	t.Run("unknown token maps to invalid api key", func(t *testing.T) {
		mockRepo := new(MockAPIKeyRepository)
		svc := NewAuthService(mockRepo, NewMockUUIDGenerator())

		mockRepo.On("GetByHash", mock.Anything, mock.Anything).Return(nil, domain.ErrAPIKeyNotFound)

		_, err := svc.ValidateAPIKey(ctx, "ghl_"+repeatHex(64))

		require.ErrorIs(t, err, domain.ErrInvalidAPIKey)
	})

	t.Run("revoked key is rejected", func(t *testing.T) {
		mockRepo := new(MockAPIKeyRepository)
		svc := NewAuthService(mockRepo, NewMockUUIDGenerator())

		revokedAt := time.Now().UTC()
		mockRepo.On("GetByHash", mock.Anything, mock.Anything).Return(&domain.APIKey{
			ID:        "key-1",
			Name:      "old",
			Role:      domain.APIKeyRoleAdmin,
			RevokedAt: &revokedAt,
		}, nil)

		_, err := svc.ValidateAPIKey(ctx, "ghl_"+repeatHex(64))

		require.ErrorIs(t, err, domain.ErrAPIKeyRevoked)
	})
}

func TestIsValidAPIToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"valid token", "ghl_" + repeatHex(64), true},
		{"missing prefix", repeatHex(64), false},
		{"wrong prefix", "ntx_" + repeatHex(64), false},
		{"too short", "ghl_" + repeatHex(32), false},
		{"non-hex body", "ghl_" + repeatHex(63) + "z", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidAPIToken(tt.token))
		})
	}
}

func repeatHex(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = "0123456789abcdef"[i%16]
	}
	return string(out)
}
