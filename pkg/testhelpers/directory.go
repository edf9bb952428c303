package testhelpers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/directory"
)

// SeedAccount creates a uniquely named platform with one account.
func SeedAccount(t *testing.T, svc directory.Service, active bool) (*directory.Platform, *directory.PlatformAccount) {
	t.Helper()
	ctx := context.Background()
	platform, err := svc.CreatePlatform(ctx, "Upwork "+uuid.NewString()[:8], "")
	require.NoError(t, err)
	account, err := svc.CreateAccount(ctx, platform.ID, "Main", "acme", active)
	require.NoError(t, err)
	return platform, account
}
