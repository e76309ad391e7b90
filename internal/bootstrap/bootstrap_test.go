package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vip7612-maker/monglemongle/internal/adapter/repo"
	"github.com/vip7612-maker/monglemongle/internal/domain"
	"github.com/vip7612-maker/monglemongle/internal/infra"
	"github.com/vip7612-maker/monglemongle/internal/providers/thanks"
)

func TestOpenStoreByDriver(t *testing.T) {
	ctx := context.Background()
	logger := infra.NopLogger()

	store, err := OpenStore(ctx, &infra.Config{DBDriver: infra.DriverNone}, logger)
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = OpenStore(ctx, &infra.Config{DBDriver: infra.DriverMemory}, logger)
	require.NoError(t, err)
	assert.IsType(t, &repo.SubmissionRepositoryMemory{}, store)

	store, err = OpenStore(ctx, &infra.Config{DBDriver: infra.DriverSQLite, SQLitePath: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.IsType(t, &repo.SubmissionRepositorySQLite{}, store)

	sub := domain.Submission{ID: 1, Name: "a", Phone: "b", Target: "c", Amount: 50000, Type: domain.SubmissionCommitment, Date: "2025-01-01T00:00:00.000Z"}
	require.NoError(t, store.Insert(ctx, &sub))
	list, err := store.ListDescending(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = OpenStore(ctx, &infra.Config{DBDriver: "mysql"}, logger)
	assert.Error(t, err)
}

func TestNewNotifierSelection(t *testing.T) {
	logger := infra.NopLogger()

	n := NewNotifier(&infra.Config{AIProvider: infra.ProviderGemini}, logger)
	assert.IsType(t, &thanks.StaticNotifier{}, n)

	n = NewNotifier(&infra.Config{AIProvider: infra.ProviderGemini, GeminiAPIKey: "k"}, logger)
	assert.IsType(t, &thanks.GeminiNotifier{}, n)

	n = NewNotifier(&infra.Config{AIProvider: infra.ProviderOpenAI, OpenAIAPIKey: "k"}, logger)
	assert.IsType(t, &thanks.OpenAINotifier{}, n)

	n = NewNotifier(&infra.Config{AIProvider: infra.ProviderOpenAI, GeminiAPIKey: "k"}, logger)
	assert.IsType(t, &thanks.StaticNotifier{}, n)
}

func TestNewExporterUnconfigured(t *testing.T) {
	logger := infra.NopLogger()

	assert.False(t, NewExporter(&infra.Config{}, logger).Configured())
	assert.False(t, NewExporter(&infra.Config{GoogleSheetID: "sheet"}, logger).Configured())
	assert.False(t, NewExporter(&infra.Config{
		GoogleSheetID:            "sheet",
		GoogleServiceAccountMail: "svc@example.iam.gserviceaccount.com",
		GooglePrivateKey:         "not a pem",
	}, logger).Configured())
}
