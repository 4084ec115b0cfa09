package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/pribylovaa/user-api/internal/config"
	"github.com/pribylovaa/user-api/internal/storage/memory"
	"github.com/stretchr/testify/require"
)

func TestOpenStorage_Memory(t *testing.T) {
	t.Parallel()

	st, err := openStorage(context.Background(), config.StorageConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	require.IsType(t, &memory.Storage{}, st)
	st.Close()
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := openStorage(context.Background(), config.StorageConfig{Driver: "sqlite"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown storage driver")
}

func TestOpenStorage_MongoEmptyURL(t *testing.T) {
	t.Parallel()

	_, err := openStorage(context.Background(), config.StorageConfig{Driver: config.DriverMongo})
	require.Error(t, err)
}

func TestSetupLogger_Levels(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	require.True(t, setupLogger(envLocal).Enabled(ctx, slog.LevelDebug))
	require.True(t, setupLogger(envDev).Enabled(ctx, slog.LevelDebug))
	require.False(t, setupLogger(envProd).Enabled(ctx, slog.LevelDebug))
	require.True(t, setupLogger(envProd).Enabled(ctx, slog.LevelInfo))
	require.True(t, setupLogger("unknown").Enabled(ctx, slog.LevelDebug))
}
