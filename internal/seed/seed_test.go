package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/printq/internal/app/repositories/memstore"
	"github.com/yigit/printq/internal/app/services"
	"github.com/yigit/printq/internal/pkg/auth"
)

func TestCreateDefaultData_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	printers := services.NewPrinterService(store, zerolog.Nop())
	admin := AdminAccount{Email: " PRINTQadmin@gmail.com ", Username: "Admin", Password: "admin1234"}

	require.NoError(t, CreateDefaultData(ctx, store, printers, admin, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, store, printers, admin, zerolog.Nop()))

	admins, err := store.Admins().List(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	require.Equal(t, "printqadmin@gmail.com", admins[0].Email)
	require.True(t, auth.CheckPassword(admins[0].PasswordHash, "admin1234"))

	list, err := store.Printers().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Library Printer 1", list[0].Name)
	require.Equal(t, "Student Center Printer", list[1].Name)
	require.True(t, list[1].Online())
	require.Equal(t, 45, list[1].TonerLevel)
}

func TestCreateDefaultData_SkipsUnconfiguredAdmin(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	require.NoError(t, CreateDefaultData(ctx, store, services.NewPrinterService(store, zerolog.Nop()), AdminAccount{}, zerolog.Nop()))

	admins, err := store.Admins().List(ctx)
	require.NoError(t, err)
	require.Empty(t, admins)
}
