package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/gymdesk-backend/internal/app"
	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

// runtime is what every subcommand needs once config and the store are open.
type runtime struct {
	cfg     *config.Config
	logg    *logger.Logger
	backend *app.Backend
}

type opener func(ctx context.Context) (*runtime, error)

func newRootCmd(open opener) *cobra.Command {
	var rt *runtime

	root := &cobra.Command{
		Use:           "gymctl",
		Short:         "Operator commands for the gymdesk backend",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt != nil {
				return nil
			}
			opened, err := open(cmd.Context())
			if err != nil {
				return err
			}
			rt = opened
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if rt == nil || rt.backend == nil {
				return nil
			}
			return rt.backend.Close()
		},
	}

	current := func() (*runtime, error) {
		if rt == nil {
			return nil, errors.New("runtime not initialized")
		}
		return rt, nil
	}

	root.AddCommand(
		newSweepCmd(current),
		newSeedCmd(current),
		newAdminCmd(current),
		newPlansCmd(current),
		newPaymentsCmd(current),
	)
	return root
}
