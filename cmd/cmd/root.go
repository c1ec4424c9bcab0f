package cmd

import (
	"context"

	"github.com/charmbracelet/fang"
	"github.com/ostafen/magicverify/internal/env"
	"github.com/spf13/cobra"
)

func Execute(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:   env.AppName,
		Short: env.AppName + " - verify file signatures against their extensions",
	}

	rootCmd.AddCommand(DefineScanCommand())
	rootCmd.AddCommand(DefineSignaturesCommand())

	return fang.Execute(ctx, rootCmd,
		fang.WithVersion(env.Version),
		fang.WithCommit(env.CommitHash),
	)
}
