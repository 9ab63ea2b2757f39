// Package cli содержит команды утилиты обслуживания реестра пользователей.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"telegram-gateway-bot/internal/adapters/exporter"
	"telegram-gateway-bot/internal/ports"
)

// Opener открывает реестр, с которым работают команды.
type Opener func(ctx context.Context) (ports.UserRegistry, error)

// NewRootCmd создает корневую команду с подкомандами count, ids, list и export.
func NewRootCmd(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "registry",
		Short:         "Inspect and export the bot user registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		countCmd(open),
		idsCmd(open),
		listCmd(open),
		exportCmd(open),
	)
	return root
}

// withRegistry открывает реестр на время выполнения fn.
func withRegistry(cmd *cobra.Command, open Opener, fn func(ctx context.Context, reg ports.UserRegistry) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reg, err := open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer reg.Close()

	return fn(ctx, reg)
}

func countCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRegistry(cmd, open, func(ctx context.Context, reg ports.UserRegistry) error {
				n, err := reg.Count(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Total users: %d\n", n)
				return err
			})
		},
	}
}

func idsCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "ids",
		Short: "Print user IDs in registration order, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRegistry(cmd, open, func(ctx context.Context, reg ports.UserRegistry) error {
				ids, err := reg.AllIDs(ctx)
				if err != nil {
					return err
				}
				for _, id := range ids {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func listCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRegistry(cmd, open, func(ctx context.Context, reg ports.UserRegistry) error {
				users, err := reg.List(ctx)
				if err != nil {
					return err
				}
				return exporter.NewConsoleExporter().Export(cmd.OutOrStdout(), users)
			})
		},
	}
}

func exportCmd(open Opener) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export registered users to an Excel file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = fmt.Sprintf("users_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
			}
			return withRegistry(cmd, open, func(ctx context.Context, reg ports.UserRegistry) error {
				users, err := reg.List(ctx)
				if err != nil {
					return err
				}

				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				if err := exporter.NewExcelExporter().Export(f, users); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d users to %s\n", len(users), out)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output .xlsx file (default users_<timestamp>.xlsx)")
	return cmd
}
