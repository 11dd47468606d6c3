package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/gymdesk-backend/internal/app"
	"github.com/angelmondragon/gymdesk-backend/internal/members"
	"github.com/angelmondragon/gymdesk-backend/internal/payments"
	"github.com/angelmondragon/gymdesk-backend/internal/plans"
	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/money"
	"github.com/angelmondragon/gymdesk-backend/pkg/security"
)

type runtimeFn func() (*runtime, error)

func newSweepCmd(current runtimeFn) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire active members whose expiry date has passed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := current()
			if err != nil {
				return err
			}
			svc, err := members.NewService(rt.backend.Store, rt.logg)
			if err != nil {
				return err
			}
			result, err := svc.ExpireOverdue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d, expired %d\n", result.Checked, len(result.Expired))
			return nil
		},
	}
}

func newSeedCmd(current runtimeFn) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo plans and members into an empty store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := current()
			if err != nil {
				return err
			}
			result, err := store.SeedDemo(cmd.Context(), rt.backend.Store, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d plans, %d members\n", result.Plans, result.Members)
			return nil
		},
	}
}

func newAdminCmd(current runtimeFn) *cobra.Command {
	var email, name, password string

	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin staff account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := current()
			if err != nil {
				return err
			}
			generated := false
			if password == "" {
				if password, err = security.GenerateTempPassword(16); err != nil {
					return err
				}
				generated = true
			}
			boot := rt.cfg.Bootstrap
			boot.AdminEmail = email
			boot.AdminPassword = password
			if name != "" {
				boot.AdminName = name
			}

			created, err := app.EnsureAdmin(cmd.Context(), rt.backend.Store, boot, rt.cfg.Password)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !created {
				fmt.Fprintf(out, "staff account %s already exists\n", email)
				return nil
			}
			fmt.Fprintf(out, "created admin %s\n", email)
			if generated {
				fmt.Fprintf(out, "temporary password: %s\n", password)
			}
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "admin email (required)")
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&password, "password", "", "initial password; generated when empty")
	_ = create.MarkFlagRequired("email")

	admin := &cobra.Command{Use: "admin", Short: "Staff account helpers"}
	admin.AddCommand(create)
	return admin
}

func newPlansCmd(current runtimeFn) *cobra.Command {
	var activeOnly bool

	list := &cobra.Command{
		Use:   "list",
		Short: "List membership plans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := current()
			if err != nil {
				return err
			}
			svc, err := plans.NewService(rt.backend.Store)
			if err != nil {
				return err
			}
			rows, err := svc.ListPlans(cmd.Context(), activeOnly)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPRICE\tDURATION\tACTIVE")
			for _, p := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%d %s\t%t\n", p.Name, money.Format(p.Price), p.Duration, p.DurationType, p.IsActive)
			}
			return tw.Flush()
		},
	}
	list.Flags().BoolVar(&activeOnly, "active", false, "only active plans")

	cmd := &cobra.Command{Use: "plans", Short: "Membership plan helpers"}
	cmd.AddCommand(list)
	return cmd
}

func newPaymentsCmd(current runtimeFn) *cobra.Command {
	var status string
	var limit int

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent payments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := current()
			if err != nil {
				return err
			}
			svc, err := payments.NewService(rt.backend.Store, rt.logg)
			if err != nil {
				return err
			}
			rows, err := svc.ListPayments(cmd.Context(), payments.ListParams{Status: status, Limit: limit})
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tMEMBER\tPLAN\tAMOUNT\tSTATUS\tDATE")
			for _, p := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					p.ID, p.MemberName, p.PlanName, money.Format(p.Amount), p.Status, p.PaymentDate.Format(time.DateOnly))
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by status (pending, verified, rejected)")
	list.Flags().IntVar(&limit, "limit", 20, "maximum rows")

	cmd := &cobra.Command{Use: "payments", Short: "Payment helpers"}
	cmd.AddCommand(list)
	return cmd
}
