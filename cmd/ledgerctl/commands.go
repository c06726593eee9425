package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	appinventory "github.com/jhoicas/bakery-ops/internal/application/inventory"
	invdomain "github.com/jhoicas/bakery-ops/internal/domain/inventory"
	"github.com/jhoicas/bakery-ops/internal/infrastructure/postgres"
	"github.com/jhoicas/bakery-ops/internal/infrastructure/seed"
	"github.com/jhoicas/bakery-ops/internal/infrastructure/system"
	"github.com/jhoicas/bakery-ops/pkg/config"
	pkgjwt "github.com/jhoicas/bakery-ops/pkg/jwt"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Herramientas de operación del libro de lotes y órdenes de trabajo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(validateSeedCmd(), fefoPlanCmd(), tokenCmd(), journalStatsCmd())
	return cmd
}

func validateSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-seed <file>",
		Short: "Valida un archivo de semilla y muestra su resumen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := seed.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "semilla válida: %s\n", args[0])
			fmt.Fprintf(out, "  skus:          %d\n", len(s.SKUs))
			fmt.Fprintf(out, "  ubicaciones:   %d\n", len(s.Locations))
			fmt.Fprintf(out, "  lotes:         %d\n", len(s.Inventory.Lots))
			fmt.Fprintf(out, "  órdenes:       %d\n", len(s.WorkOrders.WorkOrders))
			fmt.Fprintf(out, "  marcaciones:   %d\n", len(s.WorkOrders.TimeEntries))
			fmt.Fprintf(out, "  auditoría:     %d\n", len(s.WorkOrders.Updates))
			return nil
		},
	}
}

func fefoPlanCmd() *cobra.Command {
	var (
		sku string
		qty string
	)
	cmd := &cobra.Command{
		Use:   "fefo-plan <file>",
		Short: "Simula un consumo FEFO sobre la semilla sin modificarla",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(qty)
			if err != nil || !amount.IsPositive() {
				return fmt.Errorf("--qty debe ser un número positivo: %q", qty)
			}
			s, err := seed.Load(args[0])
			if err != nil {
				return err
			}
			ledger := appinventory.NewLedger(system.Clock{}, system.UUIDs{},
				appinventory.WithInitialState(s.Inventory))
			_, summary, err := ledger.Issue(context.Background(), invdomain.IssueParams{
				SKUID: sku, Qty: amount, Strategy: invdomain.StrategyFEFO,
			})
			if err != nil {
				return err
			}
			return printPlan(cmd, s.Inventory, summary)
		},
	}
	cmd.Flags().StringVar(&sku, "sku", "", "SKU a consumir")
	cmd.Flags().StringVar(&qty, "qty", "", "Cantidad a consumir")
	_ = cmd.MarkFlagRequired("sku")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}

func printPlan(cmd *cobra.Command, before invdomain.State, summary invdomain.IssueSummary) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LOTE\tCÓDIGO\tUBICACIÓN\tVENCE\tTOMA")
	for _, t := range summary.Transactions {
		lot, _, _ := before.FindLot(t.LotID)
		exp := "-"
		if lot.Expiration != nil {
			exp = lot.Expiration.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", lot.ID, lot.LotCode, lot.LocationID, exp, t.Qty.Neg().String())
	}
	if err := w.Flush(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "solicitado: %s  emitido: %s  faltante: %s\n",
		summary.Requested.String(), summary.Issued.String(), summary.Shortfall.String())
	return nil
}

func tokenCmd() *cobra.Command {
	var (
		user    string
		name    string
		secret  string
		minutes int
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un JWT de desarrollo para un operario",
		RunE: func(cmd *cobra.Command, args []string) error {
			issuer := "bakery-ops"
			if secret == "" || minutes <= 0 {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				if secret == "" {
					secret = cfg.JWT.Secret
				}
				if minutes <= 0 {
					minutes = cfg.JWT.Expiration
				}
				issuer = cfg.JWT.Issuer
			}
			if strings.TrimSpace(name) == "" {
				name = user
			}
			tok, err := pkgjwt.Generate(secret, user, name, issuer, minutes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "ID del operario")
	cmd.Flags().StringVar(&name, "name", "", "Nombre visible en la auditoría (defecto: --user)")
	cmd.Flags().StringVar(&secret, "secret", "", "Secreto HMAC (defecto: JWT_SECRET)")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "Vigencia en minutos (defecto: JWT_EXPIRATION_MINUTES)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func journalStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "journal-stats",
		Short: "Muestra los conteos del diario de auditoría en PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			pool, err := postgres.NewPool(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()
			st, err := postgres.NewJournal(pool).Stats(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "lotes: %d\ntransacciones: %d\nórdenes: %d\nauditoría: %d\nmarcaciones: %d\n",
				st.Lots, st.LotTransactions, st.WorkOrders, st.Updates, st.TimeEntries)
			return nil
		},
	}
}
