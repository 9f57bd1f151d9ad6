package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/church-admin-api/internal/psp"
	"github.com/noah-isme/church-admin-api/pkg/config"
	"github.com/noah-isme/church-admin-api/pkg/export"
)

func brcodeCmd() *cobra.Command {
	var (
		amount      int64
		txID        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "brcode",
		Short: "Render a PIX BR Code for the configured merchant",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Pix.Key == "" {
				return fmt.Errorf("PIX_KEY is not configured")
			}
			if amount < 0 {
				return fmt.Errorf("amount must not be negative")
			}

			code := psp.BRCode{
				Key:          cfg.Pix.Key,
				MerchantName: cfg.Pix.MerchantName,
				MerchantCity: cfg.Pix.MerchantCity,
				Amount:       amount,
				TxID:         txID,
				Description:  description,
			}
			if amount > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "amount: %s\n", export.FormatBRL(amount))
			}
			fmt.Fprintln(cmd.OutOrStdout(), code.String())
			return nil
		},
	}

	cmd.Flags().Int64Var(&amount, "amount", 0, "amount in centavos (0 leaves it open)")
	cmd.Flags().StringVar(&txID, "txid", "", "reference id, defaults to ***")
	cmd.Flags().StringVar(&description, "description", "", "message shown to the payer")

	return cmd
}
