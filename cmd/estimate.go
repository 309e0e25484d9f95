package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"solpay/config"
	"solpay/pkg/amount"
	"solpay/pkg/wallet"
)

// Decimal places of the default assets. Other input mints are looked up
// on chain.
const (
	usdcDecimals = 6
	solDecimals  = 9
)

var estimateInputMint string

var estimateCmd = &cobra.Command{
	Use:   "estimate <usdc-amount>",
	Short: "Estimate the input amount required for a payment",
	Long: `Estimate how much of the input token is required to deliver exactly the
given USDC amount, using the aggregator's ExactOut quoting.

Examples:
  solpay estimate 1.0
  solpay estimate 25.00 --with EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v`,
	Args: cobra.ExactArgs(1),
	Run:  runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateCmd.Flags().StringVar(&estimateInputMint, "with", "", "Input token mint (default: SOL)")
}

func runEstimate(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	outputAmount, err := amount.ToAtomic(args[0], usdcDecimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	p, err := newPipeline(cfg, verbose, nil)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	ctx := context.Background()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	quote, err := p.orchestrator.Estimate(ctx, outputAmount, estimateInputMint)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	inputDecimals := int32(solDecimals)
	inputLabel := "SOL"
	if estimateInputMint != "" && estimateInputMint != cfg.DefaultInputMint {
		decimals, err := wallet.NewService(p.rpcClient).MintDecimals(ctx, mustPublicKey(estimateInputMint))
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		inputDecimals = int32(decimals)
		inputLabel = shortMint(estimateInputMint)
	}

	estimated := amount.Format(quote.InAmount, inputDecimals)

	if jsonOutput {
		output := map[string]interface{}{
			"output_amount_usdc":  args[0],
			"input_mint":          quote.InputMint,
			"input_amount":        estimated,
			"input_amount_atomic": quote.InAmount,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		fmt.Printf("\nEstimated: %s %s for %s USDC\n\n",
			color.YellowString(estimated), inputLabel, args[0])
	}
}

// shortMint truncates a mint address for display.
func shortMint(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return mint[:4] + "..." + mint[len(mint)-4:]
}
