package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"solpay/config"
	"solpay/pkg/amount"
	"solpay/pkg/types"
)

var (
	payDestination string
	payInputMint   string
	payNoConfirm   bool
)

var payCmd = &cobra.Command{
	Use:   "pay <usdc-amount>",
	Short: "Pay a merchant's USDC account, spending another token",
	Long: `Pay the given USDC amount into a merchant's USDC token account, spending
SOL (or another SPL token) from your wallet. The exact input amount is
quoted via the aggregator's ExactOut mode, then a swap transaction is
built, signed with your configured keypair, submitted, and tracked to
finalized confirmation.

Examples:
  solpay pay 25.00 --to <merchant-usdc-account>
  solpay pay 25.00 --to <merchant-usdc-account> --with <input-mint>
  solpay pay 25.00 --to <merchant-usdc-account> --yes`,
	Args: cobra.ExactArgs(1),
	Run:  runPay,
}

func init() {
	rootCmd.AddCommand(payCmd)

	payCmd.Flags().StringVar(&payDestination, "to", "", "Merchant USDC token account (REQUIRED)")
	payCmd.Flags().StringVar(&payInputMint, "with", "", "Input token mint to spend (default: SOL)")
	payCmd.Flags().BoolVarP(&payNoConfirm, "yes", "y", false, "Skip confirmation prompt")
	_ = payCmd.MarkFlagRequired("to")
}

func runPay(cmd *cobra.Command, args []string) {
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

	if !payNoConfirm && !jsonOutput {
		if !confirmPay(args[0], payDestination) {
			fmt.Println("\nPayment cancelled.")
			os.Exit(0)
		}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	onState := func(state types.PayState) {
		if jsonOutput {
			return
		}
		s.Suffix = " " + stateLabel(state)
	}

	p, err := newPipeline(cfg, verbose, onState)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	// Ctrl+C stops waiting; it cannot recall a transaction that is
	// already on its way to the network.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !jsonOutput {
		s.Suffix = " Starting payment..."
		s.Start()
	}

	result, err := p.orchestrator.Pay(ctx, types.PaymentRequest{
		OutputAmount:       outputAmount,
		InputMint:          payInputMint,
		DestinationAccount: payDestination,
	})
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"transaction_id": result.TransactionID,
			"state":          string(result.State),
			"amount_usdc":    args[0],
			"destination":    payDestination,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	printSuccess(color.GreenString("Payment finalized!"))
	fmt.Printf("  Transaction: %s\n", color.CyanString(result.TransactionID))
	fmt.Printf("  Explorer:    https://solscan.io/tx/%s\n\n", result.TransactionID)
}

func stateLabel(state types.PayState) string {
	switch state {
	case types.StateQuoting:
		return "Fetching quote..."
	case types.StateBuilding:
		return "Building transaction..."
	case types.StateSigning:
		return "Signing..."
	case types.StateSubmitting:
		return "Submitting to the network..."
	case types.StateConfirming:
		return "Waiting for confirmation..."
	default:
		return string(state)
	}
}

func confirmPay(amountStr, destination string) bool {
	fmt.Printf("\nPay %s USDC to %s?\n", color.YellowString(amountStr), color.CyanString(destination))

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Proceed? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
