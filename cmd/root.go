package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "solpay",
	Short: "Pay a merchant in USDC using any token in your wallet",
	Long: `solpay lets a payer fund a merchant's USDC token account by paying in
SOL or any SPL token. It quotes the exact input amount via the Jupiter
aggregator (ExactOut mode), builds and signs the swap transaction, submits
it to the network, and waits for finalized confirmation.

Examples:
  solpay estimate 1.0
  solpay pay 25.00 --to <merchant-usdc-account>
  solpay pay 25.00 --to <merchant-usdc-account> --with <input-mint>
  solpay status <transaction-signature>
  solpay balances`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
