package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"solpay/config"
	"solpay/pkg/amount"
	"solpay/pkg/wallet"
)

var filterMint string

var balancesCmd = &cobra.Command{
	Use:     "balances",
	Aliases: []string{"tokens", "ls"},
	Short:   "List the token balances of the configured wallet",
	Long: `List all SPL token balances held by the configured wallet. Any of these
tokens can be spent with 'solpay pay --with <mint>'.

Examples:
  solpay balances
  solpay balances --mint EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v`,
	Run: runBalances,
}

func init() {
	rootCmd.AddCommand(balancesCmd)

	balancesCmd.Flags().StringVar(&filterMint, "mint", "", "Filter by token mint")
}

func runBalances(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	p, err := newPipeline(cfg, verbose, nil)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if p.signer == nil {
		printError(fmt.Errorf("no wallet configured. Set SOLPAY_KEYPAIR_PATH or SOLPAY_PRIVATE_KEY"))
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching token balances..."
		s.Start()
	}

	balances, err := wallet.NewService(p.rpcClient).ListBalances(context.Background(), p.signer.PublicKey())
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if filterMint != "" {
		var filtered []wallet.TokenBalance
		for _, b := range balances {
			if strings.EqualFold(b.Mint.String(), filterMint) {
				filtered = append(filtered, b)
			}
		}
		balances = filtered
	}

	if jsonOutput {
		output := make([]map[string]interface{}, 0, len(balances))
		for _, b := range balances {
			output = append(output, map[string]interface{}{
				"mint":          b.Mint.String(),
				"token_account": b.TokenAccount.String(),
				"amount":        amount.Format(b.Amount, int32(b.Decimals)),
				"amount_atomic": b.Amount,
				"decimals":      b.Decimals,
			})
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayBalances(balances, p.signer.PublicKey().String())
	}
}

func displayBalances(balances []wallet.TokenBalance, owner string) {
	if len(balances) == 0 {
		fmt.Println("\nNo token balances found.")
		return
	}

	// Largest balances first
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Amount > balances[j].Amount
	})

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                            TOKEN BALANCES")
	fmt.Println(strings.Repeat("=", 90))

	fmt.Printf("\n  Wallet: %s\n\n", color.CyanString(owner))

	for _, b := range balances {
		fmt.Printf("  %-16s  %2d decimals  %s\n",
			color.YellowString(amount.Format(b.Amount, int32(b.Decimals))),
			b.Decimals,
			color.HiBlackString(b.Mint.String()))
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d tokens\n\n", len(balances))
}
