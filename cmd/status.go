package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"solpay/config"
	"solpay/pkg/submit"
	"solpay/pkg/types"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <transaction-signature>",
	Short: "Check the commitment status of a payment transaction",
	Long: `Check how far the network has committed a submitted payment transaction.

Examples:
  solpay status 5Kd3N...sig
  solpay status 5Kd3N...sig --watch
  solpay status 5Kd3N...sig --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	sig, err := solana.SignatureFromBase58(args[0])
	if err != nil {
		printError(fmt.Errorf("invalid transaction signature: %w", err))
		os.Exit(1)
	}

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

	if watchStatus {
		watchTransactionStatus(p.engine, sig, jsonOutput)
	} else {
		checkTransactionStatus(p.engine, sig, jsonOutput)
	}
}

func checkTransactionStatus(engine *submit.Engine, sig solana.Signature, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking transaction status..."
		s.Start()
	}

	state, err := engine.Status(context.Background(), sig)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"transaction_id": sig.String(),
			"state":          string(state),
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayTransactionStatus(sig, state)
	}
}

func watchTransactionStatus(engine *submit.Engine, sig solana.Signature, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching transaction %s\n", color.CyanString(sig.String()))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	// Check immediately first
	state, err := engine.Status(context.Background(), sig)
	if err != nil {
		color.Red("Error: %v", err)
	} else {
		displayTransactionStatus(sig, state)
		if state.Terminal() {
			return
		}
	}

	for range ticker.C {
		state, err := engine.Status(context.Background(), sig)
		if err != nil {
			color.Red("Error: %v", err)
			continue
		}
		displayTransactionStatus(sig, state)
		if state.Terminal() {
			return
		}
	}
}

func displayTransactionStatus(sig solana.Signature, state types.CommitmentState) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                     TRANSACTION STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Transaction: %s\n", color.CyanString(sig.String()))
	fmt.Printf("  Status:      %s\n", coloredCommitment(state))
	fmt.Printf("  Explorer:    %s\n", color.HiBlackString("https://solscan.io/tx/"+sig.String()))

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func coloredCommitment(state types.CommitmentState) string {
	label := strings.ToUpper(string(state))

	switch state {
	case types.CommitmentFinalized:
		return color.GreenString(label)
	case types.CommitmentConfirmed, types.CommitmentPending:
		return color.YellowString(label)
	case types.CommitmentFailed, types.CommitmentExpired:
		return color.RedString(label)
	default:
		return label
	}
}
