package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/ardanlabs/powchain/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) {
	w, err := wallet.New()
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(walletPath, 0755); err != nil {
		log.Fatal(err)
	}

	if err := w.Save(getPrivateKeyPath()); err != nil {
		log.Fatal(err)
	}

	fmt.Println(w.Address())
}
