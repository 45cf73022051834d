package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/powchain/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var showKeys bool

// addressCmd represents the address command
var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print address for the specific wallet",
	Run: func(cmd *cobra.Command, args []string) {
		w, err := wallet.Load(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(w.Address())
		if showKeys {
			fmt.Println("public key: ", w.PublicKeyHex())
			fmt.Println("private key:", w.PrivateKeyHex())
		}
	},
}

func init() {
	rootCmd.AddCommand(addressCmd)
	addressCmd.Flags().BoolVarP(&showKeys, "keys", "k", false, "Also print the hex keys.")
}
