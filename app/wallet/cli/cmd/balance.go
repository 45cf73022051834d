package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/powchain/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

type amount struct {
	Address string  `json:"blockchain_address"`
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

func balanceRun(cmd *cobra.Command, args []string) {
	w, err := wallet.Load(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("For Address:", w.Address())

	resp, err := http.Get(fmt.Sprintf("%s/v1/amount/%s", url, w.Address()))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("node responded with %s", resp.Status)
	}

	var amt amount
	if err := json.NewDecoder(resp.Body).Decode(&amt); err != nil {
		log.Fatal(err)
	}

	fmt.Println(amt.Amount)
}
