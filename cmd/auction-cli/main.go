// Command auction-cli talks to a running auctiond over its HTTP API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var serverURL string

func main() {
	root := &cobra.Command{
		Use:          "auction-cli",
		Short:        "Client for the Dutch-auction settlement engine",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "auctiond base URL")

	root.AddCommand(
		newCreateCmd(),
		newListCmd(),
		newGetCmd(),
		newPriceCmd(),
		newBuyCmd(),
		newDepositCmd(),
		newBalanceCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newCreateCmd() *cobra.Command {
	var (
		seller   string
		price    int64
		discount int64
		item     string
		duration int64
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "List an item at a decaying price",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return call(http.MethodPost, "/api/auctions", map[string]any{
				"seller":         seller,
				"starting_price": price,
				"discount_rate":  discount,
				"item":           item,
				"duration":       duration,
			})
		},
	}
	cmd.Flags().StringVar(&seller, "seller", "", "seller account")
	cmd.Flags().Int64Var(&price, "price", 0, "starting price in base units")
	cmd.Flags().Int64Var(&discount, "discount", 0, "price decrease per second")
	cmd.Flags().StringVar(&item, "item", "", "item description")
	cmd.Flags().Int64Var(&duration, "duration", 0, "auction window in seconds")
	cmd.MarkFlagRequired("seller")
	cmd.MarkFlagRequired("price")
	cmd.MarkFlagRequired("discount")
	cmd.MarkFlagRequired("duration")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all auctions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return call(http.MethodGet, "/api/auctions", nil)
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <auction-id>",
		Short: "Show a stored auction record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, "/api/auctions/"+args[0], nil)
		},
	}
}

func newPriceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price <auction-id>",
		Short: "Show the current decayed price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, "/api/auctions/"+args[0]+"/price", nil)
		},
	}
}

func newBuyCmd() *cobra.Command {
	var (
		buyer   string
		payment int64
	)
	cmd := &cobra.Command{
		Use:   "buy <auction-id>",
		Short: "Settle an auction at its current price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodPost, "/api/auctions/"+args[0]+"/buy", map[string]any{
				"buyer":   buyer,
				"payment": payment,
			})
		},
	}
	cmd.Flags().StringVar(&buyer, "buyer", "", "buyer account")
	cmd.Flags().Int64Var(&payment, "payment", 0, "attached payment in base units")
	cmd.MarkFlagRequired("buyer")
	cmd.MarkFlagRequired("payment")
	return cmd
}

func newDepositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <account> <amount>",
		Short: "Fund a ledger account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var amount int64
			if _, err := fmt.Sscan(args[1], &amount); err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			return call(http.MethodPost, "/api/accounts/"+args[0]+"/deposit", map[string]any{
				"amount": amount,
			})
		},
	}
}

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account>",
		Short: "Show a ledger account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, "/api/accounts/"+args[0], nil)
		},
	}
}

// call performs the request and pretty-prints the JSON response. Non-2xx
// responses become errors carrying the server's message.
func call(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, serverURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s (%s)", errResp.Error, resp.Status)
		}
		return fmt.Errorf("request failed: %s", resp.Status)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}
