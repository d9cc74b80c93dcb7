package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/client"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	ErrMissingArguments = errors.New("missing arguments")
)

func main() {
	config.Init()

	app := &cli.App{
		Name:  "marketplace",
		Usage: "list, buy and withdraw on a running marketplace",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Value: config.Get().Cli.ApiUrl, Usage: "marketplace API url"},
			&cli.StringFlag{Name: "caller", Aliases: []string{"c"}, EnvVars: []string{"MARKETPLACE_CALLER"}, Usage: "address the request is made as"},
		},
		Commands: []*cli.Command{
			{
				Name:      "listing",
				Usage:     "show the listing of a token",
				ArgsUsage: "<collection> <tokenId>",
				Action:    getListing,
			},
			{
				Name:   "listings",
				Usage:  "show every active listing",
				Action: getListings,
			},
			{
				Name:      "list",
				Usage:     "list a token for sale",
				ArgsUsage: "<collection> <tokenId> <price>",
				Action:    listItem,
			},
			{
				Name:      "update",
				Usage:     "change the price of a listing",
				ArgsUsage: "<collection> <tokenId> <price>",
				Action:    updateListing,
			},
			{
				Name:      "cancel",
				Usage:     "remove a listing",
				ArgsUsage: "<collection> <tokenId>",
				Action:    cancelListing,
			},
			{
				Name:      "buy",
				Usage:     "buy a listed token",
				ArgsUsage: "<collection> <tokenId>",
				Action:    buyItem,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "value", Required: true, Usage: "amount attached to the purchase"},
				},
			},
			{
				Name:      "proceeds",
				Usage:     "show the proceeds owed to a seller",
				ArgsUsage: "[seller]",
				Action:    getProceeds,
			},
			{
				Name:   "withdraw",
				Usage:  "withdraw the caller's proceeds",
				Action: withdrawProceeds,
			},
			{
				Name:   "events",
				Usage:  "show the event log",
				Action: getEvents,
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "from", Value: 1, Usage: "first sequence number"},
					&cli.Uint64Flag{Name: "size", Value: 100, Usage: "maximum number of events"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Marketplace CLI failed")
	}
}

func newClient(c *cli.Context) *client.Client {
	return client.New(c.String("api"), c.String("caller"))
}

func args(c *cli.Context, n int) ([]string, error) {
	if c.NArg() < n {
		return nil, fmt.Errorf("%w: %s %s", ErrMissingArguments, c.Command.Name, c.Command.ArgsUsage)
	}
	return c.Args().Slice()[:n], nil
}

func getListing(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	listing, err := newClient(c).Listing(a[0], a[1])
	if err != nil {
		return err
	}
	return output(listing)
}

func getListings(c *cli.Context) error {
	listings, err := newClient(c).Listings()
	if err != nil {
		return err
	}
	return output(listings)
}

func listItem(c *cli.Context) error {
	a, err := args(c, 3)
	if err != nil {
		return err
	}
	listing, err := newClient(c).List(a[0], a[1], a[2])
	if err != nil {
		return err
	}
	zap.L().With(zap.String("collection", a[0]), zap.String("tokenId", a[1])).Info("Item listed")
	return output(listing)
}

func updateListing(c *cli.Context) error {
	a, err := args(c, 3)
	if err != nil {
		return err
	}
	listing, err := newClient(c).Update(a[0], a[1], a[2])
	if err != nil {
		return err
	}
	return output(listing)
}

func cancelListing(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	if err := newClient(c).Cancel(a[0], a[1]); err != nil {
		return err
	}
	zap.L().With(zap.String("collection", a[0]), zap.String("tokenId", a[1])).Info("Listing canceled")
	return nil
}

func buyItem(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	purchase, err := newClient(c).Buy(a[0], a[1], c.String("value"))
	if err != nil {
		return err
	}
	return output(purchase)
}

func getProceeds(c *cli.Context) error {
	seller := c.Args().First()
	if seller == "" {
		seller = c.String("caller")
	}
	if seller == "" {
		return fmt.Errorf("%w: seller or --caller", ErrMissingArguments)
	}
	proceeds, err := newClient(c).Proceeds(seller)
	if err != nil {
		return err
	}
	return output(proceeds)
}

func withdrawProceeds(c *cli.Context) error {
	if err := newClient(c).Withdraw(); err != nil {
		return err
	}
	zap.L().With(zap.String("seller", c.String("caller"))).Info("Proceeds withdrawn")
	return nil
}

func getEvents(c *cli.Context) error {
	events, err := newClient(c).Events(c.Uint64("from"), c.Uint64("size"))
	if err != nil {
		return err
	}
	return output(events)
}

func output(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
