package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/tobias-fyi/xebec/internal/nodeclient"
	"github.com/tobias-fyi/xebec/internal/wallet"
)

const pageSize = 10

func usage() {
	fmt.Fprintf(os.Stderr, "usage: wallet [flags] balance | history | send <recipient> <amount>\n")
	flag.PrintDefaults()
}

func main() {
	node := flag.String("node", "http://localhost:5000", "node URL")
	user := flag.String("user", "007", "user id whose coins are tracked")
	balance := flag.Float64("balance", 0, "starting balance before the chain is applied")
	page := flag.Int("page", 1, "history page, ten transactions per page")
	timeout := flag.Duration("timeout", 10*time.Second, "timeout for node requests")
	flag.Usage = usage
	flag.Parse()

	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))

	cmd := "balance"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	cl, err := nodeclient.New(*node)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	w := wallet.New(cl, *user, *balance)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	spinner, _ := pterm.DefaultSpinner.Start("Syncing wallet " + w.UserID() + " with " + cl.BaseURL())
	n, err := w.Sync(ctx)
	if err != nil {
		spinner.Fail(err.Error())
		os.Exit(1)
	}
	spinner.Success(fmt.Sprintf("Applied %d transactions", n))

	switch cmd {
	case "balance":
		printBalance(w)
	case "history":
		printHistory(w, *page)
	case "send":
		if flag.NArg() != 3 {
			usage()
			os.Exit(2)
		}
		amount, err := strconv.ParseFloat(flag.Arg(2), 64)
		if err != nil {
			logger.Error("invalid amount", "amount", flag.Arg(2), "error", err)
			os.Exit(2)
		}
		index, err := w.Send(ctx, flag.Arg(1), amount)
		if err != nil {
			pterm.Error.Println(err.Error())
			os.Exit(1)
		}
		pterm.Success.Printfln("Transaction will be added to Block %d", index)
	default:
		usage()
		os.Exit(2)
	}
}

func printBalance(w *wallet.Wallet) {
	pterm.DefaultBox.
		WithTitle(pterm.LightCyan("|" + w.UserID() + "|")).
		WithTitleTopCenter().
		WithHorizontalPadding(4).
		Println(pterm.Sprintf("Balance: %s coins", pterm.LightGreen(strconv.FormatFloat(w.Balance(), 'f', -1, 64))))
}

func printHistory(w *wallet.Wallet, page int) {
	hist := w.History()
	if len(hist) == 0 {
		pterm.Info.Println("No transactions for " + w.UserID())
		return
	}

	pages := (len(hist) + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(hist))

	data := pterm.TableData{{"Block", "Time", "Sender", "Recipient", "Amount"}}
	for _, e := range hist[start:end] {
		amount := strconv.FormatFloat(e.Transaction.Amount, 'f', -1, 64)
		if e.Received(w.UserID()) {
			amount = pterm.LightGreen("+" + amount)
		} else {
			amount = pterm.LightRed("-" + amount)
		}
		sec := int64(e.BlockTimestamp)
		ts := time.Unix(sec, int64((e.BlockTimestamp-float64(sec))*1e9)).Format(time.DateTime)
		data = append(data, []string{
			strconv.FormatInt(e.BlockIndex, 10),
			ts,
			e.Transaction.Sender,
			e.Transaction.Recipient,
			amount,
		})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	pterm.Info.Printfln("Page %d of %d", page, pages)
	printBalance(w)
}
