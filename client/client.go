package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/tobias-fyi/xebec/internal/blockchain"
	"github.com/tobias-fyi/xebec/internal/events"
	"github.com/tobias-fyi/xebec/internal/logging"
	"github.com/tobias-fyi/xebec/internal/miner"
	"github.com/tobias-fyi/xebec/internal/nodeclient"
)

const defaultNode = "http://localhost:5000"

func main() {
	idFile := flag.String("id-file", "my_id.txt", "file holding the miner id, created when missing")
	difficulty := flag.Int("difficulty", blockchain.DefaultDifficulty, "leading zero hex digits the node expects")
	redisAddrs := flag.String("redis", os.Getenv("REDIS_ADDRS"), "comma separated Redis addresses for forged-block events (optional)")
	channel := flag.String("channel", events.DefaultChannel, "Redis channel carrying forged-block events")
	logLevel := flag.String("log-level", "warn", "log level: debug|info|warn|error")
	wait := flag.Duration("wait", 30*time.Second, "how long to wait for the node to come up")
	flag.Parse()

	slog.SetDefault(logging.New(logging.Config{Level: *logLevel, Format: "text"}))

	node := defaultNode
	if flag.NArg() > 0 {
		node = flag.Arg(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, node, *idFile, *difficulty, *redisAddrs, *channel, *wait); err != nil && !errors.Is(err, context.Canceled) {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, node, idFile string, difficulty int, redisAddrs, channel string, wait time.Duration) error {
	cl, err := nodeclient.New(node)
	if err != nil {
		return err
	}

	id, created, err := miner.LoadOrCreateID(idFile)
	if err != nil {
		return err
	}

	if err := miner.WaitForNode(ctx, cl, wait); err != nil {
		return fmt.Errorf("node %s did not answer: %w", cl.BaseURL(), err)
	}

	m := miner.New(cl, id, miner.WithDifficulty(difficulty))

	color.Cyan("==============================================")
	color.Cyan("  LEDGER MINER")
	color.Cyan("==============================================")
	color.White("Node:       %s", cl.BaseURL())
	if created {
		color.White("ID is %s (saved to %s)", id, idFile)
	} else {
		color.White("ID is %s", id)
	}
	color.White("Your wallet contains %d coins.", m.Coins())

	if addrs := events.ParseAddrs(redisAddrs); len(addrs) > 0 {
		rdb := events.NewClient(addrs)
		defer rdb.Close()
		sub := events.NewSubscriber(rdb, channel)
		go func() {
			err := sub.Listen(ctx, func(evt events.BlockForged) {
				m.Notify(evt.Index)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("miner: event listener stopped", "error", err)
			}
		}()
		color.Green("Listening for forged blocks on %q", channel)
	}

	return m.Run(ctx, func(res miner.Result) {
		report(m, res)
	})
}

func report(m *miner.Miner, res miner.Result) {
	switch {
	case res.Stale:
		color.Yellow("\nBlock %d was forged elsewhere, restarting on the new head.", res.Head)
	case res.Accepted:
		color.Green("\nProof %d accepted: %s (block %d)", res.Proof, res.Message, res.Index)
		color.White("Your wallet contains %d coins.", m.Coins())
	default:
		color.Red("\nProof %d rejected: %s", res.Proof, res.Message)
	}
	fmt.Println()
}
