// Package events carries forged-block notifications over Redis pub/sub so
// miners can drop a search as soon as the head they are working on is stale.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tobias-fyi/xebec/internal/blockchain"
)

const DefaultChannel = "ledger:blocks"

// pause before resubscribing after a receive error
const retryDelay = time.Second

type BlockForged struct {
	NodeID       string  `json:"node_id"`
	Index        int64   `json:"index"`
	Hash         string  `json:"hash"`
	PreviousHash string  `json:"previous_hash"`
	Proof        int64   `json:"proof"`
	Transactions int     `json:"transactions"`
	Timestamp    float64 `json:"timestamp"`
}

func NewBlockForged(nodeID string, block blockchain.Block) BlockForged {
	return BlockForged{
		NodeID:       nodeID,
		Index:        block.Index,
		Hash:         blockchain.Hash(block),
		PreviousHash: block.PreviousHash.String(),
		Proof:        block.Proof,
		Transactions: len(block.Transactions),
		Timestamp:    block.Timestamp,
	}
}

// NewClient returns a single-node client for one address and a cluster
// client for several.
func NewClient(addrs []string) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{Addrs: addrs})
}

// ParseAddrs splits a comma separated address list, dropping blanks.
func ParseAddrs(s string) []string {
	var addrs []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}

type Publisher struct {
	rdb     redis.UniversalClient
	channel string
	nodeID  string
}

func NewPublisher(rdb redis.UniversalClient, channel, nodeID string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{rdb: rdb, channel: channel, nodeID: nodeID}
}

func (p *Publisher) BlockForged(ctx context.Context, block blockchain.Block) error {
	data, err := json.Marshal(NewBlockForged(p.nodeID, block))
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish block %d on %s: %w", block.Index, p.channel, err)
	}
	return nil
}

type Subscriber struct {
	rdb     redis.UniversalClient
	channel string
	log     *slog.Logger
}

func NewSubscriber(rdb redis.UniversalClient, channel string) *Subscriber {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Subscriber{rdb: rdb, channel: channel, log: slog.Default()}
}

// Listen calls fn for every forged-block event until ctx is done.
func (s *Subscriber) Listen(ctx context.Context, fn func(BlockForged)) error {
	pubsub := s.rdb.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn("events: receive failed", "channel", s.channel, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
			continue
		}

		evt, err := Decode([]byte(msg.Payload))
		if err != nil {
			s.log.Warn("events: dropping malformed event", "channel", s.channel, "error", err)
			continue
		}
		fn(evt)
	}
}

var ErrMalformedEvent = errors.New("malformed block event")

func Decode(data []byte) (BlockForged, error) {
	var evt BlockForged
	if err := json.Unmarshal(data, &evt); err != nil {
		return BlockForged{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if evt.Index < 1 {
		return BlockForged{}, fmt.Errorf("%w: index %d", ErrMalformedEvent, evt.Index)
	}
	return evt, nil
}
