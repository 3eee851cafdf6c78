// Package miner runs the client side of the mining protocol: fetch the head,
// search for a proof locally, submit it and start over.
package miner

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tobias-fyi/xebec/internal/blockchain"
	"github.com/tobias-fyi/xebec/internal/models"
	"github.com/tobias-fyi/xebec/internal/nodeclient"
)

// Node is the part of the node API a miner talks to.
type Node interface {
	LastBlock(ctx context.Context) (blockchain.Block, error)
	Mine(ctx context.Context, proof int64, id string) (models.MineResponse, error)
}

// Outcome of one fetch/search/submit round.
type Result struct {
	Head     int64 // index of the head the search ran against
	Proof    int64
	Accepted bool
	Stale    bool // search abandoned because a newer block was announced
	Index    int64
	Message  string
}

type Miner struct {
	node  Node
	id    string
	pow   *blockchain.ProofOfWork
	coins int
	stale chan int64
	log   *slog.Logger
}

type Option func(*Miner)

func WithDifficulty(d int) Option {
	return func(m *Miner) {
		m.pow = blockchain.NewProofOfWork(d)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Miner) {
		if l != nil {
			m.log = l
		}
	}
}

func New(node Node, id string, opts ...Option) *Miner {
	m := &Miner{
		node:  node,
		id:    id,
		pow:   blockchain.NewProofOfWork(blockchain.DefaultDifficulty),
		stale: make(chan int64, 1),
		log:   slog.Default(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// coins mined in this process; purely local, the chain holds no reward
func (m *Miner) Coins() int {
	return m.coins
}

func (m *Miner) ID() string {
	return m.id
}

// Notify tells the miner a block with the given index was forged. If it is
// newer than the head being searched, the search is abandoned.
func (m *Miner) Notify(index int64) {
	select {
	case m.stale <- index:
	default:
		// keep the newest announcement
		select {
		case <-m.stale:
		default:
		}
		select {
		case m.stale <- index:
		default:
		}
	}
}

// MineOnce runs a single round. Transport errors are returned as-is and are
// meant to stop the caller; a rejected or stale proof is a normal Result.
func (m *Miner) MineOnce(ctx context.Context) (Result, error) {
	head, err := m.node.LastBlock(ctx)
	if err != nil {
		return Result{}, err
	}

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go m.watchStale(searchCtx, head.Index, cancel)

	m.log.Debug("miner: searching", "head", head.Index, "difficulty", m.pow.Difficulty())
	proof, err := m.pow.Run(searchCtx, string(blockchain.Serialize(head)))
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{Head: head.Index, Stale: true}, nil
	}

	resp, err := m.node.Mine(ctx, proof, m.id)
	if errors.Is(err, nodeclient.ErrRejected) {
		return Result{Head: head.Index, Proof: proof, Message: resp.Message}, nil
	}
	if err != nil {
		return Result{}, err
	}

	m.coins++
	return Result{
		Head:     head.Index,
		Proof:    proof,
		Accepted: resp.Message == models.MsgBlockForged,
		Index:    resp.Index,
		Message:  resp.Message,
	}, nil
}

// Run mines until ctx is done or the node becomes unusable. report, if not
// nil, sees every round.
func (m *Miner) Run(ctx context.Context, report func(Result)) error {
	for {
		res, err := m.MineOnce(ctx)
		if err != nil {
			return err
		}
		if report != nil {
			report(res)
		}
	}
}

func (m *Miner) watchStale(ctx context.Context, head int64, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case index := <-m.stale:
			if index > head {
				m.log.Info("miner: head moved, dropping search", "head", head, "forged", index)
				cancel()
				return
			}
		}
	}
}
