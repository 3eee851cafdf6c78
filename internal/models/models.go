package models

import (
	"encoding/json"

	"github.com/tobias-fyi/xebec/internal/blockchain"
)

// request/response bodies shared by the node and its clients

const (
	MsgPong          = "pong!"
	MsgBlockForged   = "New block successfully forged!"
	MsgMissingValues = "Error: Missing values"
	MsgInvalidReq    = "Error: Invalid request"
	MsgAlreadyForged = "Error: Block already forged."
)

type HealthCheckResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ChainResponse struct {
	Length int                `json:"length"`
	Chain  []blockchain.Block `json:"chain"`
}

// pointers so a zero amount or an empty name still counts as present
type TransactionRequest struct {
	Sender    *string  `json:"sender" binding:"required"`
	Recipient *string  `json:"recipient" binding:"required"`
	Amount    *float64 `json:"amount" binding:"required"`
}

type TransactionResponse struct {
	Message string `json:"message"`
	Index   int64  `json:"index"`
}

// id is accepted but the ledger never looks at it
type MineRequest struct {
	Proof *int64          `json:"proof" binding:"required"`
	ID    json.RawMessage `json:"id" binding:"required"`
}

type MineResponse struct {
	Message      string                   `json:"message"`
	Index        int64                    `json:"index"`
	Transactions []blockchain.Transaction `json:"transactions"`
	Proof        int64                    `json:"proof"`
	PreviousHash blockchain.PreviousHash  `json:"previous_hash"`
}

type MempoolResponse struct {
	Count        int                      `json:"count"`
	Transactions []blockchain.Transaction `json:"transactions"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
