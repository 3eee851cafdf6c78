package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tobias-fyi/xebec/internal/blockchain"
	"github.com/tobias-fyi/xebec/internal/models"
)

func (h *Handlers) registerLedgerEndpoints(r *gin.Engine) {
	r.GET("/chain", h.getChain)
	r.GET("/last_block", h.getLastBlock)
	r.POST("/mine", h.mine)
}

// whole chain, used by wallets to rebuild balances
func (h *Handlers) getChain(c *gin.Context) {
	chain := h.ledger.FullChain()
	c.JSON(http.StatusOK, models.ChainResponse{
		Length: len(chain),
		Chain:  chain,
	})
}

// head of the chain, what miners search against
func (h *Handlers) getLastBlock(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.LastBlock())
}

// the proof is checked against the head at the time of this request,
// not the one the miner fetched
func (h *Handlers) mine(c *gin.Context) {
	var req models.MineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.MessageResponse{Message: models.MsgInvalidReq})
		return
	}

	block, err := h.ledger.SubmitProof(*req.Proof)
	if errors.Is(err, blockchain.ErrInvalidProof) {
		c.JSON(http.StatusBadRequest, models.MessageResponse{Message: models.MsgAlreadyForged})
		return
	}
	if err != nil {
		h.log.Error("handlers: submit proof", "error", err)
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: err.Error()})
		return
	}

	go h.publish(block)

	c.JSON(http.StatusOK, models.MineResponse{
		Message:      models.MsgBlockForged,
		Index:        block.Index,
		Transactions: block.Transactions,
		Proof:        block.Proof,
		PreviousHash: block.PreviousHash,
	})
}
