package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tobias-fyi/xebec/internal/models"
)

func (h *Handlers) registerMempoolEndpoints(r *gin.Engine) {
	r.POST("/transactions/new", h.postTransaction)
	r.GET("/transactions/pending", h.getPending)
}

// queues a transaction for the next forged block
func (h *Handlers) postTransaction(c *gin.Context) {
	var req models.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.MessageResponse{Message: models.MsgMissingValues})
		return
	}

	index := h.ledger.NewTransaction(*req.Sender, *req.Recipient, *req.Amount)

	c.JSON(http.StatusOK, models.TransactionResponse{
		Message: fmt.Sprintf("Transaction will be added to Block %d", index),
		Index:   index,
	})
}

func (h *Handlers) getPending(c *gin.Context) {
	pool := h.ledger.Mempool()
	c.JSON(http.StatusOK, models.MempoolResponse{
		Count:        len(pool),
		Transactions: pool,
	})
}
