// workers/tx_verify_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"write-on-backend/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"gorm.io/gorm"
)

// TxVerifyClient checks campaign-creation transactions against the chain.
// Campaign creation trusts the client-reported tx hash; this worker closes
// the loop afterwards by fetching the receipt and flagging the row.
type TxVerifyClient struct {
	DB     *gorm.DB
	Client *ethclient.Client
}

func NewTxVerifyClient(db *gorm.DB, rpcURL string) (*TxVerifyClient, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, err
	}
	return &TxVerifyClient{DB: db, Client: client}, nil
}

// VerifyPending looks up receipts for unverified campaigns. A missing receipt
// is fine (not mined yet, or wrong chain) — the row is retried next cycle.
func (c *TxVerifyClient) VerifyPending(ctx context.Context) {
	var campaigns []models.Campaign
	err := c.DB.Where("chain_verified = ? AND tx_hash <> ''", false).
		Limit(50).
		Find(&campaigns).Error
	if err != nil {
		log.Printf("❌ [TX_VERIFY] DB error: %v", err)
		return
	}

	for _, campaign := range campaigns {
		receipt, err := c.Client.TransactionReceipt(ctx, common.HexToHash(campaign.TxHash))
		if err != nil {
			continue
		}
		if receipt.Status != 1 {
			log.Printf("⚠️  [TX_VERIFY] campaign %s tx %s reverted on-chain", campaign.ID, campaign.TxHash)
			continue
		}

		if err := c.DB.Model(&models.Campaign{}).
			Where("id = ?", campaign.ID).
			Update("chain_verified", true).Error; err != nil {
			log.Printf("❌ [TX_VERIFY] failed to mark campaign %s: %v", campaign.ID, err)
			continue
		}
		log.Printf("✅ [TX_VERIFY] campaign %s verified (tx %s)", campaign.ID, campaign.TxHash)
	}
}

// PollReceipts runs the verification loop until the context is cancelled.
func PollReceipts(ctx context.Context, client *TxVerifyClient, pollInterval time.Duration) {
	log.Println("Starting campaign tx receipt polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Tx receipt polling stopped.")
			return
		case <-ticker.C:
			client.VerifyPending(ctx)
		}
	}
}
