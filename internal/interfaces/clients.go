// Package interfaces defines service contracts for the advisor
package interfaces

import (
	"context"

	"github.com/mtasci89/weekly-wealth-advisor/internal/models"
)

// AIClient generates free-form text from a prompt via an external model.
// Implementations must wrap credential rejections in common.ErrInvalidCredential
// and provider throttling in common.ErrRateLimited so callers can tell those
// apart from generic failures.
type AIClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// AssetFeed supplies the current asset universe. The engine makes no freshness
// assumption beyond "reflects current market state at call time".
type AssetFeed interface {
	FetchAssets(ctx context.Context) ([]models.Asset, error)
}
