package kb

import (
	"github.com/hildam/funeral-claim-go/entity/conf"
	"github.com/philippgille/chromem-go"
)

// NewEmbeddingFunc OpenAI 兼容的向量接口；未配置 base_url 时直连 OpenAI
func NewEmbeddingFunc(cfg conf.EmbeddingModel) chromem.EmbeddingFunc {
	if cfg.BaseURL == "" {
		return chromem.NewEmbeddingFuncOpenAI(cfg.APIKey, chromem.EmbeddingModelOpenAI(cfg.ModelID))
	}
	return chromem.NewEmbeddingFuncOpenAICompat(cfg.BaseURL, cfg.APIKey, cfg.ModelID, nil)
}
