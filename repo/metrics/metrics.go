package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "funeral_claim"

var (
	// chatTurns 每轮对话按回答来源计数
	chatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "Total number of chat turns by answer source",
		},
		[]string{"source"},
	)

	// ragFallbacks 知识库分支降级到对话流程
	ragFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rag_fallback_total",
			Help:      "Total number of RAG turns that fell back to the agent graph",
		},
		[]string{"reason"},
	)

	// stageFailures 阶段内被兜底的失败
	stageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Total number of recovered stage failures",
		},
		[]string{"stage", "kind"},
	)

	extractionDocuments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_documents_total",
			Help:      "Total number of evidence documents processed",
		},
		[]string{"document_type", "status"},
	)

	kbRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kb_rebuilds_total",
			Help:      "Total number of knowledge base rebuilds",
		},
		[]string{"status"},
	)
)

// ChatTurn 记录一轮对话
func ChatTurn(source string) {
	chatTurns.WithLabelValues(source).Inc()
}

// RAGFallback 记录知识库降级
func RAGFallback(reason string) {
	ragFallbacks.WithLabelValues(reason).Inc()
}

// StageFailure 记录阶段失败
func StageFailure(stage, kind string) {
	stageFailures.WithLabelValues(stage, kind).Inc()
}

// ExtractionDocument 记录证据文档处理结果
func ExtractionDocument(documentType, status string) {
	extractionDocuments.WithLabelValues(documentType, status).Inc()
}

// KBRebuild 记录知识库重建结果
func KBRebuild(status string) {
	kbRebuilds.WithLabelValues(status).Inc()
}
