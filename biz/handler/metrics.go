package handler

import (
	"bytes"
	"context"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	hconsts "github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// metricsFormat 以 Prometheus 文本格式输出
var metricsFormat = expfmt.NewFormat(expfmt.TypeTextPlain)

// Metrics 输出默认注册表中的全部指标
func (h *Handler) Metrics(ctx context.Context, c *app.RequestContext) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		slog.Error("Metrics failed, gather err = %+v", err)
		c.JSON(hconsts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, metricsFormat)
	for _, mf := range families {
		if err = enc.Encode(mf); err != nil {
			slog.Error("Metrics failed, encode %s err = %+v", mf.GetName(), err)
			c.JSON(hconsts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
	}
	c.Data(hconsts.StatusOK, string(metricsFormat), buf.Bytes())
}
