package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
	"github.com/BruksfildServices01/slot-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/slot-scheduler/internal/usecase/schedule"
)

type DailyRunner interface {
	Run(ctx context.Context) (schedule.Report, error)
}

type OpsHandler struct {
	daily DailyRunner
}

func NewOpsHandler(daily DailyRunner) *OpsHandler {
	return &OpsHandler{daily: daily}
}

// RunDaily executes the daily generation inline and returns its report.
func (h *OpsHandler) RunDaily(c *gin.Context) {
	report, err := h.daily.Run(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, report)
}
