package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/burrowhq/burrow/internal/core"
	"github.com/burrowhq/burrow/internal/models"
)

type reportView struct {
	ID            int64     `json:"id"`
	ReporterID    int64     `json:"reporterId,omitempty"`
	TargetType    string    `json:"targetType"`
	TargetID      int64     `json:"targetId"`
	Reason        string    `json:"reason"`
	Status        string    `json:"status"`
	Severity      string    `json:"severity"`
	SpamScore     float64   `json:"spamScore,omitempty"`
	ToxicityScore float64   `json:"toxicityScore,omitempty"`
	ActionTaken   string    `json:"actionTaken,omitempty"`
	HandledBy     int64     `json:"handledBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func newReportView(rep *models.Report) reportView {
	return reportView{
		ID:            rep.ID,
		ReporterID:    rep.ReporterID.Int64,
		TargetType:    rep.Target.Kind.String(),
		TargetID:      rep.Target.ID,
		Reason:        rep.Reason,
		Status:        rep.Status,
		Severity:      rep.Severity,
		SpamScore:     rep.SpamScore.Float64,
		ToxicityScore: rep.ToxicityScore.Float64,
		ActionTaken:   rep.ActionTaken.String,
		HandledBy:     rep.HandledBy.Int64,
		CreatedAt:     rep.CreatedAt,
	}
}

func (r *Router) fileReport(c *gin.Context) {
	var req struct {
		TargetType string `json:"targetType"`
		TargetID   int64  `json:"targetId"`
		Reason     string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.Validationf("invalid request body"))
		return
	}
	kind, err := models.ParseTargetKind(req.TargetType)
	if err != nil {
		respondError(c, core.Validationf("targetType must be post, comment or user"))
		return
	}

	report, err := r.reports.File(c.Request.Context(), currentUserID(c),
		models.TargetRef{Kind: kind, ID: req.TargetID}, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "report", newReportView(report), "report filed")
}

func (r *Router) listOpenReports(c *gin.Context) {
	p := parsePagination(c)
	reports, total, err := r.reports.ListOpen(c.Request.Context(), p.Limit, p.Offset())
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]reportView, 0, len(reports))
	for _, rep := range reports {
		views = append(views, newReportView(rep))
	}
	respondPage(c, "reports", views, total, p)
}

func (r *Router) resolveReport(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Action string `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.Validationf("invalid request body"))
		return
	}

	report, err := r.reports.Resolve(c.Request.Context(), currentUserID(c), id, req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "report", newReportView(report), "report resolved")
}
