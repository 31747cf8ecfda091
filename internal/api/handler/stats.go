package handler

import (
	"net/http"

	"github.com/bracketiq/madness-data/internal/api/respond"
	"github.com/bracketiq/madness-data/internal/query"
)

// GetTeamStats lists team season statistics.
// @Summary List team statistics
// @Description Team season statistics filtered by year range and team name substring. Malformed parameters are ignored. Non-finite values are null.
// @Tags stats
// @Produce json
// @Param start_year query int false "First year (inclusive); alone it selects that year only"
// @Param end_year query int false "Last year (inclusive); used only with start_year"
// @Param team query string false "Case-insensitive team name substring"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} respond.ErrorResponse
// @Router /stats [get]
func (h *Handler) GetTeamStats(w http.ResponseWriter, r *http.Request) {
	h.writeTeamStats(w, r, query.ParseFilter(r.URL.Query()))
}

// GetTeamStatsByYear lists one year's team statistics.
// @Summary Team statistics for one year
// @Tags stats
// @Produce json
// @Param year path int true "Tournament year"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /stats/year/{year} [get]
func (h *Handler) GetTeamStatsByYear(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	h.writeTeamStats(w, r, query.Year(year))
}

func (h *Handler) writeTeamStats(w http.ResponseWriter, r *http.Request, f query.Filter) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	defer sess.Close()

	rows, err := query.TeamStats(r.Context(), sess, f)
	if err != nil {
		h.storeError(w, "team_stats", err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"team_stats": rows})
}
