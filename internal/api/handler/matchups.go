package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bracketiq/madness-data/internal/api/respond"
	"github.com/bracketiq/madness-data/internal/bracket"
	"github.com/bracketiq/madness-data/internal/matchup"
	"github.com/bracketiq/madness-data/internal/query"
)

// GetMatchups lists historical matchups.
// @Summary List historical matchups
// @Description Stored tournament games with precomputed differentials, filtered by inclusive year range and team name substring (either side).
// @Tags matchups
// @Produce json
// @Param start_year query int false "First year (inclusive); alone it selects that year only"
// @Param end_year query int false "Last year (inclusive); used only with start_year"
// @Param team query string false "Case-insensitive substring of either team's name"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} respond.ErrorResponse
// @Router /matchups [get]
func (h *Handler) GetMatchups(w http.ResponseWriter, r *http.Request) {
	h.writeMatchups(w, r, query.ParseFilter(r.URL.Query()))
}

// GetMatchupsByYear lists one year's historical matchups.
// @Summary Historical matchups for one year
// @Tags matchups
// @Produce json
// @Param year path int true "Tournament year"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /matchups/year/{year} [get]
func (h *Handler) GetMatchupsByYear(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	h.writeMatchups(w, r, query.Year(year))
}

func (h *Handler) writeMatchups(w http.ResponseWriter, r *http.Request, f query.Filter) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	defer sess.Close()

	rows, err := query.Matchups(r.Context(), sess, f)
	if err != nil {
		h.storeError(w, "matchups", err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"matchups": rows})
}

// GetMatchupStats computes the differential between two teams.
// @Summary Matchup differential
// @Description Per-statistic difference teamA minus teamB for one season, rounded to three decimals.
// @Tags matchups
// @Produce json
// @Param year path int true "Season year"
// @Param teamA query string true "Team name (exact)"
// @Param teamB query string true "Team name (exact)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /matchups/{year} [get]
func (h *Handler) GetMatchupStats(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	teamA := strings.TrimSpace(r.URL.Query().Get("teamA"))
	teamB := strings.TrimSpace(r.URL.Query().Get("teamB"))
	if teamA == "" || teamB == "" {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeMissingTeams, "teamA and teamB query parameters are required")
		return
	}

	d, err := matchup.Lookup(r.Context(), h.store, year, teamA, teamB)
	switch {
	case err == nil:
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"matchup_stats": d})
	case errors.Is(err, matchup.ErrNotFound):
		respond.WriteErrorDetail(w, http.StatusNotFound, respond.CodeTeamNotFound,
			"One or both of the teams not in table", err.Error())
	case errors.Is(err, matchup.ErrAmbiguous):
		respond.WriteErrorDetail(w, http.StatusConflict, respond.CodeAmbiguous,
			"More than one statistics row matches a team", err.Error())
	default:
		h.storeError(w, "matchup_stats", err)
	}
}

// GetRound returns one bracket round with differentials per pairing.
// @Summary Bracket round
// @Description Pairings of round64 or round32 with results when played, upset flags and differentials from the schedule's stats year. Pairings whose statistics cannot be loaded carry stats_available=false. Played rounds include a summary.
// @Tags bracket
// @Produce json
// @Param year path int true "Tournament year"
// @Param round path string true "Round" Enums(round64, round32)
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /matchups/{year}/{round} [get]
func (h *Handler) GetRound(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "round")
	pairings, ok := h.schedule.Round(name)
	if !ok || year != h.schedule.StatsYear {
		respond.WriteError(w, http.StatusNotFound, respond.CodeRoundNotFound,
			fmt.Sprintf("No %s bracket for %d", name, year))
		return
	}

	games, err := h.brackets.Games(r.Context(), pairings)
	if err != nil {
		h.storeError(w, "bracket_"+name, err)
		return
	}

	body := map[string]interface{}{bracket.ResponseKey(name): games}
	if played(pairings) {
		body["summary"] = bracket.Summarize(pairings)
	}
	respond.WriteJSONObject(w, http.StatusOK, body)
}

func played(pairings []bracket.Pairing) bool {
	for _, p := range pairings {
		if p.Completed() {
			return true
		}
	}
	return false
}
