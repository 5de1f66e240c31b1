package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/duarte/tender-finder/internal/db"
	"github.com/labstack/echo/v4"
)

// Malformed numeric or date parameters fail closed to their defaults rather
// than erroring the whole request.

func intParam(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func floatParam(c echo.Context, name string) *float64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func boolParam(c echo.Context, name string, def bool) bool {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	return raw == "true" || raw == "1"
}

func dateParam(c echo.Context, name string) *time.Time {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func sortOrder(raw, def string) string {
	if raw == "asc" || raw == "desc" {
		return raw
	}
	return def
}

func priceSortOrder(raw string) string {
	if raw == "asc" || raw == "desc" {
		return raw
	}
	return "none"
}

func idParam(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (s *Server) handleListAnnouncements(c echo.Context) error {
	params := db.ListParams{
		Search:         c.QueryParam("search"),
		Entity:         c.QueryParam("entity"),
		District:       c.QueryParam("district"),
		ContractType:   c.QueryParam("contractType"),
		CPV:            c.QueryParam("cpv"),
		Criteria:       c.QueryParam("criteria"),
		DateSort:       sortOrder(c.QueryParam("dateSortOrder"), "desc"),
		PriceSort:      priceSortOrder(c.QueryParam("priceSortOrder")),
		Page:           intParam(c, "page", 1),
		Limit:          intParam(c, "limit", db.DefaultPageSize),
		IncludeExpired: boolParam(c, "includeExpired", false),
		IncludeNA:      boolParam(c, "includeNA", true),
		ShowArchived:   boolParam(c, "showArchived", false),
		MinPrice:       floatParam(c, "minPrice"),
		MaxPrice:       floatParam(c, "maxPrice"),
		MinDate:        dateParam(c, "minDate"),
		MaxDate:        dateParam(c, "maxDate"),
	}

	result, err := s.Store.ListAnnouncements(c.Request().Context(), params)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list announcements")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch announcements"})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetAnnouncement(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid announcement ID"})
	}

	ann, err := s.Store.GetAnnouncement(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Announcement not found"})
		}
		s.log.Error().Err(err).Int64("id", id).Msg("failed to fetch announcement")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, ann)
}

func (s *Server) handleGetAdjudicationFactors(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid announcement ID"})
	}

	factors, err := s.Store.GetAdjudicationFactors(c.Request().Context(), id)
	if err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("failed to fetch adjudication factors")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch adjudication factors"})
	}

	return c.JSON(http.StatusOK, map[string]any{"factors": factors})
}

func (s *Server) handleGetArchiveStatus(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid announcement ID"})
	}

	isArchived, exists, err := s.Store.GetArchiveStatus(c.Request().Context(), id)
	if err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("failed to fetch archive status")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch archive status"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"isArchived": isArchived,
		"exists":     exists,
	})
}

func (s *Server) handleSetArchiveStatus(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid announcement ID"})
	}

	var body struct {
		IsArchived *bool `json:"isArchived"`
	}
	if err := c.Bind(&body); err != nil || body.IsArchived == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "isArchived must be a boolean"})
	}

	ctx := c.Request().Context()
	exists, err := s.Store.AnnouncementExists(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("failed to check announcement")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update archive status"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Announcement not found"})
	}

	if err := s.Store.SetArchived(ctx, id, *body.IsArchived); err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("failed to update archive status")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update archive status"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"isArchived": *body.IsArchived,
	})
}

func (s *Server) handleGetNote(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid announcement ID"})
	}

	note, err := s.Store.GetNote(c.Request().Context(), id)
	if err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("failed to fetch note")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch note"})
	}

	return c.JSON(http.StatusOK, map[string]any{"note": note})
}

func (s *Server) handleSaveNote(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid announcement ID"})
	}

	var body struct {
		NoteText *string `json:"noteText"`
	}
	if err := c.Bind(&body); err != nil || body.NoteText == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid note text"})
	}

	note, err := s.Store.UpsertNote(c.Request().Context(), id, *body.NoteText)
	if err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("failed to save note")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save note"})
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "note": note})
}

func (s *Server) handleDeleteNote(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid announcement ID"})
	}

	if err := s.Store.DeleteNote(c.Request().Context(), id); err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("failed to delete note")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete note"})
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleGetDistricts(c echo.Context) error {
	districts, err := s.Store.GetDistricts(c.Request().Context(), c.QueryParam("cpv"))
	if err != nil {
		s.log.Error().Err(err).Msg("failed to fetch districts")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch districts"})
	}
	return c.JSON(http.StatusOK, districts)
}

func (s *Server) handleGetContractTypes(c echo.Context) error {
	types, err := s.Store.GetContractTypes(c.Request().Context(), c.QueryParam("cpv"))
	if err != nil {
		s.log.Error().Err(err).Msg("failed to fetch contract types")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch contract types"})
	}
	return c.JSON(http.StatusOK, types)
}

func (s *Server) handleGetCPVCodes(c echo.Context) error {
	ids := parseIDList(c.QueryParam("ids"))
	if len(ids) == 0 {
		return c.JSON(http.StatusOK, map[string]any{"cpvs": []string{}})
	}

	codes, err := s.Store.GetCPVCodes(c.Request().Context(), ids)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to fetch cpv codes")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch CPV codes"})
	}
	return c.JSON(http.StatusOK, map[string]any{"cpvs": codes})
}

// parseIDList splits a CSV of announcement ids, dropping anything non-numeric.
func parseIDList(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Server) handleSeed(c echo.Context) error {
	count, err := s.Store.SeedSampleData(c.Request().Context())
	if err != nil {
		s.log.Error().Err(err).Msg("seed failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Seed failed"})
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Seed complete", "count": count})
}
