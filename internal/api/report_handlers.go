package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// monthParams reads year and month, defaulting to the current hotel month.
func (s *HTTPServer) monthParams(r *http.Request) (int, int, error) {
	today := s.svc.Queries.Today()
	year, err := queryInt(r, "year")
	if err != nil {
		return 0, 0, err
	}
	month, err := queryInt(r, "month")
	if err != nil {
		return 0, 0, err
	}
	if year == 0 {
		year = today.Year()
	}
	if month == 0 && r.URL.Query().Get("month") == "" {
		month = int(today.Month())
	}
	return year, month, nil
}

func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.monthParams(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	cal, err := s.svc.Queries.GetCalendar(r.Context(), year, month)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

func (s *HTTPServer) handleCalendarExport(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.monthParams(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.svc.Queries.ExportCalendar(r.Context(), year, month, &buf); err != nil {
		fail(w, r, err)
		return
	}

	filename := fmt.Sprintf("calendar-%04d-%02d.xlsx", year, month)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *HTTPServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		fail(w, r, err)
		return
	}
	summary, err := s.svc.Queries.GetDashboard(r.Context(), date)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *HTTPServer) handleArrivals(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		fail(w, r, err)
		return
	}
	list, err := s.svc.Queries.Arrivals(r.Context(), date)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": list})
}

func (s *HTTPServer) handleDepartures(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		fail(w, r, err)
		return
	}
	list, err := s.svc.Queries.Departures(r.Context(), date)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": list})
}
