package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"smarttime/internal/convert"
	"smarttime/internal/format"
	"smarttime/internal/ics"
	appLog "smarttime/internal/log"
	"smarttime/internal/model"
	"smarttime/internal/period"
	"smarttime/internal/tz"
	"smarttime/internal/validation"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type periodDTO struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
	Name  string    `json:"name,omitempty"`
	Type  string    `json:"type,omitempty" validate:"omitempty,period_type"`
}

func toDTO(p period.TimePeriod) periodDTO {
	return periodDTO{Start: p.Start(), End: p.End(), Name: p.Name(), Type: string(p.Type())}
}

type mergeRequest struct {
	Periods []periodDTO `json:"periods" validate:"dive"`
	// Mode is "union" (default) or "intersect".
	Mode string `json:"mode,omitempty" validate:"omitempty,oneof=union intersect"`
}

type mergeResponse struct {
	Periods []periodDTO `json:"periods"`
}

// POST /api/periods/merge
//
//	{"periods": [{"start": "...", "end": "..."}], "mode": "union"}
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	periods := make([]period.TimePeriod, 0, len(req.Periods))
	for i, dto := range req.Periods {
		p, err := period.New(dto.Start, dto.End, period.WithName(dto.Name), period.WithType(period.PeriodType(dto.Type)))
		if err != nil {
			writeError(w, http.StatusBadRequest, "periods["+strconv.Itoa(i)+"]: "+err.Error())
			return
		}
		periods = append(periods, p)
	}

	var merged []period.TimePeriod
	if req.Mode == "intersect" {
		merged = period.IntersectChain(periods)
	} else {
		merged = period.Merge(periods)
	}

	resp := mergeResponse{Periods: make([]periodDTO, 0, len(merged))}
	for _, p := range merged {
		resp.Periods = append(resp.Periods, toDTO(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// dayParam parses a free-form day in the configured zone.
func (s *Server) dayParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, errors.New(name + " is required")
	}
	t, err := convert.ParseAnyIn(raw, s.location())
	if err != nil {
		return time.Time{}, errors.New(name + ": " + err.Error())
	}
	return period.DateOf(t), nil
}

func (s *Server) spanParams(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	start, err := s.dayParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return start, start, false
	}
	end, err := s.dayParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return start, end, false
	}
	if end.Sub(start) > maxRangeDays*24*time.Hour {
		writeError(w, http.StatusBadRequest, "range too long")
		return start, end, false
	}
	return start, end, true
}

type rangeResponse struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Count int      `json:"count"`
	Dates []string `json:"dates"`
}

// GET /api/range?start=2024-02-25&end=2024-03-01&weekends=false
func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	start, end, ok := s.spanParams(w, r)
	if !ok {
		return
	}
	weekends := true
	if v := r.URL.Query().Get("weekends"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "weekends must be a boolean")
			return
		}
		weekends = b
	}

	dr := period.NewDateRange(start, end, weekends)
	resp := rangeResponse{
		Start: start.Format(time.DateOnly),
		End:   end.Format(time.DateOnly),
		Dates: []string{},
	}
	for d := range dr.All() {
		resp.Dates = append(resp.Dates, d.Format(time.DateOnly))
	}
	resp.Count = len(resp.Dates)
	writeJSON(w, http.StatusOK, resp)
}

type calendarPeriodResponse struct {
	periodDTO
	Days int `json:"days"`
}

// GET /api/period?type=week&date=2024-05-15
//
// Weeks begin on the configured week_start.
func (s *Server) handlePeriod(w http.ResponseWriter, r *http.Request) {
	day, err := s.dayParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	typ := period.PeriodType(r.URL.Query().Get("type"))
	if typ == "" {
		typ = period.TypeDay
	}
	p, err := period.Of(typ, day, s.weekStart())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, calendarPeriodResponse{periodDTO: toDTO(p), Days: period.NewDateRange(p.Start(), p.End(), true).Len()})
}

type holidaysResponse struct {
	Holidays []model.Holiday `json:"holidays"`
}

// GET /api/holidays?year=2024&month=2
func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := intParam(q, "year", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	month, err := intParam(q, "month", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if month < 0 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be 1-12")
		return
	}
	writeJSON(w, http.StatusOK, holidaysResponse{Holidays: s.store.List(year, time.Month(month))})
}

// GET /api/holidays.ics?year=2024
func (s *Server) handleHolidaysICS(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r.URL.Query(), "year", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body := ics.ExportICS(s.store.List(year, 0), "smarttime holidays", s.now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="holidays.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

type workingDaysResponse struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	WorkingDays  int    `json:"working_days"`
	BusinessDays int    `json:"business_days"`
}

// GET /api/working-days?start=2024-02-12&end=2024-02-18
func (s *Server) handleWorkingDays(w http.ResponseWriter, r *http.Request) {
	start, end, ok := s.spanParams(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, workingDaysResponse{
		Start:        start.Format(time.DateOnly),
		End:          end.Format(time.DateOnly),
		WorkingDays:  s.store.WorkingDays(start, end),
		BusinessDays: s.store.BusinessDays(start, end),
	})
}

// GET /api/tz/America/Sao_Paulo
func (s *Server) handleZone(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(chi.URLParam(r, "*"), "/")
	if name == "" {
		writeError(w, http.StatusBadRequest, "zone name is required")
		return
	}
	info, err := tz.InfoAt(name, s.now())
	if err != nil {
		if errors.Is(err, tz.ErrUnknownZone) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type convertResponse struct {
	Time      string `json:"time"`
	Unix      int64  `json:"unix"`
	Zone      string `json:"zone"`
	Formatted string `json:"formatted,omitempty"`
}

// GET /api/convert?value=25/02/2024 14:30&format=%d/%m/%Y %H:%M&from=America/Sao_Paulo&to=UTC&output=%H:%M
//
// format and from are optional; without format the value is auto-detected,
// without from it is read in the configured zone.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	value := q.Get("value")
	if value == "" {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}

	loc := s.location()
	if from := q.Get("from"); from != "" {
		l, err := tz.Load(from)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		loc = l
	}

	var (
		t   time.Time
		err error
	)
	if layout := q.Get("format"); layout != "" {
		t, err = convert.StringToTimeIn(value, layout, loc)
	} else {
		t, err = convert.ParseAnyIn(value, loc)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if to := q.Get("to"); to != "" {
		l, err := tz.Load(to)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		t = t.In(l)
	}

	resp := convertResponse{
		Time: t.Format(time.RFC3339Nano),
		Unix: t.Unix(),
		Zone: t.Location().String(),
	}
	if out := q.Get("output"); out != "" {
		resp.Formatted = convert.TimeToString(t, out)
	}
	writeJSON(w, http.StatusOK, resp)
}

type relativeResponse struct {
	Text   string `json:"text"`
	Locale string `json:"locale"`
}

// GET /api/format/relative?time=2024-02-25T12:00:00Z&ref=...&locale=en
func (s *Server) handleRelative(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := q.Get("time")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "time is required")
		return
	}
	t, err := convert.ParseAnyIn(raw, s.location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ref := s.now()
	if v := q.Get("ref"); v != "" {
		if ref, err = convert.ParseAnyIn(v, s.location()); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	locale := q.Get("locale")
	if locale == "" {
		locale = s.locale()
	}
	matched := format.MatchLocale(locale)
	appLog.Debug("relative format", "time", t, "ref", ref, "locale", matched.String())
	writeJSON(w, http.StatusOK, relativeResponse{
		Text:   format.Relative(t, ref, matched.String()),
		Locale: matched.String(),
	})
}
