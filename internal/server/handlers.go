package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/xavrousseau/datalyzer/internal/dataset"
	"github.com/xavrousseau/datalyzer/internal/export"
	"github.com/xavrousseau/datalyzer/internal/join"
	"github.com/xavrousseau/datalyzer/internal/profile"
	"github.com/xavrousseau/datalyzer/internal/session"
	"github.com/xavrousseau/datalyzer/internal/stats"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.mgr.Create()
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      sess.ID,
		"created": sess.Created,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.Delete(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, &dataset.InvalidArgumentError{Reason: "multipart form expected: " + err.Error()})
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, &dataset.InvalidArgumentError{Reason: "missing 'file' part"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		writeError(w, err)
		return
	}

	t, err := sess.Load(hdr.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile.Summarize(t))
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tables": sess.Names(),
		"active": sess.ActiveName(),
	})
}

func (s *Server) handleDropTable(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	if err := sess.Drop(r.PathValue("name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectTable(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	if err := sess.SetActive(r.PathValue("name")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"active": r.PathValue("name")})
}

// tableFor resolves a table name, falling back to the active table when
// the name is empty.
func tableFor(sess *session.Session, name string) (*dataset.Table, error) {
	if name == "" {
		return sess.Active()
	}
	return sess.Get(name)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	t, err := sess.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": profile.Summarize(t),
		"columns": profile.Columns(t, s.cfg.TopValues),
		"missing": profile.MissingReport(t),
	})
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	t, err := sess.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile.Quality(t))
}

func (s *Server) handleOutliers(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	t, err := sess.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	method := profile.OutlierMethod(r.URL.Query().Get("method"))
	if method == "" {
		method = profile.OutlierZScore
	}
	threshold := s.cfg.OutlierZThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		threshold, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, &dataset.InvalidArgumentError{Reason: "threshold must be numeric"})
			return
		}
	}
	writeJSON(w, http.StatusOK, profile.Outliers(t, method, threshold))
}

func (s *Server) handleSuggestTypes(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	t, err := sess.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile.SuggestTypes(t))
}

// castKinds maps the request vocabulary onto column kinds.
var castKinds = map[string]dataset.Kind{
	"int":      dataset.KindInt,
	"float":    dataset.KindFloat,
	"string":   dataset.KindString,
	"bool":     dataset.KindBool,
	"datetime": dataset.KindTime,
	"time":     dataset.KindTime,
}

func (s *Server) handleApplyTypes(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	var req struct {
		Casts map[string]string `json:"casts"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Casts) == 0 {
		writeError(w, &dataset.InvalidArgumentError{Reason: "no casts requested"})
		return
	}
	casts := make(map[string]dataset.Kind, len(req.Casts))
	for col, raw := range req.Casts {
		k, okk := castKinds[strings.ToLower(raw)]
		if !okk {
			writeError(w, &dataset.InvalidArgumentError{Reason: "unknown target type '" + raw + "'"})
			return
		}
		casts[col] = k
	}

	name := r.PathValue("name")
	t, err := sess.Transform(name, "typage", fmt.Sprintf("%d column(s) recast on %s", len(casts), name),
		func(t *dataset.Table) (*dataset.Table, error) {
			out := t
			var err error
			for col, kind := range casts {
				out, err = out.CastColumn(col, kind)
				if err != nil {
					return nil, err
				}
			}
			return out, nil
		})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile.Summarize(t))
}

func (s *Server) handleDropColumns(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	var req struct {
		Columns []string `json:"columns"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Columns) == 0 {
		writeError(w, &dataset.InvalidArgumentError{Reason: "no columns named"})
		return
	}
	name := r.PathValue("name")
	t, err := sess.Transform(name, "drop_columns",
		fmt.Sprintf("%s dropped from %s", strings.Join(req.Columns, ", "), name),
		func(t *dataset.Table) (*dataset.Table, error) {
			return t.DropColumns(req.Columns...)
		})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile.Summarize(t))
}

func (s *Server) handleDropDuplicates(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	var before int
	t, err := sess.Transform(name, "drop_duplicates", "exact duplicate rows removed from "+name,
		func(t *dataset.Table) (*dataset.Table, error) {
			before = t.NumRows()
			return t.DropDuplicates(), nil
		})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"removed": before - t.NumRows(),
		"summary": profile.Summarize(t),
	})
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	var req struct {
		Table  string `json:"table"`
		Method string `json:"method"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := tableFor(sess, req.Table)
	if err != nil {
		writeError(w, err)
		return
	}
	method := stats.CorrMethod(req.Method)
	if method == "" {
		method = stats.Pearson
	}
	m := stats.CorrelationMatrix(t, method)
	writeJSON(w, http.StatusOK, map[string]any{
		"matrix": m,
		"top":    stats.TopCorrelations(m, 10),
	})
}

func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	var req struct {
		Table  string `json:"table"`
		Target string `json:"target"`
		Group  string `json:"group"`
		Method string `json:"method"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := tableFor(sess, req.Table)
	if err != nil {
		writeError(w, err)
		return
	}
	method := stats.CorrMethod(req.Method)
	if method == "" {
		method = stats.Pearson
	}
	corrs, err := stats.TargetCorrelations(t, req.Target, method)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]any{"correlations": corrs}
	if req.Group != "" {
		groups, err := stats.GroupBy(t, req.Target, req.Group)
		if err != nil {
			writeError(w, err)
			return
		}
		resp["groups"] = groups
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCramersV(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	var req struct {
		Table string `json:"table"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := tableFor(sess, req.Table)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.CramersVMatrix(t))
}

func (s *Server) handlePCA(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	var req struct {
		Table      string `json:"table"`
		Components int    `json:"components"`
		Clusters   int    `json:"clusters"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := tableFor(sess, req.Table)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := stats.PCA(t, req.Components)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]any{"pca": res}
	if req.Clusters > 0 {
		km, err := stats.KMeans(res.Scores, req.Clusters)
		if err != nil {
			writeError(w, err)
			return
		}
		resp["kmeans"] = km
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSuggestJoins(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	var req struct {
		Left  string `json:"left"`
		Right string `json:"right"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	opt := join.ScorerOptions{
		MaxColsPerSide: s.cfg.SuggestMaxColsPerSide,
		MaxUniques:     s.cfg.SuggestMaxUniques,
		MinScore:       s.cfg.SuggestMinScore,
	}
	suggestions, err := sess.SuggestJoins(req.Left, req.Right, opt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	var req struct {
		Left      string   `json:"left"`
		Right     string   `json:"right"`
		LeftKeys  []string `json:"left_keys"`
		RightKeys []string `json:"right_keys"`
		Kind      string   `json:"kind"`
		Name      string   `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	kind := join.Kind(strings.ToLower(req.Kind))
	if req.Kind == "" {
		kind = join.KindInner
	}
	name := req.Name
	if name == "" {
		name = "fusion_" + stem(req.Left) + "_" + stem(req.Right)
	}
	spec := join.Spec{LeftKeys: req.LeftKeys, RightKeys: req.RightKeys, Kind: kind}
	t, res, err := sess.Join(req.Left, req.Right, spec, name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"name":       name,
		"rows":       t.NumRows(),
		"cols":       t.NumCols(),
		"matched":    res.Matched,
		"left_only":  res.LeftOnly,
		"right_only": res.RightOnly,
	})
}

func stem(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	var req struct {
		Table string `json:"table"`
		Label string `json:"label"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	name, err := sess.SaveSnapshot(req.Table, req.Label)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": sess.Snapshots()})
}

func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	t, err := sess.RestoreSnapshot(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile.Summarize(t))
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	if err := sess.DeleteSnapshot(r.PathValue("name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport serves {table}.{format}. The table name keeps its own
// extension, so "clients.csv.csv" exports table clients.csv as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	file := r.PathValue("file")
	dot := strings.LastIndex(file, ".")
	if dot <= 0 {
		writeError(w, &dataset.InvalidArgumentError{Reason: "export path must end in .csv or .parquet"})
		return
	}
	tableName, format := file[:dot], file[dot+1:]
	t, err := sess.Get(tableName)
	if err != nil {
		writeError(w, err)
		return
	}

	var data []byte
	var contentType string
	switch format {
	case "csv":
		data, err = export.CSV(t)
		contentType = "text/csv; charset=utf-8"
	case "parquet":
		data, err = export.Parquet(t)
		contentType = "application/octet-stream"
	default:
		writeError(w, &dataset.UnsupportedFormatError{File: file, Ext: "." + format})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		return
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": sess.History()})
}
