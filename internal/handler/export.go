package handler

import (
	"fmt"
	"net/http"

	"crediario-backend/internal/report"
)

// export downloads the filtered ledger view as CSV or XLSX.
func (h CrediarioHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "formato inválido (use csv ou xlsx)")
		return
	}
	q := report.Query{
		Search:  r.URL.Query().Get("search"),
		Balance: r.URL.Query().Get("balance"),
		Sort:    r.URL.Query().Get("sort"),
	}
	if !report.ValidQuery(q) {
		writeError(w, http.StatusBadRequest, "filtro ou ordenação inválidos")
		return
	}
	st, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	rows := report.Filter(st.Crediarios, q)

	var (
		data        []byte
		err         error
		contentType string
	)
	if format == "csv" {
		data, err = report.CSV(rows)
		contentType = "text/csv; charset=utf-8"
	} else {
		data, err = report.XLSX(rows)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		loggerOr(h.Logger).Error("export failed", "format", format, "err", err)
		writeError(w, http.StatusInternalServerError, "falha ao gerar arquivo")
		return
	}

	filename := fmt.Sprintf("crediarios_%s.%s", h.now().Format("20060102_150405"), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
