package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/vip7612-maker/monglemongle/internal/domain"
	"github.com/vip7612-maker/monglemongle/internal/providers/sheets"
	"github.com/vip7612-maker/monglemongle/pkg/zip"
)

type loginRequest struct {
	Passphrase string `json:"passphrase"`
}

// AdminLogin exchanges the shared passphrase for a signed admin token.
func (a *App) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeObject(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	token, exp, err := a.Auth.IssueToken(req.Passphrase)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			a.log(r).Warn().Msg("admin login rejected")
			a.error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		a.log(r).Error().Err(err).Msg("issue admin token")
		a.error(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":   true,
		"token":     token,
		"expiresAt": exp.UTC().Format(time.RFC3339),
	})
}

// ExportSheets overwrites the configured spreadsheet with every record.
func (a *App) ExportSheets(w http.ResponseWriter, r *http.Request) {
	err := a.export(r)
	a.Metrics.Export(err)
	if err != nil {
		a.log(r).Error().Err(err).Msg("export to sheets")
		a.error(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true})
}

func (a *App) export(r *http.Request) error {
	if a.Exporter == nil || !a.Exporter.Configured() {
		return sheets.ErrNotConfigured
	}
	list, err := a.Submissions.Snapshot(r.Context())
	if err != nil {
		return err
	}
	return a.Exporter.Export(r.Context(), list)
}

// Backup downloads every record as a zip of CSV and JSON files.
func (a *App) Backup(w http.ResponseWriter, r *http.Request) {
	list, err := a.Submissions.Snapshot(r.Context())
	if err != nil {
		a.log(r).Error().Err(err).Msg("backup snapshot")
		a.error(w, http.StatusInternalServerError, err.Error())
		return
	}
	now := a.Now().UTC()
	csvData, err := backupCSV(list)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "failed to encode backup")
		return
	}
	jsonData, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		a.error(w, http.StatusInternalServerError, "failed to encode backup")
		return
	}

	var buf bytes.Buffer
	err = zip.Write(&buf, []zip.File{
		{Name: "submissions.csv", Data: csvData, Modified: now},
		{Name: "submissions.json", Data: jsonData, Modified: now},
	})
	if err != nil {
		a.log(r).Error().Err(err).Msg("backup archive")
		a.error(w, http.StatusInternalServerError, "failed to build archive")
		return
	}
	name := fmt.Sprintf("submissions-%s.zip", now.Format("20060102-150405"))
	if a.Archive != nil {
		key, err := a.Archive.Write(r.Context(), "backups/"+name, buf.Bytes())
		if err != nil {
			a.log(r).Warn().Err(err).Msg("store backup copy")
		} else {
			w.Header().Set("X-Backup-Key", key)
		}
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func backupCSV(list []domain.Submission) ([]byte, error) {
	var buf bytes.Buffer
	// Leading BOM marks the file as UTF-8.
	buf.WriteString("\ufeff")
	cw := csv.NewWriter(&buf)
	if err := cw.Write([]string{"id", "date", "name", "phone", "target", "amount", "message", "type", "isDeleted"}); err != nil {
		return nil, err
	}
	for _, s := range list {
		rec := []string{
			strconv.FormatInt(s.ID, 10),
			s.Date,
			s.Name,
			s.Phone,
			s.Target,
			strconv.FormatInt(s.Amount, 10),
			s.Message,
			string(s.Type),
			strconv.FormatBool(s.IsDeleted),
		}
		if err := cw.Write(rec); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	return buf.Bytes(), cw.Error()
}
