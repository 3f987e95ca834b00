// package formatter renders run history, schedules and the error taxonomy as CSV, JSON and plain text tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/recovery"
	"github.com/desertthunder/searchviz/internal/shared"
	"github.com/desertthunder/searchviz/internal/stages"
)

var runHeaders = []string{"Seq", "ID", "Query", "Type", "Outcome", "Error", "Elapsed", "Response", "Accelerated", "Created"}

// runJSON is the exported shape of a [models.Run], durations in milliseconds.
type runJSON struct {
	ID          string `json:"id"`
	Sequence    int    `json:"sequence"`
	Query       string `json:"query"`
	SearchType  string `json:"search_type"`
	Outcome     string `json:"outcome"`
	ErrorKind   string `json:"error_kind,omitempty"`
	ElapsedMS   int64  `json:"elapsed_ms"`
	ResponseMS  int64  `json:"response_ms"`
	Accelerated bool   `json:"accelerated"`
	CreatedAt   string `json:"created_at"`
}

func runRecord(r *models.Run) []string {
	response := ""
	if r.ResponseTime > 0 {
		response = shared.FormatMillis(r.ResponseTime)
	}
	return []string{
		strconv.Itoa(r.Sequence),
		r.ID,
		r.Query,
		string(r.SearchType),
		string(r.Outcome),
		string(r.ErrorKind),
		shared.FormatMillis(r.Elapsed),
		response,
		strconv.FormatBool(r.Accelerated),
		r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// RunsToCSV converts runs to CSV with columns: Seq, ID, Query, Type, Outcome, Error, Elapsed, Response, Accelerated, Created
func RunsToCSV(runs []*models.Run) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(runHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range runs {
		if err := writer.Write(runRecord(r)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// RunsToJSON converts runs to an indented JSON array.
func RunsToJSON(runs []*models.Run) ([]byte, error) {
	out := make([]runJSON, len(runs))
	for i, r := range runs {
		out[i] = runJSON{
			ID:          r.ID,
			Sequence:    r.Sequence,
			Query:       r.Query,
			SearchType:  string(r.SearchType),
			Outcome:     string(r.Outcome),
			ErrorKind:   string(r.ErrorKind),
			ElapsedMS:   r.Elapsed.Milliseconds(),
			ResponseMS:  r.ResponseTime.Milliseconds(),
			Accelerated: r.Accelerated,
			CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal runs: %w", err)
	}
	return append(data, '\n'), nil
}

// RunsText renders runs as a bordered table, or a short notice when there are none.
func RunsText(runs []*models.Run) string {
	if len(runs) == 0 {
		return "No runs recorded yet.\n"
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rec := runRecord(r)
		// The full id is only useful in exports.
		rec[1] = shortID(rec[1])
		rows[i] = rec
	}
	return render(runHeaders, rows)
}

// ScheduleText renders the per-stage timing of s against the stage catalog.
func ScheduleText(s models.Schedule, catalog []models.Stage) string {
	rows := make([][]string, 0, len(s.Stages)+1)
	for _, st := range s.Stages {
		title := ""
		if stage, ok := stages.Find(catalog, st.ID); ok {
			title = stage.Icon + " " + stage.Title
		}
		rows = append(rows, []string{
			strconv.Itoa(st.ID),
			title,
			shared.FormatMillis(s.Offset(st.ID)),
			shared.FormatMillis(st.Duration),
		})
	}
	rows = append(rows, []string{"", "Total", "", shared.FormatMillis(s.Total)})

	var sb strings.Builder
	sb.WriteString(render([]string{"Stage", "Title", "Starts", "Duration"}, rows))
	if s.Accelerated {
		fmt.Fprintf(&sb, "Accelerated ×%.2f\n", s.SpeedFactor)
	}
	return sb.String()
}

// TaxonomyText renders every error kind with its bound stage, retry flag and actions.
func TaxonomyText() string {
	rows := make([][]string, 0, len(models.ErrorKinds))
	for _, kind := range models.ErrorKinds {
		p := recovery.Lookup(kind)
		labels := make([]string, len(p.Actions))
		for i, a := range p.Actions {
			labels[i] = a.Label
		}
		rows = append(rows, []string{
			string(kind),
			strconv.Itoa(p.Stage),
			strconv.FormatBool(p.Retryable),
			strings.Join(labels, ", "),
			p.UserMessage,
		})
	}
	return render([]string{"Kind", "Stage", "Retryable", "Actions", "Message"}, rows)
}

// RunsExportResult contains the paths of files created by WriteRunsExport
type RunsExportResult struct {
	CSVFile  string
	JSONFile string
}

// WriteRunsExport writes runs to {base}.csv and {base}.json.
//
// Parent directories of base are created as needed.
func WriteRunsExport(runs []*models.Run, base string) (*RunsExportResult, error) {
	if base == "" {
		return nil, fmt.Errorf("%w: export path", shared.ErrMissingArgument)
	}
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	csvData, err := RunsToCSV(runs)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}
	csvFile := base + ".csv"
	if err := os.WriteFile(csvFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	jsonData, err := RunsToJSON(runs)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JSON: %w", err)
	}
	jsonFile := base + ".json"
	if err := os.WriteFile(jsonFile, jsonData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write JSON file: %w", err)
	}

	return &RunsExportResult{CSVFile: csvFile, JSONFile: jsonFile}, nil
}

func render(headers []string, rows [][]string) string {
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cell.Bold(true)
			}
			return cell
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String() + "\n"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
