package handoff

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pulpit/internal/fileutil"
	"pulpit/internal/textutil"
)

// Input names everything the bundle needs. CardPath and AudioPath are copied
// into the bundle directory so the review folder is self-contained.
type Input struct {
	Title        string
	Subtitle     string
	RunDate      string
	Description  string
	CardPath     string
	AudioPath    string
	OverlayLines []string
}

// Bundle lists the files written for one handoff.
type Bundle struct {
	Dir              string
	CSVPath          string
	CardPath         string
	AudioPath        string
	InstructionsPath string
}

// Write assembles a Canva Bulk Create bundle under reviewDir: the data CSV,
// the title card PNG, the narration audio, and printable instructions. The
// bundle directory is named from the run date and title so review folders
// sort chronologically.
func Write(reviewDir string, in Input) (*Bundle, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, errors.New("handoff title is required")
	}
	if strings.TrimSpace(reviewDir) == "" {
		return nil, errors.New("review directory is required")
	}

	name := textutil.SanitizeToken(in.Title)
	if in.RunDate != "" {
		name = in.RunDate + "-" + name
	}
	dir := filepath.Join(reviewDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create handoff directory: %w", err)
	}

	bundle := &Bundle{Dir: dir}

	csvPath := filepath.Join(dir, "bulk_create_row.csv")
	if err := writeBulkCreateCSV(csvPath, in); err != nil {
		return nil, err
	}
	bundle.CSVPath = csvPath

	if strings.TrimSpace(in.CardPath) != "" {
		dst := filepath.Join(dir, "title_card.png")
		if err := fileutil.CopyFile(in.CardPath, dst); err != nil {
			return nil, fmt.Errorf("copy title card: %w", err)
		}
		bundle.CardPath = dst
	}

	if strings.TrimSpace(in.AudioPath) != "" {
		dst := filepath.Join(dir, "narration"+filepath.Ext(in.AudioPath))
		if err := fileutil.CopyFile(in.AudioPath, dst); err != nil {
			return nil, fmt.Errorf("copy narration audio: %w", err)
		}
		bundle.AudioPath = dst
	}

	instructionsPath := filepath.Join(dir, "HANDOFF.txt")
	if err := os.WriteFile(instructionsPath, []byte(instructions(in, bundle)), 0o644); err != nil {
		return nil, fmt.Errorf("write handoff instructions: %w", err)
	}
	bundle.InstructionsPath = instructionsPath

	return bundle, nil
}

// writeBulkCreateCSV emits a single-row CSV whose headers are sorted so a
// Canva template binds the same columns run after run. Overlay lines become
// numbered overlay_NN columns.
func writeBulkCreateCSV(path string, in Input) error {
	fields := map[string]string{
		"title":       in.Title,
		"subtitle":    in.Subtitle,
		"date":        in.RunDate,
		"description": in.Description,
	}
	for i, line := range in.OverlayLines {
		fields[fmt.Sprintf("overlay_%02d", i+1)] = line
	}

	headers := make([]string, 0, len(fields))
	for header := range fields {
		headers = append(headers, header)
	}
	sort.Strings(headers)

	row := make([]string, len(headers))
	for i, header := range headers {
		row[i] = fields[header]
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bulk create csv: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll([][]string{headers, row}); err != nil {
		return fmt.Errorf("write bulk create csv: %w", err)
	}
	return file.Close()
}

func instructions(in Input, bundle *Bundle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Canva Bulk Create handoff for %q\n\n", in.Title)
	b.WriteString("1) Open the Canva video template; text fields should use placeholders\n")
	b.WriteString("   like {title}, {subtitle}, {date}, {description}.\n")
	fmt.Fprintf(&b, "2) Apps > Bulk Create > Upload CSV > select %s\n", filepath.Base(bundle.CSVPath))
	b.WriteString("3) Map the columns and apply to design.\n")
	if bundle.CardPath != "" {
		fmt.Fprintf(&b, "4) Drop %s in as the opening frame background.\n", filepath.Base(bundle.CardPath))
	}
	if bundle.AudioPath != "" {
		fmt.Fprintf(&b, "5) Add %s to the timeline and extend the background to the audio length.\n",
			filepath.Base(bundle.AudioPath))
	}
	b.WriteString("6) Export video > MP4, then mark the item done in the queue.\n")
	return b.String()
}
