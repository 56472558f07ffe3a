// package formatter provides functions to export collection listings to various formats (CSV, JSON, Markdown, plain text)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/favdl/internal/models"
	"github.com/desertthunder/favdl/internal/shared"
)

// ImageFetcher downloads an image URL. Used for the optional Markdown cover.
type ImageFetcher func(ctx context.Context, url string) ([]byte, error)

// ExportToCSV converts a Collection to CSV format with columns: BVID, Title, Author, Parts, Duration, Saved
func ExportToCSV(c *models.Collection) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"BVID", "Title", "Author", "Parts", "Duration", "Saved"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range c.Entries {
		record := []string{
			e.ID,
			e.Title,
			e.Author,
			strconv.Itoa(e.PageCount),
			strconv.Itoa(e.Duration),
			shared.FormatUnix(e.FavTime),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Collection to Markdown format with optional cover image
func ExportToMarkdown(c *models.Collection, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	title := c.Info.Title
	if title == "" {
		title = fmt.Sprintf("Collection %d", c.Info.ID)
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if c.Info.Intro != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", c.Info.Intro)
	}
	if c.Info.Owner != "" {
		fmt.Fprintf(&buf, "**Owner**: %s\n", c.Info.Owner)
	}
	fmt.Fprintf(&buf, "**Entries**: %d\n\n", len(c.Entries))

	buf.WriteString("## Entries\n\n")
	for i, e := range c.Entries {
		parts := ""
		if e.PageCount > 1 {
			parts = fmt.Sprintf(" (%d parts)", e.PageCount)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s] `%s`\n", i+1, e.Author, e.Title, parts, shared.FormatDuration(e.Duration), e.ID)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Collection to plain text format
func ExportToText(c *models.Collection) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Collection: %s\n", c.Info.Title)
	if c.Info.Intro != "" {
		fmt.Fprintf(&buf, "Description: %s\n", c.Info.Intro)
	}
	fmt.Fprintf(&buf, "Entries: %d\n\n", len(c.Entries))

	for i, e := range c.Entries {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, e.Author, e.Title)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a Collection to indented JSON.
func ExportToJSON(c *models.Collection) ([]byte, error) {
	return shared.MarshalJSON(c, true)
}

// ValidateFormat returns an [shared.ErrInvalidArgument] error for unknown export formats.
func ValidateFormat(format string) error {
	switch format {
	case "", "json", "csv", "markdown", "md", "txt", "text":
		return nil
	}
	return fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
}

// Export renders a Collection in the named format: csv, json, markdown or txt.
func Export(c *models.Collection, format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	switch format {
	case "csv":
		return ExportToCSV(c)
	case "markdown", "md":
		return ExportToMarkdown(c, "")
	case "txt", "text":
		return ExportToText(c)
	default:
		return ExportToJSON(c)
	}
}

// WriteExport writes a Collection to path in the named format.
//
// Markdown exports are written as {path}/README.md with an optional cover.jpg fetched by fetch.
// Returns the files created.
func WriteExport(ctx context.Context, c *models.Collection, format, path string, fetch ImageFetcher) ([]string, error) {
	if format == "markdown" || format == "md" {
		res, err := WriteMarkdownExport(ctx, c, path, fetch)
		if err != nil {
			return nil, err
		}
		return res.Files, nil
	}

	data, err := Export(c, format)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return []string{path}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a Collection to Markdown format in a dedicated directory.
//
// Creates {dir}/README.md and, when fetch is non-nil and the folder has a cover, {dir}/cover.jpg.
// A failed cover download is not an error.
func WriteMarkdownExport(ctx context.Context, c *models.Collection, outputDir string, fetch ImageFetcher) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = strconv.FormatInt(c.Info.ID, 10)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverFilename string
	if fetch != nil && c.Info.Cover != "" {
		if data, err := fetch(ctx, c.Info.Cover); err == nil {
			coverPath := filepath.Join(outputDir, "cover.jpg")
			if err := os.WriteFile(coverPath, data, 0644); err == nil {
				coverFilename = "cover.jpg"
				result.CoverImage = coverPath
				result.Files = append(result.Files, coverPath)
			}
		}
	}

	mdData, err := ExportToMarkdown(c, coverFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}
