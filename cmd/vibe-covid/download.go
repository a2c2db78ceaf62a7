package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Reference genome fetched by the download command.
const (
	defaultAccession = "NC_045512.2"
	efetchURL        = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// genbankURL returns the NCBI efetch URL for a GenBank flat file.
func genbankURL(accession string) string {
	q := url.Values{}
	q.Set("db", "nuccore")
	q.Set("id", accession)
	q.Set("rettype", "gbwithparts")
	q.Set("retmode", "text")
	return efetchURL + "?" + q.Encode()
}

func newDownloadCmd() *cobra.Command {
	var (
		accession string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the reference GenBank record",
		Long: `Download the reference genome with its coding regions from NCBI.

After downloading, vibe-covid type uses the file automatically when no
reference is given.`,
		Example: `  vibe-covid download
  vibe-covid download --accession MN908947.3 --output /data/ref`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir == "" {
				outputDir = dataDir()
			}
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", outputDir, err)
			}

			dest := filepath.Join(outputDir, accession+".gb")
			fmt.Printf("Downloading %s from NCBI...\n", accession)
			fmt.Printf("Destination: %s\n\n", outputDir)

			if err := downloadFile(cmd.Context(), genbankURL(accession), dest); err != nil {
				return fmt.Errorf("downloading %s: %w", accession, err)
			}

			fmt.Printf("\nDownload complete!\n")
			fmt.Printf("To type a sample, run:\n")
			fmt.Printf("  vibe-covid type --catalog variants.csv sample.vcf\n")
			return nil
		},
	}

	cmd.Flags().StringVar(&accession, "accession", defaultAccession, "Nucleotide accession to download")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default: ~/.vibe-covid/)")

	return cmd
}

// defaultReference returns the downloaded GenBank record if present.
func defaultReference() (string, bool) {
	path := filepath.Join(dataDir(), defaultAccession+".gb")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// downloadFile downloads a file from URL to the destination path with progress.
func downloadFile(ctx context.Context, rawURL, destPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if info, err := os.Stat(destPath); err == nil {
		fmt.Printf("  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Printf("  Downloading %s...\n", filepath.Base(destPath))
	logger.Debug("http get", zap.String("url", rawURL))

	client := &http.Client{
		Timeout: 5 * time.Minute,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	var downloaded int64
	pw := &progressWriter{
		total:      resp.ContentLength,
		downloaded: &downloaded,
		lastPrint:  time.Now(),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Printf("    Done: %s\n", formatSize(downloaded))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	total      int64
	downloaded *int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	*pw.downloaded += int64(n)

	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(*pw.downloaded) / float64(pw.total) * 100
			fmt.Printf("\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(*pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Printf("\r    Progress: %s  ", formatSize(*pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
