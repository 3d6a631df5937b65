package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/homebite/orderdesk/internal/importer"
)

// ImportOptions configures one run of the import command.
type ImportOptions struct {
	File           string
	URL            string
	Token          string
	SkipDuplicates bool
	UpdateExisting bool
	// Preview parses the file locally and prints the preview without uploading.
	Preview    bool
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

// ImportCommand uploads an order sheet, or previews it with -preview. It
// returns the process exit code.
func ImportCommand(ctx context.Context, opts ImportOptions) int {
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if opts.File == "" {
		fmt.Fprintln(stderr, "import: a file is required")
		return 2
	}
	data, err := os.ReadFile(opts.File)
	if err != nil {
		fmt.Fprintf(stderr, "import: %v\n", err)
		return 1
	}
	upload := importer.Upload{Filename: filepath.Base(opts.File), Data: data}

	if opts.Preview {
		return previewFile(upload, stdout, stderr)
	}

	if opts.URL == "" {
		fmt.Fprintln(stderr, "import: -url is required unless -preview is set")
		return 2
	}
	client := importer.NewClient(opts.URL, opts.Token, opts.HTTPClient)
	last := -1
	transfer := client.Start(ctx, upload, importer.Options{
		SkipDuplicates: opts.SkipDuplicates,
		UpdateExisting: opts.UpdateExisting,
	}, func(p importer.Progress) {
		if p.State == importer.StateUploading && p.Percent != last {
			last = p.Percent
			fmt.Fprintf(stderr, "\ruploading %3d%%", p.Percent)
		}
	})

	go func() {
		select {
		case <-ctx.Done():
			transfer.Cancel()
		case <-transfer.Done():
		}
	}()

	summary, err := transfer.Wait()
	if last >= 0 {
		fmt.Fprintln(stderr)
	}
	if err != nil {
		var uploadErr *importer.UploadError
		if errors.As(err, &uploadErr) && uploadErr.Kind == importer.FailureCancelled {
			fmt.Fprintln(stderr, "import: cancelled")
			return 130
		}
		fmt.Fprintf(stderr, "import: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "batch %s: %d imported, %d updated, %d skipped, %d failed of %d rows\n",
		summary.BatchID, summary.Imported, summary.Updated, summary.Skipped, summary.Failed, summary.Total)
	for _, msg := range summary.Errors {
		fmt.Fprintf(stdout, "  %s\n", msg)
	}
	if summary.Failed > 0 {
		return 1
	}
	return 0
}

func previewFile(u importer.Upload, stdout, stderr io.Writer) int {
	sheet, err := importer.Parse(u.Filename, u.ContentType, u.Data)
	if err != nil {
		fmt.Fprintf(stderr, "import: %v\n", err)
		return 1
	}
	preview := importer.BuildPreview(sheet)
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(preview); err != nil {
		fmt.Fprintf(stderr, "import: %v\n", err)
		return 1
	}
	if !preview.CanUpload {
		return 1
	}
	return 0
}
