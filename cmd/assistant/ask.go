package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayush/smart-research-assistant/internal/billing"
	"github.com/ayush/smart-research-assistant/internal/export"
	"github.com/ayush/smart-research-assistant/internal/ingest"
	"github.com/ayush/smart-research-assistant/internal/research"
	"github.com/ayush/smart-research-assistant/internal/session"
)

type askOptions struct {
	files   []string
	live    []string
	docxOut string
	pdfOut  string
}

func newAskCmd(a *app) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   `ask "<question>"`,
		Short: "Generate one report in a throwaway session",
		Example: `  assistant ask "components of DBMS" --file notes.pdf \
    --live "DBMS Basics|blog.x.com|A DBMS has a storage manager..." --pdf report.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := newGenerator(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			svc := research.NewService(gen, a.cfg.CostPerReport, a.log)
			sess := session.New(a.cfg.InitialCredits)

			for _, entry := range opts.live {
				title, source, content, err := parseLive(entry)
				if err != nil {
					return err
				}
				if _, err := svc.IngestLiveUpdate(sess, title, source, content); err != nil {
					return fmt.Errorf("--live %q: %w", entry, err)
				}
			}

			files := make([]ingest.File, 0, len(opts.files))
			for _, p := range opts.files {
				data, err := os.ReadFile(p)
				if err != nil {
					return fmt.Errorf("read %s: %w", p, err)
				}
				files = append(files, ingest.File{Name: filepath.Base(p), Data: data})
			}

			out, err := svc.Generate(cmd.Context(), sess, args[0], files)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), out)

			title := export.Title(out.Report.Question)
			if opts.docxOut != "" {
				if err := writeExport(opts.docxOut, export.FormatDOCX, out.Report.Report, title); err != nil {
					return err
				}
			}
			if opts.pdfOut != "" {
				if err := writeExport(opts.pdfOut, export.FormatPDF, out.Report.Report, title); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&opts.files, "file", "f", nil, "document to use as evidence (pdf, docx, html, txt); repeatable")
	cmd.Flags().StringArrayVar(&opts.live, "live", nil, `live update as "title|source|content"; repeatable, later entries are newer`)
	cmd.Flags().StringVar(&opts.docxOut, "docx", "", "write the report as DOCX to this path")
	cmd.Flags().StringVar(&opts.pdfOut, "pdf", "", "write the report as PDF to this path")
	return cmd
}

// parseLive splits "title|source|content". The source may be empty; content
// may itself contain "|".
func parseLive(entry string) (title, source, content string, err error) {
	parts := strings.SplitN(entry, "|", 3)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("--live %q: want \"title|source|content\"", entry)
	}
	return parts[0], parts[1], parts[2], nil
}

func writeExport(path string, f export.Format, text, title string) error {
	data, err := export.Render(f, text, title)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printOutcome(w io.Writer, out *research.Outcome) {
	r := out.Report
	fmt.Fprintln(w, r.Report)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "────────────────────────────────────────")

	if r.Fallback {
		note := "fallback report (no language model)"
		if out.GenerationErr != nil {
			note = fmt.Sprintf("fallback report (%s failed: %v)", r.Backend, out.GenerationErr)
		}
		fmt.Fprintln(w, "Note:", note)
	}

	if len(r.Takeaways) > 0 {
		fmt.Fprintln(w, "Key Takeaways:")
		for _, t := range r.Takeaways {
			fmt.Fprintf(w, "  • %s\n", t)
		}
	}

	fmt.Fprintln(w, "Sources:")
	if len(r.Sources) == 0 {
		fmt.Fprintf(w, "  %s\n", research.NoSourcesMessage)
	}
	for _, s := range r.Sources {
		fmt.Fprintf(w, "  %s\n", s)
	}

	for _, warn := range out.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warn)
	}

	u := out.Usage
	fmt.Fprintf(w, "Usage: %d question(s), %d report(s), %.2f credit(s) used, %.2f remaining\n",
		u.Questions, u.Reports, u.CreditsUsed, u.CreditsRemaining)
	fmt.Fprintf(w, "Billing: %s\n", billing.FormatRecord(out.Billing))
}
