package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/site-report/internal/report"
)

type reportOptions struct {
	instructions string
	mode         string
	mockFile     string
	out          string
}

func newReportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report <url>",
		Short: "Generates an HTML report for a website",
		Long: `Acquires the page content (via the crawl service by default, or a
direct fetch with --mode direct) and writes the synthesized HTML report to
stdout or --out. --mock-file supplies the content and skips acquisition.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportCommand(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.instructions, "instructions", "", "what the report should focus on")
	cmd.Flags().StringVar(&opts.mode, "mode", string(report.ModeCrawl), "content acquisition: crawl or direct")
	cmd.Flags().StringVar(&opts.mockFile, "mock-file", "", "read page content from this file instead of acquiring it")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the report to this file")
	return cmd
}

func runReportCommand(cmd *cobra.Command, rawURL string, opts reportOptions) error {
	rt, err := resolveSession(cmd.Context())
	if err != nil {
		return err
	}

	req := report.Request{
		URL:          rawURL,
		Instructions: opts.instructions,
		Mode:         report.Mode(opts.mode),
	}
	if opts.mockFile != "" {
		content, err := os.ReadFile(opts.mockFile)
		if err != nil {
			return fmt.Errorf("read mock content: %w", err)
		}
		req.MockContent = string(content)
	}

	if err := rt.cfg.ValidateLLM(); err != nil {
		return err
	}
	switch {
	case req.MockContent != "":
	case req.Mode == report.ModeDirect:
		if err := rt.cfg.ValidateFetch(); err != nil {
			return err
		}
	default:
		if err := rt.cfg.ValidateCrawl(); err != nil {
			return err
		}
	}

	appInstance, err := newApp(rt.cfg, rt.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application services: %w", err)
	}
	defer appInstance.Close()

	output, err := appInstance.Generate(cmd.Context(), req)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	if _, err := io.WriteString(w, output.String()+"\n"); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
