package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/site-report/internal/config"
)

func newExtractCmd() *cobra.Command {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Fetches a page and prints its extracted content",
		Long: `Fetches the page directly, extracts its title, description and main
content, and prints the result as JSON. With --html the rendered article
view is printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtractCommand(cmd, args[0], asHTML)
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "print the rendered article view")
	return cmd
}

func runExtractCommand(cmd *cobra.Command, rawURL string, asHTML bool) error {
	rt, err := resolveSession(cmd.Context())
	if err != nil {
		return err
	}
	if err := rt.cfg.ValidateFetch(); err != nil {
		return err
	}

	cfg := rt.cfg
	// Extraction never calls the model.
	cfg.LLM.Provider = config.ProviderSample
	appInstance, err := newApp(cfg, rt.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application services: %w", err)
	}
	defer appInstance.Close()

	result, article, err := appInstance.Extract(cmd.Context(), rawURL)
	if err != nil {
		return err
	}
	if asHTML {
		_, err = io.WriteString(cmd.OutOrStdout(), article+"\n")
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
