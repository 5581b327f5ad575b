package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/raushankrgupta/marketchoice-admin/catalog"
	"github.com/raushankrgupta/marketchoice-admin/config"
	"github.com/raushankrgupta/marketchoice-admin/scrapers"
	"github.com/raushankrgupta/marketchoice-admin/scrapers/base"
	"github.com/raushankrgupta/marketchoice-admin/scrapers/render"
	"github.com/spf13/cobra"
)

var (
	importEngine string
	importForm   bool
)

// importCmd runs the import pipeline against live links and prints what it got.
var importCmd = &cobra.Command{
	Use:   "import <url>...",
	Short: "Import product links and print the scraped records",
	Long: `Runs the same pipeline as POST /import without touching the catalog.

Examples:
  mcadmin import "https://www.amazon.in/dp/B0CHX1W1XY"
  mcadmin import --engine none --form "https://www.flipkart.com/x/p/itm123"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if importEngine == "" {
			importEngine = config.RenderEngine
		}
		renderer, err := render.NewService(render.Config{
			Engine:           importEngine,
			MicrolinkURL:     config.MicrolinkURL,
			MicrolinkAPIKey:  config.MicrolinkAPIKey,
			ChromeDriverPath: config.ChromeDriverPath,
			Client:           &http.Client{Timeout: config.RenderTimeout},
			SettleDelay:      2 * time.Second,
		}, logger)
		if err != nil {
			return err
		}
		proxies, err := base.ParseProxyChain(config.ProxyChain)
		if err != nil {
			return err
		}
		importer := scrapers.NewImporter(renderer,
			base.NewProxyChain(proxies, base.NewFetcher(config.ProxyTimeout), config.ProxyTimeout, logger),
			config.RenderTimeout, logger)

		out := cmd.OutOrStdout()
		failed := 0
		for _, u := range args {
			fmt.Fprintf(out, "Testing URL: %s\n", u)
			rec, err := importer.FetchProductFromLink(context.Background(), u)
			if err != nil {
				failed++
				fmt.Fprintf(out, "Failed: %v\nHint: %s\n", err, scrapers.Hint(err, u))
				fmt.Fprintln(out, "--------------------------------------------------")
				continue
			}
			var v interface{} = rec
			if importForm {
				v = catalog.FormFromScraped(rec)
			}
			b, _ := json.MarshalIndent(v, "", "  ")
			fmt.Fprintf(out, "Product: %s\n", b)
			fmt.Fprintln(out, "--------------------------------------------------")
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d imports failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importEngine, "engine", "e", "", "render engine: microlink, chromedp, selenium or none (default from RENDER_ENGINE)")
	importCmd.Flags().BoolVarP(&importForm, "form", "f", false, "print the prefilled product form instead of the raw record")
}
