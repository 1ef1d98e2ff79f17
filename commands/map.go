package commands

import (
	"fmt"
	"os"

	"cityguard/client"
	"cityguard/config"
	"cityguard/maprender"

	"github.com/apex/log"
	"github.com/spf13/cobra"
)

// MapCommand returns the map export command
func MapCommand() *cobra.Command {
	var apiURL, out string

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Export the reports map",
		Long:  `Fetch every report from the server and write the Leaflet map document to a file or stdout.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := initialise(false); err != nil {
				return err
			}
			if apiURL == "" {
				apiURL = config.AppConfig.APIURL
			}

			reports, err := client.NewAPI(apiURL).FetchReports(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching reports: %w", err)
			}

			doc, err := maprender.Render(reports, mapOptions())
			if err != nil {
				return fmt.Errorf("rendering map: %w", err)
			}

			if out == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), doc)
				return err
			}
			if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
				return err
			}
			log.WithFields(log.Fields{"reports": len(reports), "path": out}).Info("map written")
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", "", "server base URL (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the document to this file instead of stdout")

	return cmd
}

// mapOptions applies the configured view on top of the default one.
func mapOptions() maprender.Options {
	opts := maprender.DefaultOptions()
	cfg := config.AppConfig
	if cfg.MapCenterLat != 0 || cfg.MapCenterLon != 0 {
		opts.CenterLat = cfg.MapCenterLat
		opts.CenterLon = cfg.MapCenterLon
	}
	if cfg.MapZoom > 0 {
		opts.Zoom = cfg.MapZoom
	}
	opts.FitBounds = cfg.MapFitBounds
	return opts
}
