package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgefn/roadbook/internal/dataset"
	"github.com/edgefn/roadbook/internal/version"
	"github.com/edgefn/roadbook/pkg/directions"
)

type requestFlags struct {
	baseURL  string
	token    string
	profile  string
	language string
	dataset  string
	steps    bool
	legacy   bool
	timeout  time.Duration
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.baseURL, "base-url", "https://api.mapbox.com", "directions service base url")
	fs.StringVar(&f.token, "token", "", "access token (defaults to RDB_ACCESS_TOKEN)")
	fs.StringVar(&f.profile, "profile", "driving", "routing profile: driving, walking or cycling")
	fs.StringVar(&f.language, "language", "", "instruction language, e.g. en-US")
	fs.StringVar(&f.dataset, "dataset", "", "local dataset directory; when set, results are derived offline")
	fs.BoolVar(&f.steps, "steps", true, "request turn-by-turn steps")
	fs.DurationVar(&f.timeout, "timeout", 30*time.Second, "request timeout")
}

func (f *requestFlags) client() (*directions.Client, error) {
	token := strings.TrimSpace(f.token)
	if token == "" {
		token = strings.TrimSpace(os.Getenv("RDB_ACCESS_TOKEN"))
	}
	cfg := directions.ClientConfig{
		BaseURL:              f.baseURL,
		AccessToken:          token,
		ApplicationUserAgent: version.AppUserAgent(),
		HTTPClient:           &http.Client{Timeout: f.timeout},
	}
	if strings.TrimSpace(f.dataset) != "" {
		engine, err := dataset.OpenSnapshot(strings.TrimSpace(f.dataset))
		if err != nil {
			return nil, err
		}
		cfg.LocalEngine = &directions.LocalEngineConfig{
			Engine:      engine,
			DatasetPath: strings.TrimSpace(f.dataset),
		}
	}
	return directions.NewClient(cfg)
}

func newRouteCmd() *cobra.Command {
	var flags requestFlags
	cmd := &cobra.Command{
		Use:   "route <lon,lat> <lon,lat> [lon,lat ...]",
		Short: "Request a route through the given waypoints",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			waypoints, err := parseCoordinateArgs(args)
			if err != nil {
				return err
			}
			client, err := flags.client()
			if err != nil {
				return err
			}
			defer client.Close()

			opts := &directions.RouteOptions{
				Profile:       directions.Profile(flags.profile),
				Waypoints:     waypoints,
				IncludesSteps: flags.steps,
				Locale:        flags.language,
			}
			if flags.legacy {
				opts.Variant = directions.VariantLegacy
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()
			resp, err := client.GetRoutes(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderRoutes(resp))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.legacy, "legacy", false, "decode the response as the previous wire-format generation")
	return cmd
}

func newMatchCmd() *cobra.Command {
	var flags requestFlags
	cmd := &cobra.Command{
		Use:   "match <lon,lat> <lon,lat> [lon,lat ...]",
		Short: "Map-match a coordinate trace onto the road network",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			waypoints, err := parseCoordinateArgs(args)
			if err != nil {
				return err
			}
			client, err := flags.client()
			if err != nil {
				return err
			}
			defer client.Close()

			opts := &directions.MatchOptions{
				Profile:       directions.Profile(flags.profile),
				Waypoints:     waypoints,
				IncludesSteps: flags.steps,
				Locale:        flags.language,
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()
			resp, err := client.Match(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderRoutes(resp))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func parseCoordinateArgs(args []string) ([]directions.Waypoint, error) {
	waypoints := make([]directions.Waypoint, 0, len(args))
	for i, arg := range args {
		parts := strings.Split(strings.TrimSpace(arg), ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("argument %d: want lon,lat, got %q", i+1, arg)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: bad longitude %q", i+1, parts[0])
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: bad latitude %q", i+1, parts[1])
		}
		waypoints = append(waypoints, directions.NewWaypoint(lon, lat))
	}
	return waypoints, nil
}
