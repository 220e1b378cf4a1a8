package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sysresolve/pkg/artifact"
	"github.com/matzehuels/sysresolve/pkg/errors"
	"github.com/matzehuels/sysresolve/pkg/resolver"
)

// resolveOutput is the JSON form of one resolution.
type resolveOutput struct {
	Coordinate string `json:"coordinate"`
	PURL       string `json:"purl"`
	Found      bool   `json:"found"`
	resolver.Result
}

func (c *CLI) resolveCommand() *cobra.Command {
	var (
		provider   bool
		persistent bool
		asJSON     bool
		classpath  bool
		details    bool
	)

	cmd := &cobra.Command{
		Use:   "resolve COORDINATE...",
		Short: "Resolve artifacts to installed files",
		Long: `Resolve artifacts to installed files and print one path per line.

Coordinates have the form group:name[:extension[:classifier]][:version].
The command fails if any artifact cannot be resolved.`,
		Example: `  sysresolve resolve junit:junit
  sysresolve resolve --provider org.apache.commons:commons-io:2.4
  sysresolve resolve --classpath junit:junit org.hamcrest:hamcrest-core`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coords, err := parseCoordinates(args)
			if err != nil {
				return err
			}
			e, err := c.loadEngine(cmd.Context())
			if err != nil {
				return err
			}

			reqs := make([]resolver.Request, len(coords))
			for i, a := range coords {
				reqs[i] = resolver.Request{Artifact: a, ProviderNeeded: provider || details, PersistentFileNeeded: persistent}
			}
			results, err := resolver.ResolveAll(cmd.Context(), e, reqs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var missing []string
			for i, res := range results {
				if !res.Found() {
					missing = append(missing, coords[i].String())
				}
			}

			switch {
			case asJSON:
				outputs := make([]resolveOutput, len(results))
				for i, res := range results {
					outputs[i] = resolveOutput{
						Coordinate: coords[i].String(),
						PURL:       coords[i].PURL(),
						Found:      res.Found(),
						Result:     res,
					}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(outputs); err != nil {
					return err
				}
			case classpath:
				var paths []string
				for _, res := range results {
					if res.Found() {
						paths = append(paths, res.Path)
					}
				}
				fmt.Fprintln(out, strings.Join(paths, ":"))
			case details:
				for i, res := range results {
					if !res.Found() {
						continue
					}
					printSuccess(out, "%s", coords[i])
					printKeyValue(out, "path", res.Path)
					if res.CompatVersion != "" {
						printKeyValue(out, "compat", res.CompatVersion)
					}
					if res.Provider != "" {
						printKeyValue(out, "provider", res.Provider)
					}
					if res.Namespace != "" {
						printKeyValue(out, "namespace", res.Namespace)
					}
					printKeyValue(out, "repository", res.Repository)
				}
			default:
				for _, res := range results {
					if !res.Found() {
						continue
					}
					if provider && res.Provider != "" {
						fmt.Fprintf(out, "%s %s\n", res.Path, res.Provider)
						continue
					}
					fmt.Fprintln(out, res.Path)
				}
			}

			if len(missing) > 0 {
				for _, m := range missing {
					printWarning(cmd.ErrOrStderr(), "unable to resolve %s", m)
				}
				return errors.New(errors.ErrCodeNotFound, "%d of %d artifacts could not be resolved", len(missing), len(coords))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&provider, "provider", false, "also print the package providing each file")
	cmd.Flags().BoolVar(&persistent, "persistent", false, "request files usable beyond this build")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&classpath, "classpath", false, "print resolved paths joined by ':'")
	cmd.Flags().BoolVar(&details, "details", false, "print every field of each result")
	cmd.MarkFlagsMutuallyExclusive("json", "classpath", "details")

	return cmd
}

func parseCoordinates(args []string) ([]artifact.Coordinate, error) {
	coords := make([]artifact.Coordinate, len(args))
	for i, arg := range args {
		a, err := artifact.ParseAny(arg)
		if err != nil {
			return nil, err
		}
		coords[i] = a
	}
	return coords, nil
}
