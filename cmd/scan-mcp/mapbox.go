package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/scan-overlay-mcp/internal/config"
	"github.com/ironsheep/scan-overlay-mcp/internal/geometry"
)

func newMapCmd(a *app) *cobra.Command {
	var (
		box, display, container string
		margin                  float64
		correct, asJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Map a normalized box onto the view",
		Example: `  scan-mcp map --box 0.1,0.8,0.2,0.1 --display 0,10,100,80 --container 100x100
  scan-mcp map --box 0,0,1,0.5 --display 0,0,100,100 --container 100x100 --margin 0 --correct-filled-origin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := parseQuad(box)
			if err != nil {
				return fmt.Errorf("invalid --box: %w", err)
			}
			nb := geometry.NormalizedBox{X: b[0], Y: b[1], Width: b[2], Height: b[3]}
			if !nb.Valid() {
				return fmt.Errorf("box %s is not a normalized rectangle", nb)
			}

			d, err := parseQuad(display)
			if err != nil {
				return fmt.Errorf("invalid --display: %w", err)
			}
			dr := geometry.Rect{X: d[0], Y: d[1], Width: d[2], Height: d[3]}

			cs, err := config.ParseSize(container)
			if err != nil {
				return fmt.Errorf("invalid --container: %w", err)
			}

			mapper := a.cfg.Mapper
			if cmd.Flags().Changed("margin") {
				mapper.Margin = margin
			}
			if cmd.Flags().Changed("correct-filled-origin") {
				mapper.CorrectFilledOrigin = correct
			}

			screen := mapper.ToScreen(nb, dr, cs)
			w := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(w).Encode(map[string]interface{}{
					"screen":    screen,
					"letterbox": geometry.LetterboxOf(dr, cs).String(),
				})
			}
			_, err = fmt.Fprintf(w, "%.2f %.2f %.2f %.2f\n", screen.X, screen.Y, screen.Width, screen.Height)
			return err
		},
	}

	cmd.Flags().StringVar(&box, "box", "", "Normalized box x,y,width,height (origin bottom-left)")
	cmd.Flags().StringVar(&display, "display", "", "Display rect x,y,width,height inside the container")
	cmd.Flags().StringVar(&container, "container", "", "Container size WIDTHxHEIGHT")
	cmd.Flags().Float64Var(&margin, "margin", geometry.DefaultMargin, "Inflation on every side")
	cmd.Flags().BoolVar(&correct, "correct-filled-origin", false, "Apply the origin correction when the page fills the container")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	for _, name := range []string{"box", "display", "container"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

// parseQuad parses four comma-separated numbers.
func parseQuad(s string) ([4]float64, error) {
	var q [4]float64
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return q, fmt.Errorf("want 4 comma-separated numbers, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return q, fmt.Errorf("invalid number %q: %w", p, err)
		}
		q[i] = v
	}
	return q, nil
}
