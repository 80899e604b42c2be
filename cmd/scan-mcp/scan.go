package main

import (
	"encoding/json"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/ironsheep/scan-overlay-mcp/internal/capture"
	"github.com/ironsheep/scan-overlay-mcp/internal/config"
	"github.com/ironsheep/scan-overlay-mcp/internal/geometry"
	"github.com/ironsheep/scan-overlay-mcp/internal/ocr"
	"github.com/ironsheep/scan-overlay-mcp/internal/overlay"
	"github.com/ironsheep/scan-overlay-mcp/internal/scan"
)

type scanOutput struct {
	Text        string        `json:"text"`
	Regions     []scan.Region `json:"regions"`
	DisplayRect geometry.Rect `json:"display_rect"`
	Container   geometry.Size `json:"container"`
	Letterbox   string        `json:"letterbox"`
	Engine      string        `json:"engine"`
}

func newScanCmd(a *app) *cobra.Command {
	var (
		images    []string
		out       string
		container string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "scan [PAGE...]",
		Short: "Recognize the first page of a document and print its text",
		Long: `Loads the given pages as one captured document, recognizes the first page
and prints one line per recognized line of text. With --out the view (page,
overlay boxes and, if configured, the text panel) is rendered to an image file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			images = append(images, args...)

			cfg := a.cfg
			if container != "" {
				size, err := config.ParseSize(container)
				if err != nil {
					return err
				}
				cfg.Container = size
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			rec, err := ocr.NewRecognizer(cfg.Engine, cfg.EngineOptions())
			if err != nil {
				return err
			}

			view := overlay.NewView(cfg.Container, cfg.Style)
			rc := cfg.Recognition()
			mapper := cfg.Mapper
			orch := scan.New(rec, view, scan.Options{
				Config: &rc,
				Mapper: &mapper,
				Logger: a.logger,
			})
			orch.Start()
			defer orch.Close()

			ctx := cmd.Context()
			results, err := orch.HandleCapture(capture.NewFileSource(nil, images...).Capture(ctx))
			if err != nil {
				return err
			}

			var res scan.Result
			select {
			case res = <-results:
			case <-ctx.Done():
				return ctx.Err()
			}
			if res.Err != nil {
				return res.Err
			}

			if out != "" {
				img, err := view.Render()
				if err != nil {
					return err
				}
				if err := imaging.Save(img, out); err != nil {
					return fmt.Errorf("failed to save rendering: %w", err)
				}
				a.logger.Info("rendering saved", "path", out)
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(scanOutput{
					Text:        res.Text,
					Regions:     res.Regions,
					DisplayRect: res.Display,
					Container:   res.Container,
					Letterbox:   geometry.LetterboxOf(res.Display, res.Container).String(),
					Engine:      res.Engine,
				})
			}
			_, err = fmt.Fprint(w, res.Text)
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&images, "image", "i", nil, "Page image path (repeatable)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Render the view with overlays to this image file")
	cmd.Flags().StringVar(&container, "container", "", "View size as WIDTHxHEIGHT (default from configuration)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print text, regions and layout as JSON")
	return cmd
}
