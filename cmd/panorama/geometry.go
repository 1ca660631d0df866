package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/OCAP2/panorama/internal/annotation"
	"github.com/OCAP2/panorama/internal/geo"
	"github.com/OCAP2/panorama/internal/projection"
	"github.com/OCAP2/panorama/internal/simplify"
	"github.com/OCAP2/panorama/pkg/core"
	"github.com/spf13/cobra"
)

// projectedPoint is one unproject result. X and Y are omitted when the
// direction is not visible in the current view.
type projectedPoint struct {
	core.SphericalPoint
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	Visible bool     `json:"visible"`
}

func newProjectCmd(a *app) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "project POINTS",
		Short: "Convert screen points to spherical coordinates",
		Long: `Converts normalized viewport points ([[x,y],...] or a single x,y, in [0,1])
to spherical coordinates through the current view. With --kind the points are first
expanded the way the drawing tool does (box corners, circle sampling,
free-draw simplification).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := geo.ParseScreenPoints(args[0])
			if err != nil {
				return err
			}
			v := a.currentView()

			if kind != "" {
				k, err := core.ParseKind(kind)
				if err != nil {
					return err
				}
				vertices, err := geo.BuildVertices(k, points, v, a.shapeOptions())
				if err != nil {
					return err
				}
				out, err := geo.ToSpherical(k, vertices, v)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			for _, p := range points {
				if !p.Valid() {
					return geo.ErrInvalidCoordinates
				}
			}
			return writeJSON(cmd.OutOrStdout(), projection.ScreenToSphericalAll(points, v))
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "shape kind: box, circle, polygon or freeDraw")
	return cmd
}

func newUnprojectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unproject POINTS",
		Short: "Convert spherical coordinates to screen points",
		Long: `Projects spherical points ([[ath,atv],...], [{"ath":..,"atv":..}] or a
single ath,atv) onto the current viewport. Points behind the camera or outside the viewport are
reported as not visible.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := geo.ParseSphericalPoints(args[0])
			if err != nil {
				return err
			}
			v := a.currentView()

			out := make([]projectedPoint, len(points))
			for i, p := range points {
				out[i] = projectedPoint{SphericalPoint: p}
				if !p.Valid() {
					continue
				}
				if sp, ok := projection.SphericalToScreen(p, v); ok {
					x, y := sp.X, sp.Y
					out[i].X, out[i].Y, out[i].Visible = &x, &y, true
				}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newSimplifyCmd(a *app) *cobra.Command {
	var target int
	cmd := &cobra.Command{
		Use:   "simplify POINTS",
		Short: "Reduce a free-draw stroke to roughly --target points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := geo.ParseScreenPoints(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("target") {
				target = a.shapeOptions().FreeDrawTarget
			}
			if target < 1 {
				return fmt.Errorf("target must be positive, got %d", target)
			}
			return writeJSON(cmd.OutOrStdout(), simplify.Simplify(points, target))
		},
	}
	cmd.Flags().IntVar(&target, "target", simplify.DefaultTarget, "vertex budget; results stay within 1.5x of it")
	return cmd
}

func newRenderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "render FILE",
		Short: "Project stored annotations onto the current view",
		Long: `Reads a JSON array of annotations (use - for stdin) and prints each one
that has enough visible vertices as screen points for the current view.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readAnnotations(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			set := annotation.New(
				annotation.WithLogger(a.logger),
				annotation.WithMetrics(a.metrics),
				annotation.WithShapeOptions(a.shapeOptions()),
			)
			if err := set.Load(items); err != nil {
				return err
			}

			rendered := set.Render(a.currentView())
			a.logger.Debug("Rendered annotations", "total", set.Len(), "visible", len(rendered))
			return writeJSON(cmd.OutOrStdout(), rendered)
		},
	}
}

func readAnnotations(stdin io.Reader, path string) ([]core.Annotation, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open annotations: %w", err)
		}
		defer f.Close()
		r = f
	}
	var items []core.Annotation
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse annotations: %w", err)
	}
	return items, nil
}
