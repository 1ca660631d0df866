package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/OCAP2/panorama/internal/annotation"
	"github.com/OCAP2/panorama/internal/api"
	"github.com/OCAP2/panorama/internal/geo"
	"github.com/OCAP2/panorama/pkg/core"
	"github.com/spf13/cobra"
)

type typeChangeOutput struct {
	OldID string `json:"oldId"`
	NewID string `json:"newId,omitempty"`
	Error string `json:"error,omitempty"`
}

// polygonAnnotation converts a pulled hotspot back into an annotation.
func polygonAnnotation(p core.RemotePolygon) core.Annotation {
	t := p.Type
	if t == "" {
		t = core.HotspotImage
	}
	return core.Annotation{
		Kind:     core.KindPolygon,
		Vertices: slices.Clone(p.Config.Points),
		Label:    p.Title,
		Color:    t.Color(),
		Type:     t,
		RemoteID: p.ID,
	}
}

func newPullCmd(a *app) *cobra.Command {
	var refresh, asAnnotations bool
	cmd := &cobra.Command{
		Use:   "pull SCENE",
		Short: "Fetch the polygon hotspots of a scene",
		Long: `Fetches the polygon hotspots of a scene, given as an id or an editor URL.
Results are served from the scene cache while they are fresh; --refresh
always asks the hotspot service.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sceneID, err := sceneIDFromArg(args[0])
			if err != nil {
				return err
			}
			ctx := a.context(cmd, sceneAttrs(args[0], sceneID)...)

			scenes, err := a.sceneCache(a.client())
			if err != nil {
				return err
			}
			polygons, src, err := scenes.Fetch(ctx, sceneID, refresh)
			if err != nil {
				return err
			}
			a.logger.InfoContext(ctx, "Pulled scene", "source", src, "polygons", len(polygons))

			if !asAnnotations {
				return writeJSON(cmd.OutOrStdout(), polygons)
			}
			set := annotation.New(annotation.WithLogger(a.logger), annotation.WithMetrics(a.metrics))
			items := make([]core.Annotation, 0, len(polygons))
			for _, p := range polygons {
				items = append(items, polygonAnnotation(p))
			}
			if err := set.Load(items); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), set.All())
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "skip the scene cache")
	cmd.Flags().BoolVar(&asAnnotations, "annotations", false, "print annotations suitable for render")
	return cmd
}

func newPushCmd(a *app) *cobra.Command {
	var kind, points, label, color, hotspotType, file string
	cmd := &cobra.Command{
		Use:   "push SCENE",
		Short: "Create polygon hotspots from drawn shapes",
		Long: `Creates polygon hotspots on a scene. Either draw one shape with --kind and
--points through the current view, or push every annotation in --file that
has no remote id yet. The annotations are printed with their remote ids.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sceneID, err := sceneIDFromArg(args[0])
			if err != nil {
				return err
			}
			ctx := a.context(cmd, sceneAttrs(args[0], sceneID)...)

			set := annotation.New(
				annotation.WithLogger(a.logger),
				annotation.WithMetrics(a.metrics),
				annotation.WithShapeOptions(a.shapeOptions()),
			)

			switch {
			case file != "":
				items, err := readAnnotations(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				if err := set.Load(items); err != nil {
					return err
				}
			case kind != "":
				k, err := core.ParseKind(kind)
				if err != nil {
					return err
				}
				input, err := geo.ParseScreenPoints(points)
				if err != nil {
					return err
				}
				created, err := set.Create(k, input, a.currentView(), label, color)
				if err != nil {
					return err
				}
				if hotspotType != "" {
					if err := set.ChangeType(created.ID, core.HotspotType(hotspotType)); err != nil {
						return err
					}
				}
			default:
				return errors.New("either --file or --kind with --points is required")
			}

			client := a.client()
			var pushed int
			var errs []error
			for _, item := range set.All() {
				if item.RemoteID != "" {
					continue
				}
				id, err := client.Create(ctx, item.ToRemote(sceneID))
				if err != nil {
					errs = append(errs, fmt.Errorf("annotation %s: %w", item.ID, err))
					continue
				}
				if err := set.SetRemoteID(item.ID, id); err != nil {
					return err
				}
				pushed++
			}

			if pushed > 0 {
				scenes, err := a.sceneCache(client)
				if err != nil {
					return err
				}
				if err := scenes.Forget(ctx, sceneID); err != nil {
					a.logger.WarnContext(ctx, "Failed to invalidate scene cache", "error", err)
				}
			}
			a.logger.InfoContext(ctx, "Pushed annotations", "created", pushed, "failed", len(errs))

			if err := writeJSON(cmd.OutOrStdout(), set.All()); err != nil {
				return err
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "shape kind: box, circle, polygon or freeDraw")
	cmd.Flags().StringVar(&points, "points", "", "screen points as [[x,y],...]")
	cmd.Flags().StringVar(&label, "label", "", "hotspot title")
	cmd.Flags().StringVar(&color, "color", "", "display colour, defaults to the type colour")
	cmd.Flags().StringVar(&hotspotType, "type", "", "hotspot type: image, video, link, article or point")
	cmd.Flags().StringVar(&file, "file", "", "annotations JSON file to push (- for stdin)")
	return cmd
}

func newTypeCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "type SCENE TYPE [ID...]",
		Short: "Change the hotspot type of polygons on a scene",
		Long: `Re-creates the listed polygons (or every polygon with --all) under a new
hotspot type. The service cannot change a type in place, so each polygon
gets a new id. Failures are reported per polygon and do not stop the rest.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sceneID, err := sceneIDFromArg(args[0])
			if err != nil {
				return err
			}
			newType := core.HotspotType(args[1])
			if !newType.Known() {
				return fmt.Errorf("%q: %w", newType, annotation.ErrUnknownType)
			}
			ids := args[2:]
			if len(ids) == 0 && !all {
				return errors.New("list polygon ids or pass --all")
			}
			ctx := a.context(cmd, sceneAttrs(args[0], sceneID)...)

			client := a.client()
			scenes, err := a.sceneCache(client)
			if err != nil {
				return err
			}
			polygons, _, err := scenes.Fetch(ctx, sceneID, true)
			if err != nil {
				return err
			}

			var changes []api.TypeChange
			for _, p := range polygons {
				if all || slices.Contains(ids, p.ID) {
					changes = append(changes, api.TypeChange{Polygon: p, NewType: newType})
				}
			}
			if len(changes) == 0 {
				return fmt.Errorf("no matching polygons on scene %s: %w", sceneID, annotation.ErrNotFound)
			}

			results := client.BulkChangeType(ctx, changes)
			if err := scenes.Forget(ctx, sceneID); err != nil {
				a.logger.WarnContext(ctx, "Failed to invalidate scene cache", "error", err)
			}

			out := make([]typeChangeOutput, len(results))
			var failed int
			for i, r := range results {
				out[i] = typeChangeOutput{OldID: r.OldID, NewID: r.NewID}
				if r.Err != nil {
					out[i].Error = r.Err.Error()
					failed++
				}
			}
			a.logger.InfoContext(ctx, "Changed polygon types", "type", newType, "changed", len(results)-failed, "failed", failed)

			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d type changes failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "change every polygon on the scene")
	return cmd
}
