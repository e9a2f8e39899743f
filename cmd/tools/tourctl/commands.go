package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yengalvez/tour360/internal/editor"
	"github.com/yengalvez/tour360/pkg/client"
)

const defaultServer = "http://localhost:8000"

type app struct {
	out    io.Writer
	server string
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "tourctl",
		Short:         "Create and edit 360° tours",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	server := os.Getenv("TOURCTL_SERVER")
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&a.server, "server", server, "tour server base URL (env TOURCTL_SERVER)")

	root.AddCommand(
		a.createCmd(),
		a.showCmd(),
		a.uploadCmd(),
		a.linkCmd(),
		a.unlinkCmd(),
		a.startCmd(),
	)
	return root
}

// session returns an editor session and the text panorama driving it.
func (a *app) session() (*editor.Session, *textPanorama) {
	pano := newTextPanorama(a.out)
	return editor.NewSession(client.New(a.server), pano), pano
}

func (a *app) createCmd() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty tour",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _ := a.session()
			if err := s.Create(cmd.Context(), args[0], title); err != nil {
				return err
			}
			printView(a.out, s.View())
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "display title (defaults to NAME)")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show SLUG",
		Short: "Print a tour and its initial scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _ := a.session()
			if err := s.Open(cmd.Context(), args[0]); err != nil {
				return err
			}
			printView(a.out, s.View())
			return nil
		},
	}
}

func (a *app) uploadCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "upload SLUG FILE",
		Short: "Upload an equirectangular image as a new scene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			s, _ := a.session()
			if err := s.Open(cmd.Context(), args[0]); err != nil {
				return err
			}
			sc, err := s.Upload(cmd.Context(), filepath.Base(args[1]), f, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "uploaded %s (%s)\n", sc.ID, sc.Name)
			printView(a.out, s.View())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "scene name (defaults to the file name)")
	return cmd
}

func (a *app) linkCmd() *cobra.Command {
	var (
		from, to, label string
		yaw, pitch      float64
	)
	cmd := &cobra.Command{
		Use:   "link SLUG",
		Short: "Add a hotspot from one scene to another and save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, pano := a.session()
			if err := s.Open(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := s.ActivateScene(from); err != nil {
				return fmt.Errorf("scene %q: %w", from, err)
			}
			if err := s.StartPlacement(); err != nil {
				return err
			}
			pano.Click(yaw, pitch)
			hs, err := s.AddHotspot(label, to)
			if err != nil {
				return err
			}
			if err := s.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "added %s\n", hs.ID)
			printView(a.out, s.View())
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "scene holding the hotspot")
	cmd.Flags().StringVar(&to, "to", "", "target scene")
	cmd.Flags().StringVar(&label, "label", "", "hotspot label")
	cmd.Flags().Float64Var(&yaw, "yaw", 0, "longitude in radians")
	cmd.Flags().Float64Var(&pitch, "pitch", 0, "latitude in radians")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("label")
	return cmd
}

func (a *app) unlinkCmd() *cobra.Command {
	var scene string
	cmd := &cobra.Command{
		Use:   "unlink SLUG HOTSPOT_ID",
		Short: "Remove a hotspot and save",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _ := a.session()
			if err := s.Open(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := s.ActivateScene(scene); err != nil {
				return fmt.Errorf("scene %q: %w", scene, err)
			}
			if err := s.RemoveHotspot(args[1]); err != nil {
				return err
			}
			if err := s.Save(cmd.Context()); err != nil {
				return err
			}
			printView(a.out, s.View())
			return nil
		},
	}
	cmd.Flags().StringVar(&scene, "scene", "", "scene holding the hotspot")
	_ = cmd.MarkFlagRequired("scene")
	return cmd
}

func (a *app) startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start SLUG SCENE_ID",
		Short: "Make a scene the tour's starting scene and save",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _ := a.session()
			if err := s.Open(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := s.SetInitialScene(args[1]); err != nil {
				return fmt.Errorf("scene %q: %w", args[1], err)
			}
			if err := s.Save(cmd.Context()); err != nil {
				return err
			}
			printView(a.out, s.View())
			return nil
		},
	}
}

func printView(w io.Writer, v editor.View) {
	fmt.Fprintf(w, "%s (%s)\n", v.Title, v.PublicPath)
	for _, sc := range v.Scenes {
		mark := " "
		if sc.Initial {
			mark = "*"
		}
		fmt.Fprintf(w, " %s %s  %s\n", mark, sc.ID, sc.Name)
	}
	if len(v.Scenes) == 0 {
		fmt.Fprintln(w, "  "+v.Hint)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", v.SceneTitle, v.HotspotCount)
	for _, h := range v.Hotspots {
		target := h.TargetName
		if target == "" {
			target = "-"
		}
		fmt.Fprintf(w, "  %s  %s -> %s\n", h.ID, h.Label, target)
	}
}
