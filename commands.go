package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"img2pdf/api"
	"img2pdf/internal/converter"
)

func (c *cli) newPDFCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf <folder>",
		Short: "Convert a folder of page images into <folder>/<out>.pdf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			res, err := converter.New(converterConfig(c.v)).FolderToPDF(cmd.Context(), args[0], out)
			if err != nil {
				return fmt.Errorf("failed to convert images to PDF: %w", err)
			}

			w := cmd.OutOrStdout()
			for _, f := range res.Report.Failures {
				fmt.Fprintf(w, "⚠️ %s (%s): %v\n", f.Path, f.Stage, f.Err)
			}
			fmt.Fprintf(w, "✅ Successfully created '%s' with %d pages from images in '%s'\n", res.PDF, res.Pages, args[0])
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "", "output PDF name without extension (default: folder name)")
	cmd.Flags().IntP("quality", "q", converter.NewDefaultConfig().JPEGQuality, "JPEG quality of compressed pages (1-100)")
	cmd.Flags().Bool("keep-compressed", true, "keep the compressed_* copies next to the originals")
	bindFlag(c.v, "quality", cmd.Flags().Lookup("quality"))
	bindFlag(c.v, "keep_compressed", cmd.Flags().Lookup("keep-compressed"))
	return cmd
}

func (c *cli) newThumbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thumb <folder>",
		Short: "Write <folder>/thumbnail/thumbnail.jpg from the first page images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := converter.New(converterConfig(c.v)).FolderToThumbnail(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to build thumbnail: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Thumbnail written to '%s'\n", path)
			return nil
		},
	}

	cmd.Flags().Int("size", converter.NewDefaultConfig().ThumbSize, "maximum thumbnail width and height")
	bindFlag(c.v, "thumbnail.size", cmd.Flags().Lookup("size"))
	return cmd
}

func (c *cli) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion jobs over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              c.v.GetString("server.addr"),
				Handler:           api.NewHandler(converterConfig(c.v), c.v.GetString("server.root")).Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("Listening", "addr", srv.Addr, "root", c.v.GetString("server.root"))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			slog.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("root", ".", "only folders below this directory may be converted")
	bindFlag(c.v, "server.addr", cmd.Flags().Lookup("addr"))
	bindFlag(c.v, "server.root", cmd.Flags().Lookup("root"))
	return cmd
}
