package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli carries state shared by the commands of one invocation.
type cli struct {
	v          *viper.Viper
	cfgFile    string
	cpuprofile string
	memprofile string
	cpuFile    *os.File
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "img2pdf",
		Short: "Turn a folder of page images into a PDF",
		Long: `img2pdf converts a folder of sequential page images into one PDF. The pages
are wrapped by a cover (first.jpg) and a back cover (last.jpg), scaled to the
narrowest image and compressed. It can also build a cropped thumbnail of the
folder and serve both jobs over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("could not load .env: %w", err)
			}
			if err := readConfigFile(c.v, c.cfgFile); err != nil {
				return err
			}
			if err := setupLogger(cmd.ErrOrStderr(), c.v.GetString("log.level"), c.v.GetString("log.format")); err != nil {
				return err
			}
			return c.startProfiling()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.stopProfiling()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default: ./img2pdf.yaml or ~/.config/img2pdf/img2pdf.yaml)")
	flags.StringVar(&c.cpuprofile, "cpuprofile", "", "Write cpu profile to `file`")
	flags.StringVar(&c.memprofile, "memprofile", "", "Write memory profile to `file`")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("sentinels-dir", ".", "directory holding the cover and back-cover images")
	flags.Bool("loose-extensions", false, "accept names that merely contain an image extension")
	bindFlag(c.v, "log.level", flags.Lookup("log-level"))
	bindFlag(c.v, "sentinels.dir", flags.Lookup("sentinels-dir"))
	bindFlag(c.v, "extensions.loose", flags.Lookup("loose-extensions"))

	setDefaults(c.v)

	rootCmd.AddCommand(c.newPDFCmd(), c.newThumbCmd(), c.newServeCmd())
	return rootCmd
}

func (c *cli) startProfiling() error {
	if c.cpuprofile == "" {
		return nil
	}
	f, err := os.Create(c.cpuprofile)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("could not start CPU profile: %w", err)
	}
	c.cpuFile = f
	slog.Info("CPU profiling enabled", "output", c.cpuprofile)
	return nil
}

func (c *cli) stopProfiling() error {
	if c.cpuFile != nil {
		pprof.StopCPUProfile()
		if err := c.cpuFile.Close(); err != nil {
			slog.Warn("Failed to close CPU profile", "error", err)
		}
		c.cpuFile = nil
	}

	if c.memprofile == "" {
		return nil
	}
	f, err := os.Create(c.memprofile)
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer f.Close()
	runtime.GC() // Get up-to-date statistics
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	slog.Info("Memory profile written", "output", c.memprofile)
	return nil
}
