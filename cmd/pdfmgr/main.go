package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pdfmgr/internal/app"
	"pdfmgr/internal/config"
	"pdfmgr/internal/volume"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults when none
// exists yet.
func loadConfig() (*config.Config, map[string]string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.Load(defaults["config_path"], defaults["base_dir"])
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults, nil
}

// newApp reads the config and creates a PMApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Walk", "Merge").
func newApp(cmd *cobra.Command, operation string) (*app.PMApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := app.NewPMApp(cmd.Context(), cfg, operation, verbose)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func parseLevelFlag(cmd *cobra.Command) (*volume.Level, error) {
	name, _ := cmd.Flags().GetString("compress")
	if name == "" {
		return nil, nil
	}
	level, err := volume.ParseLevel(name)
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pw), nil
}

var rootCmd = &cobra.Command{
	Use:          "pdfmgr",
	Short:        "Batch, merge and compress PDF files",
	Version:      version,
	SilenceUsage: true,
}

// walk command
var walkCmd = &cobra.Command{
	Use:   "walk [INPUT_DIR] [OUTPUT_DIR]",
	Short: "Merge the PDFs of a directory into numbered volumes",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		interactive, _ := cmd.Flags().GetBool("interactive")
		if !interactive && len(args) != 2 {
			return fmt.Errorf("%w: INPUT_DIR and OUTPUT_DIR are required unless --interactive is set", volume.ErrConfig)
		}

		a, err := newApp(cmd, "Walk")
		if err != nil {
			return err
		}
		defer a.Close()

		flags := cmd.Flags()
		var o app.WalkOverrides
		if flags.Changed("order") {
			v, _ := flags.GetString("order")
			o.Order = &v
		}
		if flags.Changed("batch-size") {
			v, _ := flags.GetInt("batch-size")
			o.BatchSize = &v
		}
		if flags.Changed("prefix") {
			v, _ := flags.GetString("prefix")
			o.Prefix = &v
		}
		if flags.Changed("suffix") {
			v, _ := flags.GetString("suffix")
			o.Suffix = &v
		}
		if flags.Changed("compress") {
			v, _ := flags.GetString("compress")
			o.Compression = &v
		}

		req, err := a.WalkRequest(o)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			req.InputDir = args[0]
		}
		if len(args) > 1 {
			req.OutputDir = args[1]
		}
		req.Archive, _ = flags.GetBool("archive")
		req.Interactive = interactive

		p := app.NewStdioPrompter(os.Stdin, os.Stdout)
		if interactive {
			if req, err = app.PromptWalkRequest(p, req); err != nil {
				return err
			}
		}

		_, err = a.Walk(cmd.Context(), req, p)
		return err
	},
}

// merge command
var mergeCmd = &cobra.Command{
	Use:   "merge FILE FILE... -o OUTPUT",
	Short: "Merge PDF files in the given order",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		level, err := parseLevelFlag(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "Merge")
		if err != nil {
			return err
		}
		defer a.Close()

		pages, err := a.Merge(cmd.Context(), args, out, level)
		if err != nil {
			return fmt.Errorf("merge failed: %w", err)
		}
		fmt.Printf("Merged %d file(s), %d pages into %s\n", len(args), pages, out)
		return nil
	},
}

// compress command
var compressCmd = &cobra.Command{
	Use:   "compress INPUT OUTPUT",
	Short: "Compress a PDF file",
	Args: func(cmd *cobra.Command, args []string) error {
		if info, _ := cmd.Flags().GetBool("info"); info {
			return nil
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if info, _ := cmd.Flags().GetBool("info"); info {
			fmt.Println(volume.LevelInfo())
			return nil
		}

		name, _ := cmd.Flags().GetString("compress")
		level, err := volume.ParseLevel(name)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "Compress")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Compress(cmd.Context(), args[0], args[1], level)
		if err != nil {
			return fmt.Errorf("compression failed: %w", err)
		}
		fmt.Printf("Compression level: %s\n", res.Level)
		fmt.Printf("Original size:   %s\n", volume.FormatBytes(res.OriginalSize))
		fmt.Printf("Compressed size: %s\n", volume.FormatBytes(res.CompressedSize))
		fmt.Printf("Reduction:       %.1f%%\n", res.Ratio())
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent walk runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "History")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No walk runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if r.FinishedAt.Valid {
				duration = r.FinishedAt.Time.Sub(r.StartedAt).Truncate(time.Millisecond).String()
			}
			compression := r.Compression
			if compression == "" {
				compression = "none"
			}
			fmt.Printf("%s  %s  %-8s  %3d files  %3d volumes  %-10s  %s  %s -> %s\n",
				r.ID,
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Status,
				r.TotalFiles,
				r.PlannedVolumes,
				compression,
				duration,
				r.InputDir,
				r.OutputDir,
			)
		}
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}

		source := defaults["config_path"]
		if _, err := os.Stat(source); errors.Is(err, os.ErrNotExist) {
			source = "built-in defaults"
		}

		compression := cfg.Walk.Compression
		if compression == "" {
			compression = "none"
		}
		fmt.Printf("Configuration from %s:\n\n", source)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Order:       %s\n", cfg.Walk.Order)
		fmt.Printf("Batch Size:  %d\n", cfg.Walk.BatchSize)
		fmt.Printf("Prefix:      %q\n", cfg.Walk.Prefix)
		fmt.Printf("Suffix:      %q\n", cfg.Walk.Suffix)
		fmt.Printf("Compression: %s\n", compression)
		fmt.Printf("Database:    %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Archive:     %s (encrypt: %t)\n", cfg.Archive.Type, cfg.Archive.Encrypt)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage archive encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the archive encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "SetupKeys")
		if err != nil {
			return err
		}
		defer a.Close()

		pw, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pw != confirm {
			return fmt.Errorf("%w: passphrases do not match", volume.ErrInvalidInput)
		}

		if err := a.SetupKeys(pw); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}
		fmt.Println("Archive encryption keys created.")
		return nil
	},
}

// archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Work with archived volumes",
}

var archiveFetchCmd = &cobra.Command{
	Use:   "fetch RUN_ID VOLUME_NAME OUTPUT",
	Short: "Download an archived volume",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "FetchArchived")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase := func() (string, error) { return readPassphrase("Passphrase: ") }
		if err := a.FetchArchived(cmd.Context(), args[0], args[1], args[2], passphrase); err != nil {
			return fmt.Errorf("fetching volume: %w", err)
		}
		fmt.Printf("Fetched %s of run %s to %s\n", args[1], args[0], args[2])
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Mirror the log to stderr")

	walkCmd.Flags().String("order", "asc", "Sort order: asc or desc")
	walkCmd.Flags().Int("batch-size", 10, "Number of files per volume")
	walkCmd.Flags().String("prefix", "", "Prefix for volume file names")
	walkCmd.Flags().String("suffix", "", "Suffix for volume file names")
	walkCmd.Flags().StringP("compress", "c", "", "Compression level: basic, medium or aggressive")
	walkCmd.Flags().BoolP("interactive", "i", false, "Review every volume before it is created")
	walkCmd.Flags().Bool("archive", false, "Copy created volumes to the configured archive")
	rootCmd.AddCommand(walkCmd)

	mergeCmd.Flags().StringP("output", "o", "", "Output PDF file")
	mergeCmd.Flags().StringP("compress", "c", "", "Compression level: basic, medium or aggressive")
	mergeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(mergeCmd)

	compressCmd.Flags().StringP("compress", "c", "medium", "Compression level: basic, medium or aggressive")
	compressCmd.Flags().Bool("info", false, "Show the compression levels")
	rootCmd.AddCommand(compressCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)

	keysCmd.AddCommand(keysInitCmd)
	rootCmd.AddCommand(keysCmd)

	archiveCmd.AddCommand(archiveFetchCmd)
	rootCmd.AddCommand(archiveCmd)
}
