package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"sharectl/internal/app"
	"sharectl/internal/config"
	"sharectl/internal/console"
	"sharectl/internal/encryption"
	"sharectl/internal/share"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var n notified
		if !errors.As(err, &n) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// notified marks an error the user has already been told about.
type notified struct{ err error }

func (n notified) Error() string { return n.err.Error() }
func (n notified) Unwrap() error { return n.err }

// outcome turns the result of a user action into the command's error.
// Declined confirmations are not failures.
func outcome(err error) error {
	switch {
	case err == nil, errors.Is(err, share.ErrDeclined):
		return nil
	default:
		return notified{err}
	}
}

// newApp reads the config and creates a ShareApp. The caller must defer app.Close().
func newApp(con *console.Console) (*app.ShareApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewShareApp(cfg, app.Options{Notifier: con, Confirmer: con})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:           "sharectl",
	Short:         "Share, revoke and delete file versions on a file server",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return app.LoadEnv(".env")
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
		server, _ := cmd.Flags().GetString("server")
		username, _ := cmd.Flags().GetString("username")
		locale, _ := cmd.Flags().GetString("locale")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(server, username, defaults["base_dir"])
		cfg.Locale = locale
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		sealer, err := encryption.NewSealerFromConfig(cfg.Encryption)
		if err != nil {
			return err
		}
		if err := sealer.Setup(); err != nil {
			return fmt.Errorf("generating session key: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Server:   %s\n", cfg.ServerURL)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Server:   %s\n", cfg.ServerURL)
		fmt.Printf("Username: %s\n", cfg.Username)
		fmt.Printf("Locale:   %s\n", cfg.Locale)
		fmt.Printf("Timeout:  %s\n", cfg.RequestTimeout)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:  %s\n", cfg.LogDir)
		return nil
	},
}

// session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the stored login session",
}

var sessionSetCmd = &cobra.Command{
	Use:   "set [VALUE]",
	Short: "Store the session cookie (prompts when VALUE is omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		con := console.Stdio()
		a, err := newApp(con)
		if err != nil {
			return err
		}
		defer a.Close()

		var value string
		if len(args) > 0 {
			value = args[0]
		} else {
			value, err = con.ReadSecret("Session cookie: ")
			if err != nil {
				return fmt.Errorf("reading session cookie: %w", err)
			}
		}

		if err := a.SetSession(strings.TrimSpace(value)); err != nil {
			return err
		}
		fmt.Println("Session stored.")
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the stored session cookie",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(console.Stdio())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ClearSession(); err != nil {
			return err
		}
		fmt.Println("Session cleared.")
		return nil
	},
}

// files command
var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List owned files and their shares",
	RunE: func(cmd *cobra.Command, args []string) error {
		showDelete, _ := cmd.Flags().GetBool("delete-mode")

		con := console.Stdio()
		a, err := newApp(con)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Files(cmd.Context())
		if err != nil {
			return notified{err}
		}

		var mode share.DeleteMode
		if showDelete {
			mode.Toggle()
		}

		if len(p.Cards) == 0 {
			fmt.Println("No files found.")
		}
		for _, c := range p.Cards {
			revoke := "hidden"
			if c.RevokeVisible() {
				revoke = "shown"
			}
			fmt.Printf("%-12s  %-30s  revoke:%s\n", c.FileID, c.Name, revoke)
			if c.Share != nil {
				fmt.Printf("  versions:   %s\n", optionList(c.Share.Version))
			}
			if c.Revoke != nil && c.Revoke.Form != nil {
				fmt.Printf("  shared with: %s\n", optionList(c.Revoke.Form.Recipient))
			}
			if mode.IsActive() && c.Delete != nil {
				fmt.Printf("  deletable:  %s\n", optionList(c.Delete.Version))
			}
		}

		if p.Directories.Visible() {
			fmt.Println("\nShared directories:")
			for _, r := range p.Directories.Rows() {
				fmt.Printf("  %-12s  %s\n", r.DirectoryID, r.Recipient)
			}
		}

		fmt.Printf("\n(%s: --delete-mode)\n", mode.Label(a.Messages()))
		return nil
	},
}

func optionList(s share.Selector) string {
	var values []string
	for _, o := range s.Options {
		values = append(values, o.Value)
	}
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

// shared command
var sharedCmd = &cobra.Command{
	Use:   "shared",
	Short: "List files shared with you",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		file, _ := cmd.Flags().GetString("file")

		a, err := newApp(console.Stdio())
		if err != nil {
			return err
		}
		defer a.Close()

		view, err := a.SharedFiles(cmd.Context(), email, file)
		if err != nil {
			return notified{err}
		}

		if view.NoFilesVisible {
			fmt.Println(a.Messages().NoFilesFound)
			return nil
		}
		for _, g := range view.Groups {
			if !g.Visible {
				continue
			}
			fmt.Println(g.Email)
			for _, d := range g.Directories {
				if !d.Visible {
					continue
				}
				fmt.Printf("  %s/\n", d.Title)
				for _, f := range d.Files {
					if f.Visible {
						fmt.Printf("    %s\n", f.Name)
					}
				}
			}
		}
		return nil
	},
}

// share command
var shareCmd = &cobra.Command{
	Use:   "share FILE_ID RECIPIENT",
	Short: "Share a file version with a recipient",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetString("version")

		a, err := newApp(console.Stdio())
		if err != nil {
			return err
		}
		defer a.Close()

		_, err = a.Share(cmd.Context(), args[0], args[1], version)
		return outcome(err)
	},
}

// revoke command
var revokeCmd = &cobra.Command{
	Use:   "revoke FILE_ID RECIPIENT",
	Short: "Revoke a recipient's access to a file version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetString("version")

		a, err := newApp(console.Stdio())
		if err != nil {
			return err
		}
		defer a.Close()

		_, err = a.RevokeFile(cmd.Context(), args[0], args[1], version)
		return outcome(err)
	},
}

var revokeDirCmd = &cobra.Command{
	Use:   "revoke-dir DIRECTORY_ID RECIPIENT",
	Short: "Revoke a recipient's access to a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(console.Stdio())
		if err != nil {
			return err
		}
		defer a.Close()

		_, err = a.RevokeDirectory(cmd.Context(), args[0], args[1])
		return outcome(err)
	},
}

// delete-version command
var deleteVersionCmd = &cobra.Command{
	Use:   "delete-version FILE_ID",
	Short: "Delete one version of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetString("version")
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp(console.Stdio().AssumeYes(yes))
		if err != nil {
			return err
		}
		defer a.Close()

		_, err = a.DeleteVersion(cmd.Context(), args[0], version)
		return outcome(err)
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View share operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(console.Stdio())
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				duration = op.FinishedAt.Sub(op.StartedAt).Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-14s  %-10s  %-4s  %-24s  %s  %-8s  %s  %s\n",
				op.ID,
				op.Kind,
				op.Target,
				op.Version,
				op.Recipient,
				op.StartedAt.Local().Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Message,
			)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("server", "", "Base URL of the file server")
	configInitCmd.Flags().String("username", "", "Account name on the file server")
	configInitCmd.Flags().String("locale", "en", "Language of messages (en, tr)")
	configInitCmd.MarkFlagRequired("server")

	// session subcommands
	sessionCmd.AddCommand(sessionSetCmd)
	sessionCmd.AddCommand(sessionClearCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(filesCmd)
	filesCmd.Flags().Bool("delete-mode", false, "Show the versions that can be deleted")
	rootCmd.AddCommand(sharedCmd)
	sharedCmd.Flags().String("email", "", "Filter by sender email")
	sharedCmd.Flags().String("file", "", "Filter by file name")
	rootCmd.AddCommand(shareCmd)
	shareCmd.Flags().StringP("version", "v", "", "Version to share")
	rootCmd.AddCommand(revokeCmd)
	revokeCmd.Flags().StringP("version", "v", "", "Version to revoke")
	rootCmd.AddCommand(revokeDirCmd)
	rootCmd.AddCommand(deleteVersionCmd)
	deleteVersionCmd.Flags().StringP("version", "v", "", "Version to delete")
	deleteVersionCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
}
