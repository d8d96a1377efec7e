package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

var credentialsPOSID int

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage FBR and capture settings",
	Long: `View and configure the FBR environment, credentials and portal URL.

Settings live in config.toml. The capture selectors live in
capture_config.json next to it and are edited by hand.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long: `Writes the default capture configuration if none exists, then asks for
the FBR environment, credentials and portal URL.`,
	RunE: runConfigInit,
}

var configSetEnvCmd = &cobra.Command{
	Use:   "set-env <sandbox|production>",
	Short: "Switch the FBR environment",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetEnv,
}

var configSetCredentialsCmd = &cobra.Command{
	Use:   "set-credentials",
	Short: "Store the FBR token and POS id",
	Long:  `Prompts for the FBR bearer token without echo and stores it with the POS id.`,
	RunE:  runConfigSetCredentials,
}

var configSetPortalCmd = &cobra.Command{
	Use:   "set-portal <url>",
	Short: "Set the portal URL opened by capture",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetPortal,
}

func init() {
	configSetCredentialsCmd.Flags().IntVar(&credentialsPOSID, "pos-id", 0, "registered POS id")
	_ = configSetCredentialsCmd.MarkFlagRequired("pos-id")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetEnvCmd)
	configCmd.AddCommand(configSetCredentialsCmd)
	configCmd.AddCommand(configSetPortalCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[FBR]")
	cmd.Printf("  Environment: %s\n", settings.FBR.Environment.Description())
	cmd.Printf("  Endpoint: %s\n", settings.FBR.Endpoint)
	cmd.Printf("  POS ID: %d\n", settings.FBR.POSID)
	if settings.FBR.Token != "" {
		cmd.Printf("  Token: %s\n", maskAPIKey(settings.FBR.Token))
	} else {
		cmd.Println("  Token: (not set)")
	}
	cmd.Printf("  Timeout: %s, %d attempts, %.1f req/s\n",
		settings.FBR.Timeout, settings.FBR.MaxAttempts, settings.FBR.RequestsPerSecond)
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Online interval: %s\n", settings.Sync.OnlineInterval)
	cmd.Printf("  Offline backoff: %s x%.1f up to %s\n",
		settings.Sync.InitialBackoff, settings.Sync.BackoffFactor, settings.Sync.MaxBackoff)
	cmd.Printf("  Probe endpoints: %s\n", strings.Join(settings.Sync.ProbeEndpoints, ", "))
	cmd.Println()

	cmd.Println("[Capture]")
	if settings.Capture.PortalURL != "" {
		cmd.Printf("  Portal URL: %s\n", settings.Capture.PortalURL)
	} else {
		cmd.Println("  Portal URL: (not set)")
	}
	cmd.Printf("  Headless: %t\n", settings.Capture.Headless)
	cmd.Printf("  Discard invalid submissions: %t\n", settings.Capture.DiscardInvalidSubmissions)
	if captureConfigStore != nil {
		cmd.Printf("  Selectors: %s\n", captureConfigStore.Path())
	}
	cmd.Println()

	if settings.FBR.Token == "" {
		cmd.Println("Warning: no FBR token; invoices will be rejected.")
		cmd.Println("Run 'dealer-capture config set-credentials' to set one.")
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Dealer Capture Setup")
	cmd.Println("====================")
	cmd.Println()

	if captureConfigStore != nil {
		if _, err := captureConfigStore.Load(); err != nil {
			return fmt.Errorf("failed to load capture config: %w", err)
		}
		cmd.Printf("Capture config: %s\n\n", captureConfigStore.Path())
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: FBR Environment")
	cmd.Println("-----------------------")
	envs := domain.AllEnvironments()
	for i, env := range envs {
		cmd.Printf("  %d. %s\n", i+1, env.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	env := envs[parseChoice(readLine(reader), len(envs), 1)-1]
	if err := settingsService.SetEnvironment(env); err != nil {
		return fmt.Errorf("failed to set environment: %w", err)
	}
	cmd.Printf("Set environment to: %s\n\n", env.Description())

	cmd.Println("Step 2: FBR Credentials")
	cmd.Println("-----------------------")
	cmd.Print("POS ID (blank to skip): ")
	posInput := readLine(reader)
	if posInput != "" {
		posID, err := strconv.Atoi(posInput)
		if err != nil || posID <= 0 {
			return fmt.Errorf("%w: POS id %q", domain.ErrInvalidInput, posInput)
		}
		cmd.Print("Token: ")
		token := readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if err := settingsService.SetCredentials(token, posID); err != nil {
			return fmt.Errorf("failed to set credentials: %w", err)
		}
		cmd.Println("Credentials saved.")
	}
	cmd.Println()

	cmd.Println("Step 3: Portal URL")
	cmd.Println("------------------")
	cmd.Print("URL (blank to skip): ")
	if url := readLine(reader); url != "" {
		if err := settingsService.SetPortalURL(url); err != nil {
			return fmt.Errorf("failed to set portal URL: %w", err)
		}
		cmd.Println("Portal URL saved.")
	}
	cmd.Println()

	cmd.Println("Setup complete. Run 'dealer-capture config show' to review.")
	return nil
}

func runConfigSetEnv(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	env := domain.Environment(strings.ToLower(args[0]))
	if !env.IsValid() {
		return fmt.Errorf("unknown environment %q (use sandbox or production)", args[0])
	}
	if err := settingsService.SetEnvironment(env); err != nil {
		return fmt.Errorf("failed to set environment: %w", err)
	}

	cmd.Printf("Environment set to: %s\n", env.Description())
	return nil
}

func runConfigSetCredentials(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Print("FBR token: ")
	token := readPassword(cmd.InOrStdin(), bufio.NewReader(cmd.InOrStdin()))
	cmd.Println()

	if err := settingsService.SetCredentials(token, credentialsPOSID); err != nil {
		return fmt.Errorf("failed to set credentials: %w", err)
	}

	cmd.Printf("Stored token %s for POS %d\n", maskAPIKey(token), credentialsPOSID)
	return nil
}

func runConfigSetPortal(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetPortalURL(args[0]); err != nil {
		return fmt.Errorf("failed to set portal URL: %w", err)
	}

	cmd.Printf("Portal URL set to: %s\n", args[0])
	return nil
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal, otherwise a line
// from reader.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
