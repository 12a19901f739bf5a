package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"geoscraper/pkg/auth"
	"geoscraper/pkg/ui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginUserAgent string
	loginNoGuide   bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored bearer tokens",
	Long: `Manage stored API bearer tokens.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - GEOSCRAPER_BEARER_TOKEN (read-only)

Never share your tokens or config files!`,
}

var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store a bearer token",
	Long: `Store a bearer token in the system keychain or the encrypted file.

The token is read without echo when stdin is a terminal, otherwise the
first line of stdin is used. Without a name the token is stored as "default".`,
	Example: `  # Interactive login
  geoscraper auth login

  # Store a second token under a name
  geoscraper auth login work

  # Non-interactive
  echo "$TOKEN" | geoscraper auth login --no-guide`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove a stored bearer token",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogout,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored bearer tokens",
	Long:  `List stored bearer tokens with the token itself masked.`,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)

	loginCmd.Flags().StringVar(&loginUserAgent, "user-agent", "", "user agent to send with this token")
	loginCmd.Flags().BoolVar(&loginNoGuide, "no-guide", false, "do not print the token guide")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager("")
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := auth.DefaultName
	if len(args) > 0 {
		name = strings.TrimSpace(args[0])
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive && !loginNoGuide && !ui.IsQuietMode() {
		auth.ShowTokenGuide(os.Stdout)
		fmt.Println()
	}

	if existing, _ := manager.Retrieve(name); existing != nil && interactive {
		fmt.Printf("Token '%s' already exists. Replace it? (y/N): ", name)
		input, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	token, err := readToken(os.Stdin, interactive)
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return errors.New("bearer token is required")
	}

	cred := &auth.Credential{
		Name:        name,
		BearerToken: token,
		UserAgent:   loginUserAgent,
	}
	if err := manager.Store(cred); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Token saved: %s (%s)", name, auth.Mask(token)))
	ui.PrintInfo("Next", fmt.Sprintf("geoscraper collect \"<query>\" --account %s", name))
	return nil
}

// readToken reads the token without echo from a terminal, or one line otherwise
func readToken(r io.Reader, interactive bool) (string, error) {
	if interactive {
		fmt.Print("Bearer token: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager("")
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := auth.DefaultName
	if len(args) > 0 {
		name = args[0]
	}
	if err := manager.Delete(name); err != nil {
		return err
	}
	ui.PrintSuccess("Token removed: " + name)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager("")
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	creds, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list tokens: %w", err)
	}
	if len(creds) == 0 {
		ui.PrintInfo("No stored tokens", "Use 'geoscraper auth login' to add one")
		return nil
	}

	ui.PrintHighlight("Stored Tokens")
	for i, cred := range creds {
		s := auth.Sanitize(cred)
		fmt.Printf("%d. %s\n", i+1, s.Name)
		fmt.Printf("   Token: %s\n", s.BearerToken)
		if s.UserAgent != "" {
			fmt.Printf("   User Agent: %s\n", s.UserAgent)
		}
		fmt.Printf("   Last Modified: %s\n", s.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}
