package cli

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the super-admin key",
		Long:  "Generate a super-admin key or store its hash so the server can verify callers.",
	}

	cmd.AddCommand(newKeyGenerateCmd())
	cmd.AddCommand(newKeySetCmd())

	return cmd
}

// ---------- key generate ----------

func newKeyGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random super-admin key",
		Long:  "Print a freshly generated key. Pair with 'admind key set' to activate it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyGenerate(cmd)
		},
	}

	return cmd
}

func runKeyGenerate(cmd *cobra.Command) error {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate random key: %w", err)
	}
	key := "kub_" + hex.EncodeToString(raw)

	fmt.Fprintln(cmd.OutOrStdout(), key)
	fmt.Fprintln(cmd.ErrOrStderr())
	fmt.Fprintln(cmd.ErrOrStderr(), "Save this key now - it cannot be retrieved again.")
	fmt.Fprintln(cmd.ErrOrStderr(), "Activate it with: admind key set")
	return nil
}

// ---------- key set ----------

func newKeySetCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the super-admin key hash",
		Long:  "Hash the given key and persist it so the server accepts it on X-SUPER-ADMIN-KEY. The raw key is never stored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeySet(key)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Key to set (prompted when omitted)")

	return cmd
}

func runKeySet(key string) error {
	if key == "" {
		fmt.Print("Super-admin key: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		fmt.Println()
		key = string(raw)
	}
	if key == "" {
		return fmt.Errorf("key must not be empty")
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	sum := sha256.Sum256([]byte(key))
	if err := st.SetSetting(context.Background(), "super_admin_key_hash", hex.EncodeToString(sum[:])); err != nil {
		return fmt.Errorf("store key hash: %w", err)
	}

	fmt.Println("Super-admin key hash stored. The server will accept the key on its next start.")
	return nil
}
