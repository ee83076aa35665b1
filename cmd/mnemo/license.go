package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/mnemo/internal/license"
)

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Manage the commercial license",
}

var licenseActivateCmd = &cobra.Command{
	Use:   "activate <key>",
	Short: "Activate a license key",
	Args:  cobra.ExactArgs(1),
	RunE:  runLicenseActivate,
}

var licenseStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current license",
	Args:  cobra.NoArgs,
	RunE:  runLicenseStatus,
}

var licenseRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the cached license",
	Args:  cobra.NoArgs,
	RunE:  runLicenseRemove,
}

func init() {
	licenseCmd.AddCommand(licenseActivateCmd)
	licenseCmd.AddCommand(licenseStatusCmd)
	licenseCmd.AddCommand(licenseRemoveCmd)
}

func openLicenseCache() (*license.Cache, error) {
	path, err := license.DefaultCachePath()
	if err != nil {
		return nil, err
	}
	return license.NewCache(path)
}

// checkLicenseForCommand gates graph-touching commands behind a valid
// license. License management itself, init, status, and help remain open,
// and a validation failure that looks like a network problem degrades to a
// warning so cached licenses keep working offline.
func checkLicenseForCommand(cmd *cobra.Command) error {
	switch cmd.Name() {
	case "license", "activate", "remove", "init", "status", "help", "mnemo", "completion":
		return nil
	}
	// license status is nested; its parent chain includes licenseCmd.
	for p := cmd.Parent(); p != nil; p = p.Parent() {
		if p == licenseCmd {
			return nil
		}
	}

	client, err := license.NewClientFromEnv()
	if err != nil {
		return fmt.Errorf("no licensing account configured: %w (activate with 'mnemo license activate <key>')", err)
	}
	cache, err := openLicenseCache()
	if err != nil {
		return err
	}

	v, err := license.Check(cmd.Context(), client, cache, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning: could not validate license (offline mode)")
		return nil
	}
	if !v.Valid {
		return fmt.Errorf("invalid or expired license: activate with 'mnemo license activate <key>'")
	}
	if v.ExpiresAt != nil {
		if until := time.Until(*v.ExpiresAt); until > 0 && until <= license.ExpiryWarningWindow {
			fmt.Fprintf(os.Stderr, "Warning: license expires in %d day(s)\n", int(until.Hours()/24))
		}
	}
	return nil
}

func runLicenseActivate(cmd *cobra.Command, args []string) error {
	key := args[0]
	client, err := license.NewClientFromEnv()
	if err != nil {
		return outputError("license activate", err)
	}
	cache, err := openLicenseCache()
	if err != nil {
		return outputError("license activate", err)
	}

	v, err := client.ValidateKey(cmd.Context(), key)
	if err != nil {
		return outputError("license activate", err)
	}
	if !v.Valid {
		return outputError("license activate", fmt.Errorf("invalid license key"))
	}
	if err := cache.Save(key, v); err != nil {
		return outputError("license activate", err)
	}

	fmt.Fprintln(os.Stderr, "License activated")
	if v.ExpiresAt != nil {
		fmt.Fprintf(os.Stderr, "Expires: %s\n", v.ExpiresAt.Format("2006-01-02 15:04:05 UTC"))
	}
	printUsage(v)
	return nil
}

func runLicenseStatus(cmd *cobra.Command, args []string) error {
	cache, err := openLicenseCache()
	if err != nil {
		return outputError("license status", err)
	}
	cached, err := cache.Load()
	if err != nil {
		return outputError("license status", err)
	}
	if cached == nil {
		fmt.Fprintln(os.Stderr, "No license found (activate with 'mnemo license activate <key>')")
		return nil
	}

	masked := cached.Key
	if len(masked) > 8 {
		masked = masked[:8] + "****"
	}
	fmt.Printf("License key: %s\n", masked)
	if v := cached.Validation; v != nil {
		if v.Valid {
			fmt.Println("Status: active")
		} else {
			fmt.Println("Status: invalid")
		}
		if v.ExpiresAt != nil {
			days := int(time.Until(*v.ExpiresAt).Hours() / 24)
			fmt.Printf("Expires: %s (%d days)\n", v.ExpiresAt.Format("2006-01-02 15:04:05 UTC"), days)
		}
		printUsage(v)
	}
	if cached.LastValidated != nil {
		fmt.Printf("Last validated: %s\n", cached.LastValidated.Format("2006-01-02 15:04:05 UTC"))
	}
	return nil
}

func runLicenseRemove(cmd *cobra.Command, args []string) error {
	cache, err := openLicenseCache()
	if err != nil {
		return outputError("license remove", err)
	}
	if err := cache.Remove(); err != nil {
		return outputError("license remove", err)
	}
	fmt.Fprintln(os.Stderr, "License removed")
	return nil
}

func printUsage(v *license.Validation) {
	if v.UsageCount == nil {
		return
	}
	if v.UsageLimit != nil {
		fmt.Printf("Usage: %d/%d\n", *v.UsageCount, *v.UsageLimit)
	} else {
		fmt.Printf("Usage: %d (unlimited)\n", *v.UsageCount)
	}
}
