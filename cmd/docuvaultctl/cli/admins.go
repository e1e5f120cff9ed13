package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/docuvault/docuvault/internal/provisioning"
	"github.com/docuvault/docuvault/internal/tenants"
	"github.com/docuvault/docuvault/jobs"
)

var adminsCmd = &cobra.Command{
	Use:   "admins",
	Short: "Manage tenant admin accounts",
}

var (
	createTenantFlag string
	createListFlag   bool
	assignListFlag   bool
)

var adminsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create admin accounts for tenants that lack one",
	Long: `Create an admin account for every active tenant that does not have
one yet. Each account is named {subdomain}-admin, placed in the tenant's
"Tenant Admin" group and granted the full admin permission catalog.

Generated passwords are printed exactly once. Save them securely.`,
	RunE: runAdminsCreate,
}

var adminsAssignCmd = &cobra.Command{
	Use:   "assign-permissions",
	Short: "Reset every tenant admin's permissions to the full catalog",
	RunE:  runAdminsAssign,
}

func init() {
	adminsCreateCmd.Flags().StringVar(&createTenantFlag, "tenant", "", "only provision the tenant with this subdomain")
	adminsCreateCmd.Flags().BoolVar(&createListFlag, "list", false, "show admin account status without creating anything")
	adminsAssignCmd.Flags().BoolVar(&assignListFlag, "list", false, "show permission counts without changing anything")

	adminsCmd.AddCommand(adminsCreateCmd)
	adminsCmd.AddCommand(adminsAssignCmd)
}

func runAdminsCreate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := connect(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if createListFlag {
		return printTenantStatus(cmd, e)
	}

	var targets []tenants.Tenant
	if createTenantFlag != "" {
		tenant, err := e.tenants.GetBySubdomain(ctx, createTenantFlag)
		if err != nil {
			return fmt.Errorf("tenant %q: %w", createTenantFlag, err)
		}
		targets = []tenants.Tenant{tenant}
	} else {
		targets, err = e.tenants.List(ctx)
		if err != nil {
			return err
		}
	}

	var created, skipped, failed int
	for _, result := range e.provisioning.ProvisionAll(ctx, targets) {
		switch result.Outcome {
		case provisioning.OutcomeCreated:
			created++
			cmd.Println(jobs.CredentialBanner(result))
			cmd.Println()
		case provisioning.OutcomeSkipped:
			skipped++
			cmd.Printf("Admin user %s already exists for tenant %s, skipping\n",
				result.Username, result.Tenant.Subdomain)
		default:
			failed++
			cmd.Printf("Failed to create admin for tenant %s: %v\n",
				result.Tenant.Subdomain, result.Err)
		}
	}

	cmd.Printf("\nDone. Created: %d, skipped: %d, failed: %d\n", created, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("%d tenant(s) failed", failed)
	}
	return nil
}

func printTenantStatus(cmd *cobra.Command, e *env) error {
	ctx := cmd.Context()
	all, err := e.tenants.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SUBDOMAIN\tNAME\tADMIN USER\tSTATUS")
	for _, tenant := range all {
		username := provisioning.AdminUsername(tenant.Subdomain)
		status := "missing"
		exists, err := e.provisioning.AdminExists(ctx, tenant.Subdomain)
		if err != nil {
			return err
		}
		if exists {
			status = "exists"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tenant.Subdomain, tenant.Name, username, status)
	}
	return w.Flush()
}

func runAdminsAssign(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := connect(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if assignListFlag {
		accounts, catalogSize, err := e.provisioning.AdminStatus(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tPERMISSIONS")
		for _, account := range accounts {
			fmt.Fprintf(w, "%s\t%d/%d\n", account.Username, account.Permissions, catalogSize)
		}
		return w.Flush()
	}

	reports, err := e.provisioning.RepairAll(ctx)
	if err != nil {
		return err
	}
	for _, report := range reports {
		cmd.Printf("Assigned %d permissions to %s (was %d)\n",
			report.After, report.Username, report.Before)
	}
	cmd.Printf("\nDone. Updated %d admin account(s)\n", len(reports))
	return nil
}
