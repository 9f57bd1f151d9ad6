package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/church-admin-api/internal/authz"
	"github.com/noah-isme/church-admin-api/internal/models"
)

func permissionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "permissions [role]",
		Short: "Print the permission grants of every role, or of one role",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roles := models.Roles
			if len(args) == 1 {
				role, ok := authz.ParseRole(args[0])
				if !ok {
					return fmt.Errorf("unknown role %q", args[0])
				}
				roles = []models.UserRole{role}
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ROLE\tPERMISSIONS")
			for _, role := range roles {
				fmt.Fprintf(w, "%s\t%s\n", role, strings.Join(authz.PermissionsFor(role), ", "))
			}
			return w.Flush()
		},
	}
}
