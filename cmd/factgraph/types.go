package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ersonp/factgraph/internal/domain/entities"
)

func newTypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "Manage object and fact types",
		Long:  "List, add, or remove object and fact type definitions.",
	}

	cmd.AddCommand(
		newTypesListCmd(),
		newTypesAddCmd(),
		newTypesRemoveCmd(),
		newTypesDescribeCmd(),
	)

	return cmd
}

func addKindFlag(cmd *cobra.Command, kind *string) {
	cmd.Flags().StringVarP(kind, "kind", "k", string(entities.TypeKindObject), "Type kind (object, fact)")
}

func parseTypeKind(s string) (entities.TypeKind, error) {
	switch entities.TypeKind(s) {
	case entities.TypeKindObject, entities.TypeKindFact:
		return entities.TypeKind(s), nil
	}
	return "", fmt.Errorf("invalid kind %q (valid: object, fact)", s)
}

func newTypesListCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List type definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypesList(cmd, kind)
		},
	}

	addKindFlag(cmd, &kind)

	return cmd
}

func runTypesList(cmd *cobra.Command, kindName string) error {
	ctx := cmd.Context()

	kind, err := parseTypeKind(kindName)
	if err != nil {
		return err
	}

	return withDeps(func(d *Deps) error {
		types, err := d.SchemaHandler.HandleList(ctx, kind)
		if err != nil {
			return fmt.Errorf("listing types: %w", err)
		}

		if len(types) == 0 {
			fmt.Printf("No %s types found.\n", kind)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDESCRIPTION\tDEFAULT")
		for i := range types {
			isDefault := ""
			if entities.IsDefaultType(kind, types[i].Name) {
				isDefault = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", types[i].Name, truncate(types[i].Description, 50), isDefault)
		}
		w.Flush()

		return nil
	})
}

func newTypesAddCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "add <name> <description>",
		Short: "Add a custom type",
		Long:  "Add a new custom type definition. Name must be lowercase with underscores.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypesAdd(cmd, kind, args[0], args[1])
		},
	}

	addKindFlag(cmd, &kind)

	return cmd
}

func runTypesAdd(cmd *cobra.Command, kindName, name, description string) error {
	ctx := cmd.Context()

	kind, err := parseTypeKind(kindName)
	if err != nil {
		return err
	}

	return withDeps(func(d *Deps) error {
		if err := d.SchemaHandler.HandleAdd(ctx, kind, name, description); err != nil {
			return fmt.Errorf("adding type: %w", err)
		}

		fmt.Printf("Added %s type: %s\n", kind, name)
		return nil
	})
}

func newTypesRemoveCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a custom type",
		Long:  "Remove a custom type definition. Default types cannot be removed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypesRemove(cmd, kind, args[0])
		},
	}

	addKindFlag(cmd, &kind)

	return cmd
}

func runTypesRemove(cmd *cobra.Command, kindName, name string) error {
	ctx := cmd.Context()

	kind, err := parseTypeKind(kindName)
	if err != nil {
		return err
	}

	return withDeps(func(d *Deps) error {
		if err := d.SchemaHandler.HandleRemove(ctx, kind, name); err != nil {
			return fmt.Errorf("removing type: %w", err)
		}

		fmt.Printf("Removed %s type: %s\n", kind, name)
		return nil
	})
}

func newTypesDescribeCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "describe <name>",
		Short: "Show details about a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypesDescribe(cmd, kind, args[0])
		},
	}

	addKindFlag(cmd, &kind)

	return cmd
}

func runTypesDescribe(cmd *cobra.Command, kindName, name string) error {
	ctx := cmd.Context()

	kind, err := parseTypeKind(kindName)
	if err != nil {
		return err
	}

	return withDeps(func(d *Deps) error {
		def, err := d.SchemaHandler.HandleDescribe(ctx, kind, name)
		if err != nil {
			return fmt.Errorf("describing type: %w", err)
		}
		if def == nil {
			return fmt.Errorf("%s type %q not found", kind, name)
		}

		fmt.Printf("Kind:        %s\n", def.Kind)
		fmt.Printf("Name:        %s\n", def.Name)
		fmt.Printf("Description: %s\n", def.Description)
		fmt.Printf("Default:     %v\n", entities.IsDefaultType(def.Kind, def.Name))
		if !def.CreatedAt.IsZero() {
			fmt.Printf("Created:     %s\n", def.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		return nil
	})
}

// truncate shortens a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
