package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ersonp/factgraph/internal/domain/entities"
)

func newObjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "objects",
		Short: "Inspect objects",
		Long:  "List objects and show the facts bound to them.",
	}

	cmd.AddCommand(
		newObjectsAddCmd(),
		newObjectsListCmd(),
		newObjectsGetCmd(),
		newObjectsFactsCmd(),
	)

	return cmd
}

func newObjectsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <type> <value>",
		Short: "Add an object",
		Long:  "Registers an object ahead of any fact binding it. Adding an existing object is a no-op.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runObjectsAdd(cmd, args[0], args[1])
		},
	}
}

func runObjectsAdd(cmd *cobra.Command, objectType, value string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		object, err := d.ObjectHandler.HandleAdd(ctx, entities.ObjectType(objectType), value)
		if err != nil {
			return fmt.Errorf("adding object: %w", err)
		}

		fmt.Printf("Added object %s (%s:%s)\n", object.ID, object.Type, object.Value)
		return nil
	})
}

func newObjectsListCmd() *cobra.Command {
	var (
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runObjectsList(cmd, limit, offset)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of objects to display")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of objects to skip")

	return cmd
}

func runObjectsList(cmd *cobra.Command, limit, offset int) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		result, err := d.ObjectHandler.HandleList(ctx, limit, offset)
		if err != nil {
			return fmt.Errorf("listing objects: %w", err)
		}

		if len(result.Objects) == 0 {
			fmt.Println("No objects found.")
			return nil
		}

		fmt.Printf("Showing %d of %d objects:\n\n", len(result.Objects), result.Total)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tVALUE\tID")
		for _, object := range result.Objects {
			fmt.Fprintf(w, "%s\t%s\t%s\n", object.Type, object.Value, object.ID)
		}
		w.Flush()

		return nil
	})
}

func newObjectsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <type> <value>",
		Short: "Show an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runObjectsGet(cmd, args[0], args[1])
		},
	}
}

func runObjectsGet(cmd *cobra.Command, objectType, value string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		object, err := d.ObjectHandler.HandleGet(ctx, entities.ObjectType(objectType), value)
		if err != nil {
			return err
		}

		fmt.Printf("ID:      %s\n", object.ID)
		fmt.Printf("Type:    %s\n", object.Type)
		fmt.Printf("Value:   %s\n", object.Value)
		if !object.CreatedAt.IsZero() {
			fmt.Printf("Created: %s\n", object.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		return nil
	})
}

func newObjectsFactsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facts <type> <value>",
		Short: "List the facts bound to an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runObjectsFacts(cmd, args[0], args[1])
		},
	}
}

func runObjectsFacts(cmd *cobra.Command, objectType, value string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		facts, err := d.ObjectHandler.HandleFacts(ctx, entities.ObjectType(objectType), value)
		if err != nil {
			return err
		}

		if len(facts) == 0 {
			fmt.Println("No facts found.")
			return nil
		}

		fmt.Printf("Found %d facts:\n\n", len(facts))
		for _, fact := range facts {
			displayFact(fact)
		}
		return nil
	})
}
