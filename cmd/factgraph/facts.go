package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/domain/services"
)

type createFlags struct {
	factType      string
	value         string
	source        string
	destination   string
	bidirectional bool
	confidence    float64
	trust         float64
	accessMode    string
	origin        string
	organization  string
	addedBy       string
	inReferenceTo string
}

func newFactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Manage facts",
		Long:  "Create, inspect, retract and annotate facts.",
	}

	cmd.AddCommand(
		newFactsCreateCmd(),
		newFactsGetCmd(),
		newFactsListCmd(),
		newFactsRetractCmd(),
		newFactsCommentCmd(),
		newFactsGrantCmd(),
		newFactsHistoryCmd(),
		newFactsAuditCmd(),
	)

	return cmd
}

func newFactsCreateCmd() *cobra.Command {
	var flags createFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a fact",
		Long:  "Creates a fact binding one or two objects. Objects are given as type:value and created on demand.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFactsCreate(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.factType, "type", "t", "", "Fact type (required)")
	cmd.Flags().StringVar(&flags.value, "value", "", "Optional fact value")
	cmd.Flags().StringVarP(&flags.source, "source", "s", "", "Source object as type:value")
	cmd.Flags().StringVarP(&flags.destination, "dest", "d", "", "Destination object as type:value")
	cmd.Flags().BoolVarP(&flags.bidirectional, "bidirectional", "b", false, "Bind the objects bidirectionally")
	cmd.Flags().Float64VarP(&flags.confidence, "confidence", "c", 0.8, "Confidence between 0 and 1")
	cmd.Flags().Float64Var(&flags.trust, "trust", 0.8, "Trust between 0 and 1")
	cmd.Flags().StringVar(&flags.accessMode, "access", string(entities.AccessModePublic), "Access mode (public, role_based, explicit)")
	cmd.Flags().StringVar(&flags.origin, "origin", "", "Origin identifier")
	cmd.Flags().StringVar(&flags.organization, "org", "", "Owning organization identifier")
	cmd.Flags().StringVar(&flags.addedBy, "added-by", "", "Identifier of the adding subject")
	cmd.Flags().StringVar(&flags.inReferenceTo, "ref", "", "ID of the fact this fact refers to")

	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runFactsCreate(cmd *cobra.Command, flags createFlags) error {
	ctx := cmd.Context()

	params := services.CreateFactParams{
		Type:            entities.FactType(flags.factType),
		Value:           flags.value,
		Bidirectional:   flags.bidirectional,
		AccessMode:      entities.AccessMode(flags.accessMode),
		Confidence:      flags.confidence,
		Trust:           flags.trust,
		OrganizationID:  flags.organization,
		OriginID:        flags.origin,
		AddedByID:       flags.addedBy,
		InReferenceToID: flags.inReferenceTo,
	}

	if flags.source != "" {
		objectType, value, err := splitTypedValue(flags.source)
		if err != nil {
			return fmt.Errorf("parsing --source: %w", err)
		}
		params.SourceType = objectType
		params.SourceValue = value
	}

	if flags.destination != "" {
		objectType, value, err := splitTypedValue(flags.destination)
		if err != nil {
			return fmt.Errorf("parsing --dest: %w", err)
		}
		params.DestinationType = objectType
		params.DestinationValue = value
	}

	return withDeps(func(d *Deps) error {
		fact, err := d.FactHandler.HandleCreate(ctx, params)
		if err != nil {
			return fmt.Errorf("creating fact: %w", err)
		}

		fmt.Printf("Created fact %s\n", fact.ID)
		displayFact(fact)
		return nil
	})
}

func newFactsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <fact-id>",
		Short: "Show a fact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFactsGet(cmd, args[0])
		},
	}
}

func runFactsGet(cmd *cobra.Command, factID string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		fact, err := d.FactHandler.HandleGet(ctx, factID)
		if err != nil {
			return fmt.Errorf("getting fact: %w", err)
		}

		displayFact(fact)

		if len(fact.ACL) > 0 {
			fmt.Println("Access granted to:")
			for _, entry := range fact.ACL {
				fmt.Printf("  %s (since %s)\n", entry.SubjectID, entry.CreatedAt.Format("2006-01-02 15:04:05"))
			}
		}
		if len(fact.Comments) > 0 {
			fmt.Println("Comments:")
			for _, comment := range fact.Comments {
				fmt.Printf("  [%s] %s\n", comment.CreatedAt.Format("2006-01-02 15:04:05"), comment.Comment)
			}
		}

		return nil
	})
}

func newFactsListCmd() *cobra.Command {
	var (
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List facts",
		Long:  "Lists stored facts, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFactsList(cmd, limit, offset)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of facts to display")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of facts to skip")

	return cmd
}

func runFactsList(cmd *cobra.Command, limit, offset int) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		result, err := d.FactHandler.HandleList(ctx, limit, offset)
		if err != nil {
			return fmt.Errorf("listing facts: %w", err)
		}

		if len(result.Facts) == 0 {
			fmt.Println("No facts found.")
			return nil
		}

		fmt.Printf("Showing %d of %d facts:\n\n", len(result.Facts), result.Total)
		for _, fact := range result.Facts {
			displayFact(fact)
		}
		return nil
	})
}

func newFactsRetractCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "retract <fact-id>",
		Short: "Retract a fact",
		Long:  "Flags a fact as retracted. The fact stays stored and is hidden from searches by default.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFactsRetract(cmd, args[0], reason)
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Reason for the retraction")

	return cmd
}

func runFactsRetract(cmd *cobra.Command, factID, reason string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if err := d.FactHandler.HandleRetract(ctx, factID, reason); err != nil {
			return fmt.Errorf("retracting fact: %w", err)
		}

		fmt.Printf("Retracted fact %s\n", factID)
		return nil
	})
}

func newFactsCommentCmd() *cobra.Command {
	var (
		replyTo string
		origin  string
	)

	cmd := &cobra.Command{
		Use:   "comment <fact-id> <text>",
		Short: "Comment on a fact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFactsComment(cmd, args[0], args[1], replyTo, origin)
		},
	}

	cmd.Flags().StringVar(&replyTo, "reply-to", "", "ID of the comment this replies to")
	cmd.Flags().StringVar(&origin, "origin", "", "Origin identifier")

	return cmd
}

func runFactsComment(cmd *cobra.Command, factID, text, replyTo, origin string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		comment, err := d.FactHandler.HandleComment(ctx, factID, text, replyTo, origin)
		if err != nil {
			return fmt.Errorf("adding comment: %w", err)
		}

		fmt.Printf("Added comment %s to fact %s\n", comment.ID, factID)
		return nil
	})
}

func newFactsGrantCmd() *cobra.Command {
	var origin string

	cmd := &cobra.Command{
		Use:   "grant <fact-id> <subject-id>",
		Short: "Grant a subject access to a fact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFactsGrant(cmd, args[0], args[1], origin)
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "", "Origin identifier")

	return cmd
}

func runFactsGrant(cmd *cobra.Command, factID, subjectID, origin string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if _, err := d.FactHandler.HandleGrant(ctx, factID, subjectID, origin); err != nil {
			return fmt.Errorf("granting access: %w", err)
		}

		fmt.Printf("Granted %s access to fact %s\n", subjectID, factID)
		return nil
	})
}

func newFactsHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <fact-id>",
		Short: "Show the recorded versions of a fact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFactsHistory(cmd, args[0])
		},
	}
}

func runFactsHistory(cmd *cobra.Command, factID string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		versions, err := d.FactHandler.HandleHistory(ctx, factID)
		if err != nil {
			return fmt.Errorf("loading history: %w", err)
		}

		if len(versions) == 0 {
			fmt.Println("No versions recorded.")
			return nil
		}

		for _, v := range versions {
			fmt.Printf("v%d [%s] %s", v.Version, v.ChangeType, v.CreatedAt.Format("2006-01-02 15:04:05"))
			if v.Reason != "" {
				fmt.Printf(" - %s", v.Reason)
			}
			fmt.Println()
		}
		return nil
	})
}

func newFactsAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <fact-id>",
		Short: "Show the audit trail of a fact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFactsAudit(cmd, args[0])
		},
	}
}

func runFactsAudit(cmd *cobra.Command, factID string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		entries, err := d.FactHandler.HandleAuditLog(ctx, factID)
		if err != nil {
			return fmt.Errorf("loading audit log: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No audit entries recorded.")
			return nil
		}

		for _, entry := range entries {
			fmt.Printf("[%s] %s\n", entry.CreatedAt.Format("2006-01-02 15:04:05"), entry.Action)
		}
		return nil
	})
}

// splitTypedValue parses a type:value object reference.
func splitTypedValue(s string) (entities.ObjectType, string, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected type:value, got %q", s)
	}
	return entities.ObjectType(parts[0]), parts[1], nil
}

// displayFact prints a fact with its resolved endpoints.
func displayFact(fact *entities.Fact) {
	fmt.Printf("ID: %s\n", fact.ID)
	fmt.Printf("  [%s] %s\n", fact.Type, factEndpoints(fact))
	if fact.Value != "" {
		fmt.Printf("  Value: %s\n", fact.Value)
	}
	fmt.Printf("  Confidence: %.2f\n", fact.Confidence)
	if fact.OriginID != "" {
		fmt.Printf("  Origin: %s\n", fact.OriginID)
	}
	if fact.Retracted {
		fmt.Println("  Retracted: yes")
	}
	fmt.Println()
}

// factEndpoints renders the bound objects with a direction marker.
func factEndpoints(fact *entities.Fact) string {
	var source, destination string
	if fact.SourceObject != nil {
		source = fmt.Sprintf("%s:%s", fact.SourceObject.Type, fact.SourceObject.Value)
	}
	if fact.DestinationObject != nil {
		destination = fmt.Sprintf("%s:%s", fact.DestinationObject.Type, fact.DestinationObject.Value)
	}

	switch {
	case source == "":
		return destination
	case destination == "" || destination == source:
		return source
	case fact.Bidirectional:
		return source + " <-> " + destination
	default:
		return source + " -> " + destination
	}
}
