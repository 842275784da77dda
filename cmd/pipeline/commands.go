package main

import (
	"fmt"
	"os"

	"survey_insight_go/internal/model"
	"survey_insight_go/pkg/log"

	"github.com/spf13/cobra"
)

func newRetagCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "retag",
		Short: "Re-run keyword tagging over every response and rebuild the algorithmic tag table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := opts.app.Tagging.Retag(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed=%d tagged=%d links=%d avg=%.2f at_max=%d\n",
				stats.ResponsesProcessed, stats.ResponsesTagged, stats.Links, stats.AverageTags, stats.AtMaxTags)
			if len(stats.UnknownKeys) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "keys without a catalog entry: %v (run seed-tags)\n", stats.UnknownKeys)
			}
			return nil
		},
	}
}

func newSeedTagsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-tags",
		Short: "Upsert the built-in primary tag catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := opts.app.Tags.SeedCanonical(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d tags\n", n)
			return nil
		},
	}
}

func newImportHierarchyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import-hierarchy <csv>",
		Short: "Create primary tags and subtags from a 'Primary Tag,Subtag' CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := parseHierarchyCSV(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			res, err := opts.app.Tags.ImportHierarchy(cmd.Context(), rows)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "primary: %d created, %d existing; subtags: %d created, %d existing; skipped %d\n",
				res.PrimaryCreated, res.PrimaryExisted, res.SubCreated, res.SubExisted, res.Skipped)
			return nil
		},
	}
}

func newImportMappingsCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import-mappings <csv>",
		Short: "Upsert question tag mappings from a 'QuestionID,TagName,AssignmentType[,Notes]' CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := parseMappingCSV(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			res, err := opts.app.Mappings.Import(cmd.Context(), rows, dryRun)
			if err != nil {
				return err
			}
			verb := "upserted"
			if res.DryRun {
				verb = "would upsert"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d mappings, skipped %d\n", verb, res.Upserted, res.Skipped)
			for _, name := range res.UnknownTags {
				log.Warnf("import-mappings: unknown tag %q", name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	return cmd
}

func newCuratorCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curator",
		Short: "Manage curator accounts",
	}

	var admin bool
	add := &cobra.Command{
		Use:   "add <username> <password>",
		Short: "Create a curator account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := model.CuratorRoleCurator
			if admin {
				role = model.CuratorRoleAdmin
			}
			c, err := opts.app.Curators.Create(cmd.Context(), args[0], args[1], role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "curator %q created (id=%d, role=%s)\n", c.Username, c.ID, c.Role)
			return nil
		},
	}
	add.Flags().BoolVar(&admin, "admin", false, "Grant the ADMIN role")
	cmd.AddCommand(add)
	return cmd
}
