package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vinicius-lino-figueiredo/jsongo"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&app{newLogger: defaultLogger})
}

func newRootCmdWith(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "jsongo",
		Short:        "Inspects and edits jsongo collections",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	registerFlags(root)

	root.AddCommand(
		lsCmd(a),
		countCmd(a),
		findCmd(a),
		insertCmd(a),
		upsertCmd(a),
		deleteCmd(a),
		fsckCmd(a),
		fmtCmd(a),
	)
	return root
}

func lsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "Lists the collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := a.db.CollectionNames(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func countCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count <collection> [criteria]",
		Short: "Counts the documents matching criteria",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := a.collection(args[0])
			if err != nil {
				return err
			}
			criteria, err := parseCriteria(args, 1)
			if err != nil {
				return err
			}
			cur, err := coll.Find(cmd.Context(), criteria)
			if err != nil {
				return err
			}
			defer cur.Close()

			n := 0
			for cur.Next() {
				n++
			}
			if err := cur.Err(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

// parseSort reads a comma separated list of fields. A leading "-" sorts the
// field in descending order.
func parseSort(s string) jsongo.Sort {
	var sort jsongo.Sort
	for field := range strings.SplitSeq(s, ",") {
		field = strings.TrimSpace(field)
		order := int64(1)
		if rest, ok := strings.CutPrefix(field, "-"); ok {
			field, order = rest, -1
		}
		if field != "" {
			sort = append(sort, jsongo.SortName{Key: field, Order: order})
		}
	}
	return sort
}

func findCmd(a *app) *cobra.Command {
	var (
		sort        string
		skip, limit int64
	)
	cmd := &cobra.Command{
		Use:   "find <collection> [criteria]",
		Short: "Prints the documents matching criteria",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := a.collection(args[0])
			if err != nil {
				return err
			}
			criteria, err := parseCriteria(args, 1)
			if err != nil {
				return err
			}
			cur, err := coll.Find(cmd.Context(), criteria,
				jsongo.WithSort(parseSort(sort)),
				jsongo.WithSkip(skip),
				jsongo.WithLimit(limit),
			)
			if err != nil {
				return err
			}
			defer cur.Close()

			docs, err := cur.All()
			if err != nil {
				return err
			}
			if docs == nil {
				docs = []jsongo.Document{}
			}
			return writeJSON(cmd.OutOrStdout(), docs)
		},
	}
	cmd.Flags().StringVar(&sort, "sort", "", `fields to sort by, like "age,-name"`)
	cmd.Flags().Int64Var(&skip, "skip", 0, "number of matches to skip")
	cmd.Flags().Int64Var(&limit, "limit", 0, "maximum number of matches, 0 for all")
	return cmd
}

type writeFunc func(coll jsongo.Collection, cmd *cobra.Command, docs []any) ([]jsongo.Document, error)

func writeCmd(a *app, use, short string, write writeFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <collection> <document|documents>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := a.collection(args[0])
			if err != nil {
				return err
			}
			docs, err := parseDocuments(args[1])
			if err != nil {
				return err
			}
			stored, err := write(coll, cmd, docs)
			if err != nil {
				return err
			}
			if err := a.db.SaveAll(cmd.Context()); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stored)
		},
	}
}

func insertCmd(a *app) *cobra.Command {
	return writeCmd(a, "insert", "Inserts documents, all or none",
		func(coll jsongo.Collection, cmd *cobra.Command, docs []any) ([]jsongo.Document, error) {
			return coll.InsertMany(cmd.Context(), docs...)
		},
	)
}

func upsertCmd(a *app) *cobra.Command {
	return writeCmd(a, "upsert", "Replaces documents by _id or inserts them",
		func(coll jsongo.Collection, cmd *cobra.Command, docs []any) ([]jsongo.Document, error) {
			return coll.UpsertMany(cmd.Context(), docs...)
		},
	)
}

func deleteCmd(a *app) *cobra.Command {
	var many bool
	cmd := &cobra.Command{
		Use:   "delete <collection> <criteria>",
		Short: "Deletes the first document matching criteria",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := a.collection(args[0])
			if err != nil {
				return err
			}
			criteria, err := parseCriteria(args, 1)
			if err != nil {
				return err
			}

			del := coll.DeleteOne
			if many {
				del = coll.DeleteMany
			}
			res, err := del(cmd.Context(), criteria)
			if err != nil {
				return err
			}
			if err := a.db.SaveAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.DeletedCount)
			return nil
		},
	}
	cmd.Flags().BoolVar(&many, "many", false, "delete every matching document")
	return cmd
}

func fsckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fsck",
		Short: "Checks the relations between collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			violations, err := a.db.Fsck(cmd.Context())
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), violations); err != nil {
				return err
			}
			if len(violations) > 0 {
				return fmt.Errorf("%w: %d", errViolations, len(violations))
			}
			return nil
		},
	}
}

func fmtCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fmt",
		Short: "Rewrites every collection in canonical form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			names, err := a.db.CollectionNames(ctx)
			if err != nil {
				return err
			}
			for _, name := range names {
				coll, err := a.collection(name)
				if err != nil {
					return err
				}
				if err := coll.Save(ctx); err != nil {
					return fmt.Errorf("saving collection %q: %w", name, err)
				}
				a.logger.Info("collection formatted", zap.String("collection", name))
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
