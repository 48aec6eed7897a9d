package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"almoner/internal/donor"
	"almoner/internal/workflow"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "review <id>",
		Short: "Review potential duplicates for a donor",
		Long: `Review fetches duplicate candidates for a donor, scores each one,
and walks through them interactively. Confirmed merges fold the duplicate
into the reviewed donor; every decision lands in the review journal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDonorID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			reference, err := client.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return runDuplicateReview(cmd, ctx, reference, jsonOut, promptConfirmer(cmd))
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit scored candidates as JSON and skip prompts")
	return cmd
}

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "merge <primary-id> <duplicate-id>",
		Short: "Merge a duplicate donor into a primary record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			primaryID, err := parseDonorID(args[0])
			if err != nil {
				return err
			}
			duplicateID, err := parseDonorID(args[1])
			if err != nil {
				return err
			}
			if primaryID == duplicateID {
				return fmt.Errorf("primary and duplicate must be different donors")
			}

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			primary, err := client.Get(cmd.Context(), primaryID)
			if err != nil {
				return err
			}
			duplicate, err := client.Get(cmd.Context(), duplicateID)
			if err != nil {
				return err
			}

			confirm := promptConfirmer(cmd)
			if yes {
				confirm = alwaysYes()
			}

			store := ctx.openJournal()
			if store != nil {
				defer store.Close()
			}
			var rec workflow.Recorder
			if store != nil {
				rec = store
			}

			review := workflow.NewReview(client, confirm, rec, ctx.sessionProvider(), ctx.slogger())
			candidate := review.Score(primary, duplicate)
			merged, ok, err := review.Merge(cmd.Context(), primary, candidate)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Merge declined")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Merged donor %d into %d\n", duplicateID, primaryID)
			printDonorDetail(cmd, merged)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

type scoredCandidate struct {
	Donor      donor.Donor `json:"donor"`
	Score      int         `json:"score"`
	Confidence string      `json:"confidence"`
	Factors    []string    `json:"factors"`
}

// runDuplicateReview drives the interactive duplicate pass shared by
// review, create, and edit.
func runDuplicateReview(cmd *cobra.Command, ctx *commandContext, reference donor.Donor, jsonOut bool, confirm workflow.Confirmer) error {
	client, err := ctx.apiClient()
	if err != nil {
		return err
	}

	store := ctx.openJournal()
	if store != nil {
		defer store.Close()
	}
	var rec workflow.Recorder
	if store != nil {
		rec = store
	}

	review := workflow.NewReview(client, confirm, rec, ctx.sessionProvider(), ctx.slogger())
	candidates, err := review.Load(cmd.Context(), reference)
	if err != nil {
		return err
	}

	if jsonOut {
		scored := make([]scoredCandidate, 0, len(candidates))
		for _, c := range candidates {
			scored = append(scored, scoredCandidate{
				Donor:      c.Donor,
				Score:      c.Match.Score,
				Confidence: string(c.Confidence),
				Factors:    c.Match.Factors,
			})
		}
		return writeJSON(cmd, scored)
	}

	out := cmd.OutOrStdout()
	if len(candidates) == 0 {
		fmt.Fprintf(out, "No duplicates found for %s (id %d)\n", reference.DisplayName(), reference.ID)
		return nil
	}

	fmt.Fprintf(out, "Found %d potential duplicate(s) for %s (id %d):\n\n", len(candidates), reference.DisplayName(), reference.ID)
	fmt.Fprintln(out, renderCandidateTable(candidates))

	merges := 0
	for _, candidate := range candidates {
		merged, ok, err := review.Merge(cmd.Context(), reference, candidate)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(out, "Kept donor %d as a separate record\n", candidate.Donor.ID)
			continue
		}
		merges++
		reference = merged
		fmt.Fprintf(out, "Merged donor %d into %d\n", candidate.Donor.ID, reference.ID)
	}

	if merges == 0 {
		fmt.Fprintln(out, "Review complete; no records merged")
		return nil
	}
	fmt.Fprintf(out, "Review complete; merged %d record(s)\n", merges)
	printDonorDetail(cmd, reference)
	return nil
}

func renderCandidateTable(candidates []workflow.Candidate) string {
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.Donor.ID),
			c.Donor.DisplayName(),
			valueOr(c.Donor.Email, "-"),
			fmt.Sprintf("%d", c.Match.Score),
			string(c.Confidence),
			strings.Join(c.Match.Factors, ", "),
		})
	}
	return renderTable(
		[]string{"ID", "Name", "Email", "Score", "Confidence", "Factors"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}
