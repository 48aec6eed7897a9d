package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"almoner/internal/donor"
	"almoner/internal/workflow"
)

func parseDonorID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid donor id %q", arg)
	}
	return id, nil
}

func formatCurrency(amount float64) string {
	return "$" + humanize.CommafWithDigits(amount, 2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// promptConfirmer asks yes/no questions over the command's own streams so
// tests can script answers through SetIn.
func promptConfirmer(cmd *cobra.Command) workflow.Confirmer {
	reader := bufio.NewReader(cmd.InOrStdin())
	return workflow.ConfirmerFunc(func(prompt string) bool {
		fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	})
}

// alwaysYes satisfies confirmation prompts for --yes invocations.
func alwaysYes() workflow.Confirmer {
	return workflow.ConfirmerFunc(func(string) bool { return true })
}

func buildDonorRows(donors []donor.Donor) [][]string {
	rows := make([][]string, 0, len(donors))
	for _, d := range donors {
		rows = append(rows, []string{
			strconv.FormatInt(d.ID, 10),
			d.DisplayName(),
			valueOr(d.Email, "-"),
			valueOr(d.Phone, "-"),
			valueOr(d.Location(), "-"),
			valueOr(d.DonorStatus, "-"),
			formatCurrency(d.TotalGifts),
			strconv.Itoa(d.TotalGiftCount),
		})
	}
	return rows
}

var donorTableHeaders = []string{"ID", "Name", "Email", "Phone", "Location", "Status", "Total Gifts", "Gifts"}

var donorTableAligns = []columnAlignment{
	alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight,
}
