package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"almoner/internal/donor"
	"almoner/internal/workflow"
)

func newDonorCommand(ctx *commandContext) *cobra.Command {
	donorCmd := &cobra.Command{
		Use:   "donor",
		Short: "Browse and manage donor records",
	}

	donorCmd.AddCommand(newDonorListCommand(ctx))
	donorCmd.AddCommand(newDonorSearchCommand(ctx))
	donorCmd.AddCommand(newDonorShowCommand(ctx))
	donorCmd.AddCommand(newDonorCreateCommand(ctx))
	donorCmd.AddCommand(newDonorEditCommand(ctx))
	donorCmd.AddCommand(newDonorDeleteCommand(ctx))
	donorCmd.AddCommand(newDonorTagCommand(ctx))

	return donorCmd
}

func newDonorListCommand(ctx *commandContext) *cobra.Command {
	var skip int
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List donors in server order",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			cfg, _ := ctx.ensureConfig()
			if limit <= 0 {
				limit = cfg.API.ListLimit
			}
			directory := workflow.NewDirectory(client, limit, ctx.slogger())

			donors, err := directory.List(cmd.Context(), skip)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, donors)
			}
			if len(donors) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No donors found")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(donorTableHeaders, buildDonorRows(donors), donorTableAligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "Number of records to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (defaults to api.list_limit)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newDonorSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search donors by name or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			cfg, _ := ctx.ensureConfig()
			if limit <= 0 {
				limit = cfg.API.SearchLimit
			}
			directory := workflow.NewDirectory(client, limit, ctx.slogger())

			donors, _, err := directory.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, donors)
			}
			if len(donors) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No donors match %q\n", args[0])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(donorTableHeaders, buildDonorRows(donors), donorTableAligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (defaults to api.search_limit)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newDonorShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single donor record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDonorID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			d, err := client.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, d)
			}
			printDonorDetail(cmd, d)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}

func printDonorDetail(cmd *cobra.Command, d donor.Donor) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (id %d)\n", d.DisplayName(), d.ID)
	if d.Company != "" {
		fmt.Fprintf(out, "  Company:  %s\n", d.Company)
	}
	fmt.Fprintf(out, "  Email:    %s\n", valueOr(d.Email, "none"))
	fmt.Fprintf(out, "  Phone:    %s\n", valueOr(d.Phone, "none"))
	fmt.Fprintf(out, "  Location: %s\n", valueOr(d.Location(), "none"))
	fmt.Fprintf(out, "  Status:   %s / %s\n", valueOr(d.DonorStatus, "unknown"), valueOr(d.DonorType, "unknown"))
	fmt.Fprintf(out, "  Giving:   %s across %d gifts\n", formatCurrency(d.TotalGifts), d.TotalGiftCount)
	if !d.CreatedAt.IsZero() {
		fmt.Fprintf(out, "  Created:  %s\n", formatDate(d.CreatedAt))
	}
}

type donorFormFlags struct {
	first         string
	last          string
	email         string
	phone         string
	mobilePhone   string
	workPhone     string
	address1      string
	address2      string
	city          string
	state         string
	postalCode    string
	country       string
	company       string
	jobTitle      string
	contactMethod string
	doNotEmail    bool
	doNotCall     bool
	doNotMail     bool
	donorType     string
	notes         string
	source        string
}

func (f *donorFormFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.first, "first", "", "First name (required)")
	flags.StringVar(&f.last, "last", "", "Last name (required)")
	flags.StringVar(&f.email, "email", "", "Email address")
	flags.StringVar(&f.phone, "phone", "", "Primary phone")
	flags.StringVar(&f.mobilePhone, "mobile-phone", "", "Mobile phone")
	flags.StringVar(&f.workPhone, "work-phone", "", "Work phone")
	flags.StringVar(&f.address1, "address1", "", "Address line 1")
	flags.StringVar(&f.address2, "address2", "", "Address line 2")
	flags.StringVar(&f.city, "city", "", "City")
	flags.StringVar(&f.state, "state", "", "State")
	flags.StringVar(&f.postalCode, "postal-code", "", "Postal code")
	flags.StringVar(&f.country, "country", "US", "Country")
	flags.StringVar(&f.company, "company", "", "Company")
	flags.StringVar(&f.jobTitle, "job-title", "", "Job title")
	flags.StringVar(&f.contactMethod, "contact-method", "email", "Preferred contact method")
	flags.BoolVar(&f.doNotEmail, "do-not-email", false, "Suppress email outreach")
	flags.BoolVar(&f.doNotCall, "do-not-call", false, "Suppress phone outreach")
	flags.BoolVar(&f.doNotMail, "do-not-mail", false, "Suppress postal outreach")
	flags.StringVar(&f.donorType, "type", "individual", "Donor type")
	flags.StringVar(&f.notes, "notes", "", "Free-form notes")
	flags.StringVar(&f.source, "source", "", "Acquisition source")
}

func (f *donorFormFlags) payload() donor.Create {
	return donor.Create{
		FirstName:              f.first,
		LastName:               f.last,
		Email:                  f.email,
		Phone:                  f.phone,
		MobilePhone:            f.mobilePhone,
		WorkPhone:              f.workPhone,
		AddressLine1:           f.address1,
		AddressLine2:           f.address2,
		City:                   f.city,
		State:                  f.state,
		PostalCode:             f.postalCode,
		Country:                f.country,
		Company:                f.company,
		JobTitle:               f.jobTitle,
		PreferredContactMethod: f.contactMethod,
		DoNotEmail:             f.doNotEmail,
		DoNotCall:              f.doNotCall,
		DoNotMail:              f.doNotMail,
		DonorType:              f.donorType,
		Notes:                  f.notes,
		Source:                 f.source,
	}
}

// seed initializes the form from an existing record so an edit resubmits
// the full payload, changed or not.
func (f *donorFormFlags) seed(d donor.Donor) {
	f.first = d.FirstName
	f.last = d.LastName
	f.email = d.Email
	f.phone = d.Phone
	f.city = d.City
	f.state = d.State
	f.company = d.Company
	if d.DonorType != "" {
		f.donorType = d.DonorType
	}
}

func newDonorCreateCommand(ctx *commandContext) *cobra.Command {
	var form donorFormFlags
	var tags []string
	var skipReview bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a donor and review duplicates",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			editor := workflow.NewEditor(client, ctx.slogger())
			saved, err := editor.Submit(cmd.Context(), form.payload(), nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created donor %s (id %d)\n", saved.DisplayName(), saved.ID)

			for _, tag := range tags {
				if err := client.AddTag(cmd.Context(), saved.ID, tag); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Warning: could not add tag %q: %v\n", tag, err)
				}
			}

			if skipReview {
				return nil
			}
			return runDuplicateReview(cmd, ctx, saved, false, promptConfirmer(cmd))
		},
	}

	form.register(cmd)
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag to attach after saving (repeatable)")
	cmd.Flags().BoolVar(&skipReview, "skip-review", false, "Skip the duplicate review step")
	return cmd
}

func newDonorEditCommand(ctx *commandContext) *cobra.Command {
	var form donorFormFlags
	var skipReview bool

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a donor and review duplicates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDonorID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			existing, err := client.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			// Unchanged flags resubmit the stored values.
			seeded := form
			seeded.seed(existing)
			overrideChangedFlags(cmd, &seeded, &form)

			editor := workflow.NewEditor(client, ctx.slogger())
			saved, err := editor.Submit(cmd.Context(), seeded.payload(), &existing)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated donor %s (id %d)\n", saved.DisplayName(), saved.ID)

			// Every save routes through duplicate review, edits included,
			// matching the upstream workflow.
			if skipReview {
				return nil
			}
			return runDuplicateReview(cmd, ctx, saved, false, promptConfirmer(cmd))
		},
	}

	form.register(cmd)
	cmd.Flags().BoolVar(&skipReview, "skip-review", false, "Skip the duplicate review step")
	return cmd
}

// overrideChangedFlags copies only the flags the user actually set from
// src onto dst.
func overrideChangedFlags(cmd *cobra.Command, dst, src *donorFormFlags) {
	set := map[string]func(){
		"first":          func() { dst.first = src.first },
		"last":           func() { dst.last = src.last },
		"email":          func() { dst.email = src.email },
		"phone":          func() { dst.phone = src.phone },
		"mobile-phone":   func() { dst.mobilePhone = src.mobilePhone },
		"work-phone":     func() { dst.workPhone = src.workPhone },
		"address1":       func() { dst.address1 = src.address1 },
		"address2":       func() { dst.address2 = src.address2 },
		"city":           func() { dst.city = src.city },
		"state":          func() { dst.state = src.state },
		"postal-code":    func() { dst.postalCode = src.postalCode },
		"country":        func() { dst.country = src.country },
		"company":        func() { dst.company = src.company },
		"job-title":      func() { dst.jobTitle = src.jobTitle },
		"contact-method": func() { dst.contactMethod = src.contactMethod },
		"do-not-email":   func() { dst.doNotEmail = src.doNotEmail },
		"do-not-call":    func() { dst.doNotCall = src.doNotCall },
		"do-not-mail":    func() { dst.doNotMail = src.doNotMail },
		"type":           func() { dst.donorType = src.donorType },
		"notes":          func() { dst.notes = src.notes },
		"source":         func() { dst.source = src.source },
	}
	for name, apply := range set {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
}

func newDonorDeleteCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a donor record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDonorID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			confirm := promptConfirmer(cmd)
			if yes {
				confirm = alwaysYes()
			}
			if !confirm.Confirm(fmt.Sprintf("Delete donor %d? This cannot be undone.", id)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}

			if err := client.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted donor %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newDonorTagCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <id> <tag>",
		Short: "Attach a tag to a donor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDonorID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			if err := client.AddTag(cmd.Context(), id, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tagged donor %d with %q\n", id, args[1])
			return nil
		},
	}
}
