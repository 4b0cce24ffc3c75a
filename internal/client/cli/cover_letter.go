package cli

import (
	"context"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/iudanet/cvagent/internal/client/optimize"
	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

func (r *root) coverLetterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cover-letter",
		Aliases: []string{"cover-letters", "letter"},
		Short:   "Manage cover letters",
	}

	var filters map[string]string
	list := &cobra.Command{
		Use:   "list",
		Short: "List cover letters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runCoverLetterList(cmd.Context(), toQuery(filters))
		},
	}
	list.Flags().StringToStringVar(&filters, "filter", nil, "Query filters, e.g. --filter status=draft")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show cover letter details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runCoverLetterGet(cmd.Context(), args[0])
		},
	}

	var createFile string
	var personalized bool
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a cover letter from a JSON request file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runCoverLetterCreate(cmd.Context(), createFile, personalized)
		},
	}
	create.Flags().StringVarP(&createFile, "file", "f", "", "Path to request JSON")
	create.Flags().BoolVar(&personalized, "personalized", false, "Tailor to the resume and job requirement in the request")
	_ = create.MarkFlagRequired("file")

	var title, status string
	customize := &cobra.Command{
		Use:   "customize <id>",
		Short: "Change title or status of a cover letter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runCoverLetterCustomize(cmd.Context(), args[0], &pkgapi.CoverLetterCustomization{
				Title:  title,
				Status: status,
			})
		},
	}
	customize.Flags().StringVar(&title, "title", "", "New title")
	customize.Flags().StringVar(&status, "status", "", "New status: draft, ready, sent, archived")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a cover letter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runCoverLetterDelete(cmd.Context(), args[0])
		},
	}

	var templateFilters map[string]string
	templates := &cobra.Command{
		Use:   "templates",
		Short: "List cover letter templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runTemplates(cmd.Context(), toQuery(templateFilters))
		},
	}
	templates.Flags().StringToStringVar(&templateFilters, "filter", nil, "Query filters, e.g. --filter category=tech")

	export := r.exportCommand(func(ctx context.Context, id, format string) ([]byte, error) {
		return r.cli.coverLetters.Export(ctx, id, format)
	})

	optimizeCmd := r.optimizeCommand(func(ctx context.Context, id string) (optimize.Artifact, error) {
		letter, err := r.cli.coverLetters.Get(ctx, id)
		if err != nil {
			return optimize.Artifact{}, err
		}
		return optimize.FromCoverLetter(letter), nil
	})

	cmd.AddCommand(list, get, create, customize, del, templates, export, optimizeCmd)
	return cmd
}

func (c *Cli) runCoverLetterList(ctx context.Context, query url.Values) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	c.io.Println("=== Cover Letters ===")
	c.io.Println()

	letters, err := c.coverLetters.List(ctx, query)
	if err != nil {
		return err
	}

	if len(letters) == 0 {
		c.io.Println("No cover letters found.")
		return nil
	}

	c.io.Printf("Found %d cover letter(s):\n", len(letters))
	c.io.Println()

	for i, letter := range letters {
		c.io.Printf("%d. %s\n", i+1, letter.Title)
		c.io.Printf("   ID:       %s\n", letter.ID)
		c.io.Printf("   Company:  %s\n", letter.CompanyName)
		c.io.Printf("   Position: %s\n", letter.Position)
		c.io.Printf("   Status:   %s\n", letter.Status)
		c.io.Println()
	}

	return nil
}

func (c *Cli) runCoverLetterGet(ctx context.Context, id string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	letter, err := c.coverLetters.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.render(coverLetterTemplate, letter)
}

func (c *Cli) runCoverLetterCreate(ctx context.Context, path string, personalized bool) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	var req pkgapi.CoverLetterRequest
	if err := readJSONFile(path, &req); err != nil {
		return err
	}

	var letter *pkgapi.CoverLetter
	var err error
	if personalized {
		letter, err = c.coverLetters.CreatePersonalized(ctx, &req)
	} else {
		letter, err = c.coverLetters.CreateBasic(ctx, &req)
	}
	if err != nil {
		return err
	}

	c.io.Println("✓ Cover letter created!")
	c.io.Printf("ID: %s\n", letter.ID)
	return nil
}

func (c *Cli) runCoverLetterCustomize(ctx context.Context, id string, custom *pkgapi.CoverLetterCustomization) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	letter, err := c.coverLetters.Customize(ctx, id, custom)
	if err != nil {
		return err
	}

	c.io.Println("✓ Cover letter updated!")
	return c.render(coverLetterTemplate, letter)
}

func (c *Cli) runCoverLetterDelete(ctx context.Context, id string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	if err := c.coverLetters.Delete(ctx, id); err != nil {
		return err
	}

	c.io.Printf("✓ Cover letter %s deleted.\n", id)
	return nil
}

func (c *Cli) runTemplates(ctx context.Context, query url.Values) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	templates, err := c.coverLetters.Templates(ctx, query)
	if err != nil {
		return err
	}

	if len(templates) == 0 {
		c.io.Println("No templates found.")
		return nil
	}

	for _, tpl := range templates {
		marker := ""
		if tpl.IsDefault {
			marker = " (default)"
		}
		c.io.Printf("- %s [%s]%s\n", tpl.Name, tpl.Category, marker)
		c.io.Printf("  ID: %s\n", tpl.ID)
	}
	return nil
}

func toQuery(filters map[string]string) url.Values {
	if len(filters) == 0 {
		return nil
	}
	query := url.Values{}
	for k, v := range filters {
		if v != "" {
			query.Set(k, v)
		}
	}
	if len(query) == 0 {
		return nil
	}
	return query
}
