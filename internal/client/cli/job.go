package cli

import (
	"context"

	"github.com/spf13/cobra"

	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

func (r *root) jobCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "job",
		Aliases: []string{"jobs"},
		Short:   "Manage job requirements",
	}

	var userID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List job requirements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runJobList(cmd.Context(), userID)
		},
	}
	list.Flags().StringVar(&userID, "user", "", "Filter by user ID")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show job requirement details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runJobGet(cmd.Context(), args[0])
		},
	}

	var createFile string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a job requirement from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runJobSave(cmd.Context(), "", createFile)
		},
	}
	create.Flags().StringVarP(&createFile, "file", "f", "", "Path to job requirement JSON")
	_ = create.MarkFlagRequired("file")

	var updateFile string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a job requirement with the contents of a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runJobSave(cmd.Context(), args[0], updateFile)
		},
	}
	update.Flags().StringVarP(&updateFile, "file", "f", "", "Path to job requirement JSON")
	_ = update.MarkFlagRequired("file")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a job requirement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runJobDelete(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, get, create, update, del)
	return cmd
}

func (c *Cli) runJobList(ctx context.Context, userID string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	c.io.Println("=== Job Requirements ===")
	c.io.Println()

	jobs, err := c.jobs.List(ctx, userID)
	if err != nil {
		return err
	}

	if len(jobs) == 0 {
		c.io.Println("No job requirements found.")
		return nil
	}

	for i, job := range jobs {
		c.io.Printf("%d. %s at %s\n", i+1, job.Title, job.Company)
		c.io.Printf("   ID: %s\n", job.ID)
		c.io.Println()
	}
	return nil
}

func (c *Cli) runJobGet(ctx context.Context, id string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	job, err := c.jobs.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.render(jobTemplate, job)
}

// runJobSave создает вакансию при пустом id, иначе обновляет
func (c *Cli) runJobSave(ctx context.Context, id, path string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	var job pkgapi.JobRequirement
	if err := readJSONFile(path, &job); err != nil {
		return err
	}

	if id == "" {
		created, err := c.jobs.Create(ctx, &job)
		if err != nil {
			return err
		}
		c.io.Println("✓ Job requirement created!")
		c.io.Printf("ID: %s\n", created.ID)
		return nil
	}

	if _, err := c.jobs.Update(ctx, id, &job); err != nil {
		return err
	}
	c.io.Println("✓ Job requirement updated!")
	return nil
}

func (c *Cli) runJobDelete(ctx context.Context, id string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	if err := c.jobs.Delete(ctx, id); err != nil {
		return err
	}

	c.io.Printf("✓ Job requirement %s deleted.\n", id)
	return nil
}
