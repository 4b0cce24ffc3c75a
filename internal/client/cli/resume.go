package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iudanet/cvagent/internal/client/optimize"
	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

func (r *root) resumeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resume",
		Aliases: []string{"resumes"},
		Short:   "Manage resumes",
	}

	var userID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List resumes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runResumeList(cmd.Context(), userID)
		},
	}
	list.Flags().StringVar(&userID, "user", "", "Filter by user ID")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show resume details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runResumeGet(cmd.Context(), args[0])
		},
	}

	var createFile string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a resume from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runResumeCreate(cmd.Context(), createFile)
		},
	}
	create.Flags().StringVarP(&createFile, "file", "f", "", "Path to resume JSON")
	_ = create.MarkFlagRequired("file")

	var updateFile string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a resume with the contents of a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runResumeUpdate(cmd.Context(), args[0], updateFile)
		},
	}
	update.Flags().StringVarP(&updateFile, "file", "f", "", "Path to resume JSON")
	_ = update.MarkFlagRequired("file")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runResumeDelete(cmd.Context(), args[0])
		},
	}

	export := r.exportCommand(func(ctx context.Context, id, format string) ([]byte, error) {
		return r.cli.resumes.Export(ctx, id, format)
	})

	optimizeCmd := r.optimizeCommand(func(ctx context.Context, id string) (optimize.Artifact, error) {
		resume, err := r.cli.resumes.Get(ctx, id)
		if err != nil {
			return optimize.Artifact{}, err
		}
		return optimize.FromResume(resume), nil
	})

	cmd.AddCommand(list, get, create, update, del, export, optimizeCmd)
	return cmd
}

func (c *Cli) runResumeList(ctx context.Context, userID string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	c.io.Println("=== Resumes ===")
	c.io.Println()

	resumes, err := c.resumes.List(ctx, userID)
	if err != nil {
		return err
	}

	if len(resumes) == 0 {
		c.io.Println("No resumes found.")
		c.io.Println()
		c.io.Println("Use 'cvagent resume create --file resume.json' to add your first resume.")
		return nil
	}

	c.io.Printf("Found %d resume(s):\n", len(resumes))
	c.io.Println()

	for i, resume := range resumes {
		c.io.Printf("%d. %s\n", i+1, resume.Title)
		c.io.Printf("   ID:      %s\n", resume.ID)
		c.io.Printf("   Quality: %.0f%%\n", resume.QualityScore*100)
		if resume.AIOptimized {
			c.io.Println("   AI optimized")
		}
		c.io.Println()
	}

	return nil
}

func (c *Cli) runResumeGet(ctx context.Context, id string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	resume, err := c.resumes.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.render(resumeTemplate, resume)
}

func (c *Cli) runResumeCreate(ctx context.Context, path string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	var resume pkgapi.Resume
	if err := readJSONFile(path, &resume); err != nil {
		return err
	}

	created, err := c.resumes.Create(ctx, &resume)
	if err != nil {
		return err
	}

	c.io.Println("✓ Resume created!")
	c.io.Printf("ID: %s\n", created.ID)
	return nil
}

func (c *Cli) runResumeUpdate(ctx context.Context, id, path string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	var resume pkgapi.Resume
	if err := readJSONFile(path, &resume); err != nil {
		return err
	}

	if _, err := c.resumes.Update(ctx, id, &resume); err != nil {
		return err
	}

	c.io.Println("✓ Resume updated!")
	return nil
}

func (c *Cli) runResumeDelete(ctx context.Context, id string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	if err := c.resumes.Delete(ctx, id); err != nil {
		return err
	}

	c.io.Printf("✓ Resume %s deleted.\n", id)
	return nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
