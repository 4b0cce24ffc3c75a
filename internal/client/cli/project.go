package cli

import (
	"context"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

func (r *root) projectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage portfolio projects",
	}

	var (
		status, tag, search, resumeID string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if resumeID != "" {
				return r.cli.runProjectListByResume(cmd.Context(), resumeID)
			}
			return r.cli.runProjectList(cmd.Context(), toQuery(map[string]string{
				"status": status,
				"tag":    tag,
				"q":      search,
			}))
		},
	}
	list.Flags().StringVar(&status, "status", "", "Filter by status")
	list.Flags().StringVar(&tag, "tag", "", "Filter by tag")
	list.Flags().StringVarP(&search, "search", "q", "", "Search in name, description and stack")
	list.Flags().StringVar(&resumeID, "resume", "", "Show projects of one resume")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show project details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runProjectGet(cmd.Context(), args[0])
		},
	}

	var createFile string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a project from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runProjectSave(cmd.Context(), "", createFile)
		},
	}
	create.Flags().StringVarP(&createFile, "file", "f", "", "Path to project JSON")
	_ = create.MarkFlagRequired("file")

	var updateFile string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a project with the contents of a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runProjectSave(cmd.Context(), args[0], updateFile)
		},
	}
	update.Flags().StringVarP(&updateFile, "file", "f", "", "Path to project JSON")
	_ = update.MarkFlagRequired("file")

	setStatus := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change project status (planning, development, testing, completed, on-hold)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runProjectStatus(cmd.Context(), args[0], args[1])
		},
	}

	var remove bool
	tagCmd := &cobra.Command{
		Use:   "tag <id> <tag>",
		Short: "Add a tag to a project, or remove it with --remove",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runProjectTag(cmd.Context(), args[0], args[1], remove)
		},
	}
	tagCmd.Flags().BoolVar(&remove, "remove", false, "Remove the tag instead of adding it")

	tags := &cobra.Command{
		Use:   "tags",
		Short: "List all project tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runProjectTags(cmd.Context())
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runProjectDelete(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, get, create, update, setStatus, tagCmd, tags, del)
	return cmd
}

func (c *Cli) runProjectList(ctx context.Context, query url.Values) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	projects, err := c.projects.List(ctx, query)
	if err != nil {
		return err
	}
	c.printProjects(projects)
	return nil
}

func (c *Cli) runProjectListByResume(ctx context.Context, resumeID string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	projects, err := c.projects.ListByResume(ctx, resumeID)
	if err != nil {
		return err
	}
	c.printProjects(projects)
	return nil
}

func (c *Cli) printProjects(projects []pkgapi.Project) {
	c.io.Println("=== Projects ===")
	c.io.Println()

	if len(projects) == 0 {
		c.io.Println("No projects found.")
		return
	}

	for i, p := range projects {
		c.io.Printf("%d. %s [%s]\n", i+1, p.Name, p.Status)
		c.io.Printf("   ID: %s\n", p.ID)
		if len(p.Tags) > 0 {
			c.io.Printf("   Tags: %s\n", strings.Join(p.Tags, ", "))
		}
		c.io.Println()
	}
}

func (c *Cli) runProjectGet(ctx context.Context, id string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	project, err := c.projects.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.render(projectTemplate, project)
}

// runProjectSave создает проект при пустом id, иначе обновляет
func (c *Cli) runProjectSave(ctx context.Context, id, path string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	var project pkgapi.Project
	if err := readJSONFile(path, &project); err != nil {
		return err
	}

	if id == "" {
		created, err := c.projects.Create(ctx, &project)
		if err != nil {
			return err
		}
		c.io.Println("✓ Project created!")
		c.io.Printf("ID: %s\n", created.ID)
		return nil
	}

	if _, err := c.projects.Update(ctx, id, &project); err != nil {
		return err
	}
	c.io.Println("✓ Project updated!")
	return nil
}

func (c *Cli) runProjectStatus(ctx context.Context, id, status string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	project, err := c.projects.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}
	c.io.Printf("✓ Project %s is now %s.\n", project.Name, project.Status)
	return nil
}

func (c *Cli) runProjectTag(ctx context.Context, id, tag string, remove bool) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	var (
		project *pkgapi.Project
		err     error
	)
	if remove {
		project, err = c.projects.RemoveTag(ctx, id, tag)
	} else {
		project, err = c.projects.AddTag(ctx, id, tag)
	}
	if err != nil {
		return err
	}

	c.io.Printf("✓ Tags: %s\n", strings.Join(project.Tags, ", "))
	return nil
}

func (c *Cli) runProjectTags(ctx context.Context) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	tags, err := c.projects.Tags(ctx)
	if err != nil {
		return err
	}

	if len(tags) == 0 {
		c.io.Println("No tags yet.")
		return nil
	}
	for _, tag := range tags {
		c.io.Printf("  #%s\n", tag)
	}
	return nil
}

func (c *Cli) runProjectDelete(ctx context.Context, id string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	if err := c.projects.Delete(ctx, id); err != nil {
		return err
	}

	c.io.Printf("✓ Project %s deleted.\n", id)
	return nil
}
