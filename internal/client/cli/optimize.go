package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iudanet/cvagent/internal/client/optimize"
	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

// optimizeOptions флаги команды optimize
type optimizeOptions struct {
	params pkgapi.OptimizeRequest
	remote bool
	noSave bool
}

func (r *root) optimizeCommand(load func(ctx context.Context, id string) (optimize.Artifact, error)) *cobra.Command {
	var opts optimizeOptions
	var optType string

	cmd := &cobra.Command{
		Use:   "optimize <id>",
		Short: "Run the optimization workflow and save the improved score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := r.cli.requireSession(ctx); err != nil {
				return err
			}

			artifact, err := load(ctx, args[0])
			if err != nil {
				return err
			}

			opts.params.OptimizationType = pkgapi.OptimizationType(optType)
			opts.remote = opts.remote || r.cfg.Remote
			return r.cli.runOptimize(ctx, artifact, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&optType, "type", "t", string(pkgapi.OptimizeComprehensive), "Optimization type: comprehensive, content, structure, keywords")
	flags.StringVar(&opts.params.TargetRole, "target-role", "", "Role to tailor for")
	flags.StringVar(&opts.params.TargetCompany, "target-company", "", "Company to tailor for")
	flags.StringVar(&opts.params.AdditionalRequirements, "requirements", "", "Comma separated keywords to cover")
	flags.StringVar(&opts.params.JobRequirementID, "job", "", "Job requirement ID to match against")
	flags.BoolVar(&opts.remote, keyRemote, false, "Let the server evaluate the result")
	flags.BoolVar(&opts.noSave, "no-save", false, "Do not store the optimized score")

	return cmd
}

// runOptimize ведет прогон до терминального состояния.
// Отмена ctx (Ctrl+C) отменяет прогон.
func (c *Cli) runOptimize(ctx context.Context, artifact optimize.Artifact, opts optimizeOptions) error {
	var evaluator optimize.Evaluator = optimize.LocalEvaluator{Jobs: c.jobs}
	if opts.remote {
		evaluator = optimize.RemoteEvaluator{Resumes: c.resumes, CoverLetters: c.coverLetters}
	}

	controllerOpts := append([]optimize.Option{optimize.WithLogger(c.logger)}, c.optimizeOpts...)
	controller := optimize.NewController(artifact, evaluator, controllerOpts...)

	unsubscribe := controller.Subscribe(func(s optimize.Snapshot) {
		if s.State == optimize.Running {
			c.io.Printf("\rOptimizing %s %s %3d%%", artifact.Title, progressBar(s.Progress), s.Progress)
		}
	})
	defer unsubscribe()

	if err := controller.Start(opts.params); err != nil {
		return err
	}

	snap, err := controller.Wait(ctx)
	c.io.Println()
	if err != nil {
		if cancelErr := controller.Cancel(); cancelErr == nil {
			c.io.Println("Optimization cancelled.")
		}
		return err
	}

	switch snap.State {
	case optimize.Failed:
		return fmt.Errorf("optimization failed: %w", snap.Err)
	case optimize.Cancelled:
		c.io.Println("Optimization cancelled.")
		return nil
	}

	if err := c.render(resultTemplate, snap.Result); err != nil {
		return err
	}

	if opts.noSave {
		return nil
	}
	if err := c.saveOptimized(ctx, snap.Artifact); err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Optimized score saved.")
	return nil
}

// saveOptimized сохраняет новую оценку документа на сервере
func (c *Cli) saveOptimized(ctx context.Context, artifact optimize.Artifact) error {
	switch artifact.Kind {
	case optimize.KindResume:
		if _, err := c.resumes.Update(ctx, artifact.ID, artifact.Resume); err != nil {
			return fmt.Errorf("failed to save optimized resume: %w", err)
		}
	case optimize.KindCoverLetter:
		score := artifact.QualityScore
		optimized := true
		custom := &pkgapi.CoverLetterCustomization{QualityScore: &score, AIOptimized: &optimized}
		if _, err := c.coverLetters.Customize(ctx, artifact.ID, custom); err != nil {
			return fmt.Errorf("failed to save optimized cover letter: %w", err)
		}
	default:
		return errors.New("unknown artifact kind")
	}
	return nil
}

func (r *root) exportCommand(export func(ctx context.Context, id, format string) ([]byte, error)) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Download a document as markdown, txt or json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := r.cli.requireSession(ctx); err != nil {
				return err
			}
			if !pkgapi.ValidExportFormat(format) {
				return fmt.Errorf("unsupported format %q, use markdown, txt or json", format)
			}

			data, err := export(ctx, args[0], format)
			if err != nil {
				return err
			}
			return r.cli.writeOutput(output, data)
		},
	}

	cmd.Flags().StringVar(&format, "format", pkgapi.ExportMarkdown, "Export format: markdown, txt, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")

	return cmd
}

func (c *Cli) writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := c.io.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	c.io.Printf("✓ Saved %d bytes to %s\n", len(data), path)
	return nil
}
