package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/cache"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
)

func (c *cli) newLeadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "List, show and delete stored leads",
	}
	cmd.AddCommand(c.newLeadsListCmd())
	cmd.AddCommand(c.newLeadsShowCmd())
	cmd.AddCommand(c.newLeadsDeleteCmd())
	return cmd
}

func (c *cli) newLeadsListCmd() *cobra.Command {
	var (
		term  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads, best last search score first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.services(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			leads, total, err := listLeads(ctx, svc.Repos.Leads, term, limit)
			if err != nil {
				return fmt.Errorf("list leads: %w", err)
			}
			if leads == nil {
				leads = []*storage.Lead{}
			}

			if c.outputJSON {
				return c.ui.JSON(map[string]interface{}{"leads": leads, "count": total})
			}
			if total == 0 {
				c.ui.Info("No leads found")
				return nil
			}

			rows := make([][]string, 0, len(leads))
			for _, l := range leads {
				rows = append(rows, []string{
					strconv.FormatInt(l.ID, 10),
					truncate(l.Name, 30),
					truncate(l.Role, 30),
					truncate(l.Company, 30),
					truncate(l.Location, 20),
					fmt.Sprintf("%.0f", l.MatchScore),
				})
			}
			c.ui.Table([]string{"ID", "Name", "Role", "Company", "Location", "Score"}, rows)
			if len(leads) < total {
				c.ui.Info("Showing %d of %d leads", len(leads), total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&term, "search", "s", "", "filter by name, email, company or skills")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum rows to show (0 for all)")
	return cmd
}

func (c *cli) newLeadsShowCmd() *cobra.Command {
	var skills string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, err := c.services(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			lead, err := svc.Repos.Leads.GetByID(ctx, id)
			if err != nil {
				return fmt.Errorf("lead %d: %w", id, err)
			}

			var pct *float64
			if skills != "" {
				v := lead.SkillMatchPercent(splitList(skills))
				pct = &v
			}

			if c.outputJSON {
				return c.ui.JSON(struct {
					*storage.Lead
					SkillMatchPercent *float64 `json:"skill_match_percent,omitempty"`
				}{lead, pct})
			}

			c.ui.Section(lead.Name)
			c.ui.KeyValue("ID", lead.ID)
			c.ui.KeyValue("Role", lead.Role)
			c.ui.KeyValue("Company", lead.Company)
			c.ui.KeyValue("Location", lead.Location)
			c.ui.KeyValue("Email", lead.Email)
			c.ui.KeyValue("Phone", lead.Phone)
			c.ui.KeyValue("LinkedIn", lead.LinkedInURL)
			c.ui.KeyValue("Skills", strings.Join(lead.SkillsList(), ", "))
			c.ui.KeyValue("Experience", fmt.Sprintf("%d years", lead.ExperienceYears))
			c.ui.KeyValue("Match score", fmt.Sprintf("%.1f", lead.MatchScore))
			if pct != nil {
				c.ui.KeyValue("Skill match", fmt.Sprintf("%.2f%%", *pct))
			}
			if lead.Notes != "" {
				c.ui.KeyValue("Notes", lead.Notes)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&skills, "skills", "", "comma-separated skills to compare against")
	return cmd
}

func (c *cli) newLeadsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, err := c.services(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.Repos.Leads.Delete(ctx, id); err != nil {
				return fmt.Errorf("delete lead %d: %w", id, err)
			}
			if err := cache.InvalidateLeads(ctx, svc.Cache); err != nil {
				c.logger.Warn().Err(err).Msg("Cache invalidation failed")
			}

			if c.outputJSON {
				return c.ui.JSON(map[string]interface{}{"deleted": id})
			}
			c.ui.Success("Deleted lead %d", id)
			return nil
		},
	}
}

func (c *cli) newUploadsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "uploads",
		Short: "Show the upload history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.services(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			uploads, err := svc.Repos.Uploads.List(ctx, limit)
			if err != nil {
				return fmt.Errorf("list uploads: %w", err)
			}
			if uploads == nil {
				uploads = []*storage.UploadHistory{}
			}

			if c.outputJSON {
				return c.ui.JSON(map[string]interface{}{"uploads": uploads})
			}
			if len(uploads) == 0 {
				c.ui.Info("No uploads yet")
				return nil
			}

			rows := make([][]string, 0, len(uploads))
			for _, u := range uploads {
				rows = append(rows, []string{
					strconv.FormatInt(u.ID, 10),
					u.Filename,
					u.UploadedAt.Local().Format("2006-01-02 15:04"),
					strconv.Itoa(u.RecordsImported),
					strconv.Itoa(u.RecordsUpdated),
				})
			}
			c.ui.Table([]string{"ID", "File", "Uploaded", "Imported", "Updated"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum uploads to show")
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid lead id %q", raw)
	}
	return id, nil
}

// listLeads returns at most limit leads matching term, plus how many match in total.
// Without a filter the limit goes to the database.
func listLeads(ctx context.Context, repo *storage.LeadRepository, term string, limit int) ([]*storage.Lead, int, error) {
	if strings.TrimSpace(term) == "" && limit > 0 {
		total, err := repo.Count(ctx)
		if err != nil {
			return nil, 0, err
		}
		leads, err := repo.ListLimit(ctx, limit)
		return leads, total, err
	}

	leads, err := repo.Search(ctx, term)
	if err != nil {
		return nil, 0, err
	}
	total := len(leads)
	if limit > 0 && len(leads) > limit {
		leads = leads[:limit]
	}
	return leads, total, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
