package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/aimatch"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/search"
)

func (c *cli) newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Rank leads by keyword overlap with the query",
		Long: `Search scores every lead against the query keywords and stores the score on each
matching lead. Leads without any overlap keep their previous score.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.services(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			result, err := svc.Scorer.Search(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			if c.outputJSON {
				return c.ui.JSON(result)
			}
			if len(result.Matches) == 0 {
				c.ui.Warning("No leads matched %q", result.Query)
				return nil
			}

			matches := result.Matches
			if limit > 0 && len(matches) > limit {
				matches = matches[:limit]
			}
			rows := make([][]string, 0, len(matches))
			for _, m := range matches {
				rows = append(rows, []string{
					strconv.FormatInt(m.Lead.ID, 10),
					truncate(m.Lead.Name, 30),
					truncate(m.Lead.Role, 30),
					truncate(m.Lead.Company, 30),
					fmt.Sprintf("%.0f", m.Score),
					truncate(strings.Join(m.Context, "; "), 60),
				})
			}
			c.ui.Table([]string{"ID", "Name", "Role", "Company", "Score", "Matched"}, rows)
			c.printStats(result.Stats)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 25, "maximum rows to show (0 for all)")
	return cmd
}

func (c *cli) printStats(stats search.Stats) {
	c.ui.Section("Keywords")
	c.ui.KeyValue("Match rate", fmt.Sprintf("%.1f%%", stats.MatchRate))
	if len(stats.Matched) > 0 {
		c.ui.KeyValue("Matched", joinCounts(stats.Matched))
	}
	if len(stats.Missing) > 0 {
		c.ui.KeyValue("Missing", strings.Join(stats.Missing, ", "))
	}
	if len(stats.Partial) > 0 {
		c.ui.KeyValue("Also common", joinCounts(stats.Partial))
	}
}

func joinCounts(counts []search.KeywordCount) string {
	parts := make([]string, 0, len(counts))
	for _, kc := range counts {
		parts = append(parts, fmt.Sprintf("%s (%d)", kc.Word, kc.Count))
	}
	return strings.Join(parts, ", ")
}

func (c *cli) newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match PROMPT...",
		Short: "Ask the language model which leads fit a description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.services(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			stop := c.ui.Spinner("Analyzing leads...")
			result, err := svc.AI.Match(ctx, strings.Join(args, " "))
			stop()
			if err != nil {
				c.ui.Error("%s", aimatch.UserMessage(err))
				return err
			}

			if c.outputJSON {
				return c.ui.JSON(result)
			}
			if result.NoLeads {
				c.ui.Warning("No leads in the database yet. Import a workbook first.")
				return nil
			}

			c.ui.Section("AI match")
			c.ui.KeyValue("Interpretation", result.Interpretation)
			if result.SearchType != "" {
				c.ui.KeyValue("Search type", result.SearchType)
			}
			if result.IndustryAlignment != "" {
				c.ui.KeyValue("Industry alignment", result.IndustryAlignment)
			}
			c.ui.KeyValue("Analyzed", fmt.Sprintf("%d of %d leads", result.AnalyzedLeads, result.TotalLeads))
			c.ui.Newline()

			if len(result.Matches) == 0 {
				c.ui.Warning("The model found no matching leads")
				return nil
			}
			rows := make([][]string, 0, len(result.Matches))
			for _, m := range result.Matches {
				rows = append(rows, []string{
					strconv.FormatInt(m.Lead.ID, 10),
					truncate(m.Lead.Name, 30),
					truncate(m.Lead.Role, 30),
					truncate(m.Lead.Company, 30),
					strconv.Itoa(m.ConfidenceScore),
					truncate(m.Reasoning, 60),
				})
			}
			c.ui.Table([]string{"ID", "Name", "Role", "Company", "Confidence", "Reasoning"}, rows)
			return nil
		},
	}
}

func (c *cli) newIndustriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "industries",
		Short: "Show the industry distribution of stored leads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.services(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			ov, err := svc.AI.Overview(ctx)
			if err != nil {
				return err
			}

			if c.outputJSON {
				return c.ui.JSON(ov)
			}
			if ov.TotalLeads == 0 {
				c.ui.Info("No leads stored")
				return nil
			}
			rows := make([][]string, 0, len(ov.Industries))
			for _, s := range ov.Industries {
				rows = append(rows, []string{s.Name, strconv.Itoa(s.Count), fmt.Sprintf("%.1f%%", s.Percentage)})
			}
			c.ui.Table([]string{"Industry", "Leads", "Share"}, rows)
			c.ui.KeyValue("Total leads", ov.TotalLeads)
			return nil
		},
	}
}
