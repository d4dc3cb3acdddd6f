package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/benvon/task-tracker/internal/database"
	"github.com/benvon/task-tracker/internal/services/tasks"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var (
		owner    string
		raw      tasks.RawQuery
		page     int
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's tasks",
		Long:  "List one page of a user's tasks through the same listing pipeline the API uses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return fmt.Errorf("--owner is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, closeDB, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			raw.Page = strconv.Itoa(page)
			raw.PageSize = strconv.Itoa(pageSize)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			service := tasks.NewService(database.NewTaskRepository(db))
			result, err := service.List(ctx, owner, tasks.NormalizeQuery(raw))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE")
			for _, t := range result.Items {
				due := "-"
				if t.DueDate != nil {
					due = *t.DueDate
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Priority, due, t.Title)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d tasks\n", len(result.Items), result.Total)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&owner, "owner", "", "Owner uid whose tasks to list (required)")
	flags.StringVar(&raw.Search, "search", "", "Free-text search")
	flags.StringVar(&raw.Status, "status", "", "Exact status filter (Todo, InProgress, Done)")
	flags.StringVar(&raw.Priority, "priority", "", "Exact priority filter (Low, Medium, High)")
	flags.StringVar(&raw.DueFrom, "due-from", "", "Lower due date bound (ISO-8601)")
	flags.StringVar(&raw.DueTo, "due-to", "", "Upper due date bound (ISO-8601)")
	flags.StringVar(&raw.SortField, "sort", "updatedAt", "Sort field")
	flags.StringVar(&raw.SortOrder, "order", "descend", "Sort order (ascend or descend)")
	flags.IntVar(&page, "page", tasks.DefaultPage, "Page number")
	flags.IntVar(&pageSize, "page-size", tasks.DefaultPageSize, "Page size")

	return cmd
}
